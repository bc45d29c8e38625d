package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// directivePrefix marks page properties that configure the mirror rather than
// hold document data.
const directivePrefix = "$"

const slugDirective = "$slug"

func isDirective(name string) bool {
	return strings.HasPrefix(name, directivePrefix)
}

// GetDocumentsInDatabase returns every page in a database, without content.
// Entries that are not pages are skipped.
func (c *Connector) GetDocumentsInDatabase(ctx context.Context, databaseID string) ([]notion.Document, error) {
	c.requireFileCacheHandler()

	path := "/v1/databases/" + url.PathEscape(databaseID) + "/query"
	pages, err := paginate(ctx, func(ctx context.Context, cursor string) (page[apiPage], error) {
		var resp apiList[apiPage]
		req := apiQueryRequest{StartCursor: cursor, PageSize: 100}
		if err := c.doRequest(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
			return page[apiPage]{}, err
		}
		return page[apiPage]{
			results: resp.Results,
			hasMore: resp.HasMore,
			cursor:  derefCursor(resp.NextCursor),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error querying database %q: %w", databaseID, err)
	}

	docs := make([]notion.Document, 0, len(pages))
	for _, p := range pages {
		if p.Object != string(notion.ObjectTypePage) {
			continue
		}
		doc, err := c.mapDocument(ctx, p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetDocument returns a single page, without content.
func (c *Connector) GetDocument(ctx context.Context, id string) (notion.Document, error) {
	c.requireFileCacheHandler()

	var p apiPage
	path := "/v1/pages/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &p); err != nil {
		return notion.Document{}, fmt.Errorf("error getting document %q: %w", id, err)
	}
	return c.mapDocument(ctx, p)
}

func (c *Connector) mapDocument(ctx context.Context, p apiPage) (notion.Document, error) {
	cover, err := c.mapFile(ctx, p.Cover)
	if err != nil {
		return notion.Document{}, err
	}
	icon, err := c.mapIcon(ctx, p.Icon)
	if err != nil {
		return notion.Document{}, err
	}
	created, err := parseTime(p.CreatedTime)
	if err != nil {
		return notion.Document{}, err
	}
	edited, err := parseTime(p.LastEditedTime)
	if err != nil {
		return notion.Document{}, err
	}

	names := make([]string, 0, len(p.Properties))
	for name := range p.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		title string
		slug  string
		props = make([]notion.Property, 0, len(names))
	)
	for _, name := range names {
		v := p.Properties[name]

		if isDirective(name) {
			if name == slugDirective && v.Type == "url" && v.URL != nil {
				slug = strings.TrimSpace(*v.URL)
			}
			continue
		}
		if v.Type == "title" {
			title = plainText(v.Title)
		}

		prop, ok, err := c.mapProperty(ctx, name, v)
		if err != nil {
			return notion.Document{}, fmt.Errorf("error mapping property %q of document %q: %w",
				name, p.ID, err)
		}
		if ok {
			props = append(props, prop)
		}
	}

	if slug == "" {
		slug = DocumentSlug(p.ID, title)
	}

	return notion.Document{
		NotionID:         p.ID,
		NotionDatabaseID: p.Parent.DatabaseID,
		Slug:             slug,
		Name:             title,
		URL:              p.URL,
		Cover:            cover,
		Icon:             icon,
		Properties:       props,
		CreatedTime:      created,
		LastEditedTime:   edited,
	}, nil
}
