package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// GetConnectedDatabases returns every database shared with the integration.
//
// Only the first page of search results is read, so at most 100 databases are
// returned.
func (c *Connector) GetConnectedDatabases(ctx context.Context) ([]notion.Database, error) {
	c.requireFileCacheHandler()

	req := apiSearchRequest{
		Filter: apiSearchFilter{Property: "object", Value: "database"},
	}
	var resp apiList[apiDatabase]
	if err := c.doRequest(ctx, http.MethodPost, "/v1/search", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("error searching databases: %w", err)
	}
	if resp.HasMore {
		c.logger.Warn("more databases are shared than fit in one page, ignoring the rest")
	}

	dbs := make([]notion.Database, 0, len(resp.Results))
	for _, d := range resp.Results {
		db, err := c.mapDatabase(ctx, d, true)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, db)
	}
	return dbs, nil
}

// GetDatabase returns a single database. The property schema is not populated;
// use GetConnectedDatabases for that.
func (c *Connector) GetDatabase(ctx context.Context, id string) (notion.Database, error) {
	c.requireFileCacheHandler()

	var d apiDatabase
	path := "/v1/databases/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &d); err != nil {
		return notion.Database{}, fmt.Errorf("error getting database %q: %w", id, err)
	}
	return c.mapDatabase(ctx, d, false)
}

func (c *Connector) mapDatabase(ctx context.Context, d apiDatabase, withSchema bool) (notion.Database, error) {
	cover, err := c.mapFile(ctx, d.Cover)
	if err != nil {
		return notion.Database{}, err
	}
	icon, err := c.mapIcon(ctx, d.Icon)
	if err != nil {
		return notion.Database{}, err
	}
	created, err := parseTime(d.CreatedTime)
	if err != nil {
		return notion.Database{}, err
	}
	edited, err := parseTime(d.LastEditedTime)
	if err != nil {
		return notion.Database{}, err
	}

	name := plainText(d.Title)
	slug := Kebab(name)
	if slug == "" {
		slug = CompressObjectID(d.ID)
	}
	db := notion.Database{
		NotionID:       d.ID,
		Slug:           slug,
		Name:           name,
		URL:            d.URL,
		Cover:          cover,
		Icon:           icon,
		PropertySchema: []notion.PropertySchema{},
		CreatedTime:    created,
		LastEditedTime: edited,
	}
	if withSchema {
		db.PropertySchema = c.mapSchema(d.Properties)
	}
	return db, nil
}

func (c *Connector) mapSchema(props map[string]apiDatabaseProperty) []notion.PropertySchema {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := make([]notion.PropertySchema, 0, len(props))
	keys := KeyAllocator{}
	for _, name := range names {
		p := props[name]
		if isDirective(name) {
			continue
		}
		typ, ok := propertyTypes[p.Type]
		if !ok {
			c.logger.Warn("unknown property type in database schema, skipping",
				"property", name, "type", p.Type)
			continue
		}

		s := notion.PropertySchema{
			NotionID:      p.ID,
			DisplayName:   name,
			GeneratedName: keys.Key(name),
			Type:          typ,
		}
		var opts *apiOptions
		switch typ {
		case notion.PropertyTypeSelect:
			opts = p.Select
		case notion.PropertyTypeMultiSelect:
			opts = p.MultiSelect
		case notion.PropertyTypeStatus:
			opts = p.Status
		}
		if opts != nil {
			s.AllowedValues = make([]string, 0, len(opts.Options))
			for _, o := range opts.Options {
				s.AllowedValues = append(s.AllowedValues, o.Name)
			}
		}
		schema = append(schema, s)
	}
	return schema
}
