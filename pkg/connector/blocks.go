package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

const blockPageSize = 100

// GetDocumentContent fetches the full block tree of a document and renders its
// plain text.
func (c *Connector) GetDocumentContent(ctx context.Context, documentID string) (notion.DocumentContent, error) {
	c.requireFileCacheHandler()

	blocks, err := c.getChildBlocks(ctx, documentID)
	if err != nil {
		return notion.DocumentContent{}, fmt.Errorf("error getting content of document %q: %w",
			documentID, err)
	}
	return notion.DocumentContent{
		Blocks:    blocks,
		PlainText: notion.PlainText(blocks),
	}, nil
}

// getChildBlocks fetches and maps the children of a block or page, grouping
// consecutive list items into aggregate blocks.
func (c *Connector) getChildBlocks(ctx context.Context, parentID string) ([]notion.Block, error) {
	path := "/v1/blocks/" + url.PathEscape(parentID) + "/children"

	var blocks []notion.Block
	_, err := paginate(ctx, func(ctx context.Context, cursor string) (page[apiBlock], error) {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(blockPageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var resp apiList[apiBlock]
		if err := c.doRequest(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
			return page[apiBlock]{}, err
		}

		// Each page is appended to the blocks mapped so far, so a list that
		// continues on the next page extends the aggregate built from this one.
		for _, raw := range resp.Results {
			b, ok, err := c.mapBlock(ctx, raw)
			if err != nil {
				return page[apiBlock]{}, err
			}
			if !ok {
				continue
			}
			if blocks, err = appendBlock(blocks, b); err != nil {
				return page[apiBlock]{}, err
			}
		}

		return page[apiBlock]{
			hasMore: resp.HasMore,
			cursor:  derefCursor(resp.NextCursor),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if blocks == nil {
		blocks = []notion.Block{}
	}
	return blocks, nil
}

// appendBlock appends b to blocks. List items are added to the trailing
// aggregate of the same type, or to a new aggregate if there is none.
func appendBlock(blocks []notion.Block, b notion.Block) ([]notion.Block, error) {
	aggType := b.Type.AggregateType()
	if aggType == "" {
		return append(blocks, b), nil
	}

	if n := len(blocks); n > 0 && blocks[n-1].Type == aggType {
		blocks[n-1].Children = append(blocks[n-1].Children, b)
		return blocks, nil
	}

	agg, err := newAggregate(aggType, b)
	if err != nil {
		return nil, err
	}
	return append(blocks, agg), nil
}

func newAggregate(aggType notion.BlockType, first notion.Block) (notion.Block, error) {
	if !aggType.IsAggregate() || aggType.ItemType() != first.Type {
		return notion.Block{}, fmt.Errorf("%w: %q", ErrUnknownAggregate, aggType)
	}
	return notion.Block{
		ID:       notion.VirtualBlockIDPrefix + first.ID,
		Type:     aggType,
		Children: []notion.Block{first},
	}, nil
}

// mapBlock converts a remote block and, for container types, its children. ok
// is false for unsupported block types.
func (c *Connector) mapBlock(ctx context.Context, raw apiBlock) (notion.Block, bool, error) {
	typ, known := blockTypes[raw.Type]
	if !known {
		c.logger.Warn("unsupported block type, skipping",
			"block_id", raw.ID, "type", raw.Type)
		return notion.Block{}, false, nil
	}

	var payload apiBlockPayload
	if len(raw.Payload) > 0 {
		if err := json.Unmarshal(raw.Payload, &payload); err != nil {
			return notion.Block{}, false, fmt.Errorf("error decoding %s block %q: %w",
				raw.Type, raw.ID, err)
		}
	}

	content, err := c.mapBlockContent(ctx, typ, &payload)
	if err != nil {
		return notion.Block{}, false, fmt.Errorf("error mapping %s block %q: %w",
			raw.Type, raw.ID, err)
	}

	b := notion.Block{ID: raw.ID, Type: typ, Content: content}
	if typ.IsContainer() {
		b.Children = []notion.Block{}
		if raw.HasChildren {
			children, err := c.getChildBlocks(ctx, raw.ID)
			if err != nil {
				return notion.Block{}, false, err
			}
			b.Children = children
		}
	}

	return b, true, nil
}

func (c *Connector) mapBlockContent(ctx context.Context, typ notion.BlockType, p *apiBlockPayload) (notion.BlockContent, error) {
	switch typ {
	case notion.BlockTypeParagraph, notion.BlockTypeBulletedListItem,
		notion.BlockTypeNumberedListItem, notion.BlockTypeQuote, notion.BlockTypeToggle:
		return &notion.TextContent{RichText: mapRichText(p.RichText), Color: mapColor(p.Color)}, nil

	case notion.BlockTypeHeading1, notion.BlockTypeHeading2, notion.BlockTypeHeading3:
		return &notion.HeadingContent{
			RichText:     mapRichText(p.RichText),
			Color:        mapColor(p.Color),
			IsToggleable: p.IsToggleable,
		}, nil

	case notion.BlockTypeToDoListItem:
		return &notion.ToDoContent{
			RichText: mapRichText(p.RichText),
			Color:    mapColor(p.Color),
			Checked:  p.Checked,
		}, nil

	case notion.BlockTypeTemplate:
		return &notion.TemplateContent{RichText: mapRichText(p.RichText)}, nil

	case notion.BlockTypeSyncedBlock:
		content := &notion.SyncedBlockContent{}
		if p.SyncedFrom != nil {
			content.BlockID = p.SyncedFrom.BlockID
		}
		return content, nil

	case notion.BlockTypeChildPage, notion.BlockTypeChildDatabase:
		return &notion.TitleContent{Title: p.Title}, nil

	case notion.BlockTypeEquation:
		return &notion.EquationContent{Expression: p.Expression}, nil

	case notion.BlockTypeCode:
		return &notion.CodeContent{
			RichText: mapRichText(p.RichText),
			Caption:  mapRichText(p.Caption),
			Language: p.Language,
		}, nil

	case notion.BlockTypeCallout:
		icon, err := c.mapIcon(ctx, p.Icon)
		if err != nil {
			return nil, err
		}
		return &notion.CalloutContent{
			RichText: mapRichText(p.RichText),
			Color:    mapColor(p.Color),
			Icon:     icon,
		}, nil

	case notion.BlockTypeTableOfContents:
		return &notion.TableOfContentsContent{Color: mapColor(p.Color)}, nil

	case notion.BlockTypeLinkToPage:
		return mapLinkToPage(p), nil

	case notion.BlockTypeTable:
		return &notion.TableContent{
			HasColumnHeader: p.HasColumnHeader,
			HasRowHeader:    p.HasRowHeader,
			TableWidth:      p.TableWidth,
		}, nil

	case notion.BlockTypeTableRow:
		cells := make([]notion.RichText, 0, len(p.Cells))
		for _, cell := range p.Cells {
			cells = append(cells, mapRichText(cell))
		}
		return &notion.TableRowContent{Cells: cells}, nil

	case notion.BlockTypeEmbed, notion.BlockTypeBookmark:
		return &notion.LinkContent{URL: p.URL, Caption: mapRichText(p.Caption)}, nil

	case notion.BlockTypeImage, notion.BlockTypeVideo, notion.BlockTypePDF,
		notion.BlockTypeFile, notion.BlockTypeAudio:
		f, err := c.mapFile(ctx, p.file())
		if err != nil {
			return nil, err
		}
		content := &notion.MediaContent{Caption: mapRichText(p.Caption)}
		if f != nil {
			content.File = *f
		}
		return content, nil

	case notion.BlockTypeLinkPreview:
		return &notion.LinkPreviewContent{URL: p.URL}, nil
	}

	// Divider, breadcrumb, column list and column carry no content.
	return nil, nil
}

func mapLinkToPage(p *apiBlockPayload) *notion.LinkToPageContent {
	switch p.Type {
	case "database_id":
		return &notion.LinkToPageContent{Type: notion.ObjectTypeDatabase, ID: p.DatabaseID}
	case "comment_id":
		return &notion.LinkToPageContent{Type: notion.ObjectTypeComment, ID: p.CommentID}
	}
	return &notion.LinkToPageContent{Type: notion.ObjectTypePage, ID: p.PageID}
}
