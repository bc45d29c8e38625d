package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

func mapColor(color string) notion.Color {
	if color == "default" {
		return ""
	}
	return notion.Color(color)
}

func mapRichText(items []apiRichText) notion.RichText {
	out := make(notion.RichText, 0, len(items))
	for _, item := range items {
		var (
			typ  notion.RichTextType
			text string
		)
		switch {
		case item.Type == "text" && item.Text != nil:
			typ, text = notion.RichTextTypeText, item.Text.Content
		case item.Type == "mention" && item.Mention != nil:
			typ, text = notion.RichTextTypeMention, item.Mention.Type
		case item.Type == "equation" && item.Equation != nil:
			typ, text = notion.RichTextTypeEquation, item.Equation.Expression
		default:
			typ, text = notion.RichTextType(item.Type), item.PlainText
		}

		var href string
		if item.Href != nil {
			href = *item.Href
		}

		out = append(out, notion.RichTextItem{
			Type: typ,
			Text: text,
			Href: href,
			Annotations: notion.Annotations{
				Bold:          item.Annotations.Bold,
				Italic:        item.Annotations.Italic,
				Strikethrough: item.Annotations.Strikethrough,
				Underline:     item.Annotations.Underline,
				Code:          item.Annotations.Code,
				Color:         mapColor(item.Annotations.Color),
			},
		})
	}
	return out
}

// plainText joins the plain text of rich text items as returned by Notion.
func plainText(items []apiRichText) string {
	var s string
	for _, item := range items {
		s += item.PlainText
	}
	return s
}

func mapDate(d *apiDate) *notion.Date {
	if d == nil {
		return nil
	}
	out := &notion.Date{Start: d.Start}
	if d.End != nil {
		out.End = *d.End
	}
	if d.TimeZone != nil {
		out.TimeZone = *d.TimeZone
	}
	return out
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

var blockTypes = map[string]notion.BlockType{
	"paragraph":          notion.BlockTypeParagraph,
	"heading_1":          notion.BlockTypeHeading1,
	"heading_2":          notion.BlockTypeHeading2,
	"heading_3":          notion.BlockTypeHeading3,
	"bulleted_list_item": notion.BlockTypeBulletedListItem,
	"numbered_list_item": notion.BlockTypeNumberedListItem,
	"to_do":              notion.BlockTypeToDoListItem,
	"quote":              notion.BlockTypeQuote,
	"toggle":             notion.BlockTypeToggle,
	"template":           notion.BlockTypeTemplate,
	"synced_block":       notion.BlockTypeSyncedBlock,
	"child_page":         notion.BlockTypeChildPage,
	"child_database":     notion.BlockTypeChildDatabase,
	"equation":           notion.BlockTypeEquation,
	"code":               notion.BlockTypeCode,
	"callout":            notion.BlockTypeCallout,
	"divider":            notion.BlockTypeDivider,
	"breadcrumb":         notion.BlockTypeBreadcrumb,
	"table_of_contents":  notion.BlockTypeTableOfContents,
	"column_list":        notion.BlockTypeColumnList,
	"column":             notion.BlockTypeColumn,
	"link_to_page":       notion.BlockTypeLinkToPage,
	"table":              notion.BlockTypeTable,
	"table_row":          notion.BlockTypeTableRow,
	"embed":              notion.BlockTypeEmbed,
	"bookmark":           notion.BlockTypeBookmark,
	"image":              notion.BlockTypeImage,
	"video":              notion.BlockTypeVideo,
	"pdf":                notion.BlockTypePDF,
	"file":               notion.BlockTypeFile,
	"audio":              notion.BlockTypeAudio,
	"link_preview":       notion.BlockTypeLinkPreview,
}

var propertyTypes = map[string]notion.PropertyType{
	"number":           notion.PropertyTypeNumber,
	"url":              notion.PropertyTypeURL,
	"select":           notion.PropertyTypeSelect,
	"multi_select":     notion.PropertyTypeMultiSelect,
	"status":           notion.PropertyTypeStatus,
	"date":             notion.PropertyTypeDate,
	"email":            notion.PropertyTypeEmail,
	"phone_number":     notion.PropertyTypePhoneNumber,
	"checkbox":         notion.PropertyTypeCheckbox,
	"files":            notion.PropertyTypeFiles,
	"created_by":       notion.PropertyTypeCreatedBy,
	"created_time":     notion.PropertyTypeCreatedTime,
	"last_edited_by":   notion.PropertyTypeLastEditedBy,
	"last_edited_time": notion.PropertyTypeLastEditedTime,
	"formula":          notion.PropertyTypeStringFormula,
	"button":           notion.PropertyTypeButton,
	"unique_id":        notion.PropertyTypeUniqueID,
	"verification":     notion.PropertyTypeVerification,
	"title":            notion.PropertyTypeTitle,
	"rich_text":        notion.PropertyTypeRichText,
	"people":           notion.PropertyTypePeople,
	"relation":         notion.PropertyTypeRelation,
	"rollup":           notion.PropertyTypeRollup,
}

// cacheFile passes a remote URL through the file cache handler.
func (c *Connector) cacheFile(ctx context.Context, remoteURL string) (string, error) {
	c.requireFileCacheHandler()
	cached, err := c.fileCacheHandler(ctx, remoteURL)
	if err != nil {
		return "", fmt.Errorf("error caching file: %w", err)
	}
	return cached, nil
}

func (c *Connector) mapFile(ctx context.Context, f *apiFile) (*notion.File, error) {
	if f == nil {
		return nil, nil
	}
	remote := f.url()
	if remote == "" {
		return nil, nil
	}
	cached, err := c.cacheFile(ctx, remote)
	if err != nil {
		return nil, err
	}
	return &notion.File{URL: cached, Name: f.Name}, nil
}

func (c *Connector) mapFiles(ctx context.Context, files []apiFile) ([]notion.File, error) {
	out := make([]notion.File, 0, len(files))
	for i := range files {
		f, err := c.mapFile(ctx, &files[i])
		if err != nil {
			return nil, err
		}
		if f != nil {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (c *Connector) mapIcon(ctx context.Context, icon *apiIcon) (*notion.Icon, error) {
	if icon == nil {
		return nil, nil
	}
	if icon.Type == "emoji" {
		return &notion.Icon{Type: notion.IconTypeEmoji, Emoji: icon.Emoji}, nil
	}

	f, err := c.mapFile(ctx, &apiFile{
		Type:     icon.Type,
		External: icon.External,
		File:     icon.File,
	})
	if err != nil || f == nil {
		return nil, err
	}
	return &notion.Icon{Type: notion.IconTypeImage, File: f}, nil
}
