package notion

import (
	"encoding/json"
	"fmt"
)

// BlockType is the kind of a Block.
type BlockType string

const (
	BlockTypeParagraph        BlockType = "paragraph"
	BlockTypeHeading1         BlockType = "heading1"
	BlockTypeHeading2         BlockType = "heading2"
	BlockTypeHeading3         BlockType = "heading3"
	BlockTypeBulletedListItem BlockType = "bulletedListItem"
	BlockTypeNumberedListItem BlockType = "numberedListItem"
	BlockTypeToDoListItem     BlockType = "toDoListItem"
	BlockTypeQuote            BlockType = "quote"
	BlockTypeToggle           BlockType = "toggle"
	BlockTypeTemplate         BlockType = "template"
	BlockTypeSyncedBlock      BlockType = "syncedBlock"
	BlockTypeChildPage        BlockType = "childPage"
	BlockTypeChildDatabase    BlockType = "childDatabase"
	BlockTypeEquation         BlockType = "equation"
	BlockTypeCode             BlockType = "code"
	BlockTypeCallout          BlockType = "callout"
	BlockTypeDivider          BlockType = "divider"
	BlockTypeBreadcrumb       BlockType = "breadcrumb"
	BlockTypeTableOfContents  BlockType = "tableOfContents"
	BlockTypeColumnList       BlockType = "columnList"
	BlockTypeColumn           BlockType = "column"
	BlockTypeLinkToPage       BlockType = "linkToPage"
	BlockTypeTable            BlockType = "table"
	BlockTypeTableRow         BlockType = "tableRow"
	BlockTypeEmbed            BlockType = "embed"
	BlockTypeBookmark         BlockType = "bookmark"
	BlockTypeImage            BlockType = "image"
	BlockTypeVideo            BlockType = "video"
	BlockTypePDF              BlockType = "pdf"
	BlockTypeFile             BlockType = "file"
	BlockTypeAudio            BlockType = "audio"
	BlockTypeLinkPreview      BlockType = "linkPreview"

	// Aggregate blocks do not exist in Notion. They group consecutive list
	// items so that a list can be rendered as a single unit.
	BlockTypeBulletedList BlockType = "bulletedList"
	BlockTypeNumberedList BlockType = "numberedList"
	BlockTypeToDoList     BlockType = "toDoList"
)

// VirtualBlockIDPrefix prefixes the id of an aggregate block. The rest of the
// id is the id of the first item in the list.
const VirtualBlockIDPrefix = "virtual-"

// IsContainer reports whether blocks of this type carry children.
func (t BlockType) IsContainer() bool {
	switch t {
	case BlockTypeHeading1, BlockTypeHeading2, BlockTypeHeading3,
		BlockTypeParagraph, BlockTypeTable, BlockTypeColumn, BlockTypeColumnList,
		BlockTypeBulletedListItem, BlockTypeNumberedListItem, BlockTypeToDoListItem,
		BlockTypeQuote, BlockTypeToggle, BlockTypeTemplate, BlockTypeSyncedBlock,
		BlockTypeCallout:
		return true
	}
	return t.IsAggregate()
}

// IsAggregate reports whether the type is one of the virtual list types.
func (t BlockType) IsAggregate() bool {
	switch t {
	case BlockTypeBulletedList, BlockTypeNumberedList, BlockTypeToDoList:
		return true
	}
	return false
}

// ItemType returns the type of the children of an aggregate type, or "" for
// any other type.
func (t BlockType) ItemType() BlockType {
	switch t {
	case BlockTypeBulletedList:
		return BlockTypeBulletedListItem
	case BlockTypeNumberedList:
		return BlockTypeNumberedListItem
	case BlockTypeToDoList:
		return BlockTypeToDoListItem
	}
	return ""
}

// AggregateType returns the aggregate type that groups items of this type, or
// "" if the type is not a list item.
func (t BlockType) AggregateType() BlockType {
	switch t {
	case BlockTypeBulletedListItem:
		return BlockTypeBulletedList
	case BlockTypeNumberedListItem:
		return BlockTypeNumberedList
	case BlockTypeToDoListItem:
		return BlockTypeToDoList
	}
	return ""
}

// Block is a node in a document's content tree.
//
// Content holds the type-specific payload and is nil for types that have none
// (divider, breadcrumb, column list, column and the aggregate types).
// Children is non-nil for container types and nil for every other type; the
// JSON form carries a children key exactly for container types.
type Block struct {
	ID       string       `json:"id,omitempty"`
	Type     BlockType    `json:"type"`
	Content  BlockContent `json:"content,omitempty"`
	Children []Block      `json:"children,omitempty"`
}

// BlockContent is implemented by every block payload type.
type BlockContent interface {
	blockContent()
}

// TextContent is the payload of paragraphs, quotes, toggles and list items.
type TextContent struct {
	RichText RichText `json:"richText"`
	Color    Color    `json:"color,omitempty"`
}

type HeadingContent struct {
	RichText     RichText `json:"richText"`
	Color        Color    `json:"color,omitempty"`
	IsToggleable bool     `json:"isToggleable"`
}

type ToDoContent struct {
	RichText RichText `json:"richText"`
	Color    Color    `json:"color,omitempty"`
	Checked  bool     `json:"checked"`
}

type TemplateContent struct {
	RichText RichText `json:"richText"`
}

// SyncedBlockContent references the original block when the synced block is a
// copy. BlockID is empty on the original.
type SyncedBlockContent struct {
	BlockID string `json:"blockId,omitempty"`
}

// TitleContent is the payload of child page and child database blocks.
type TitleContent struct {
	Title string `json:"title"`
}

type EquationContent struct {
	Expression string `json:"expression"`
}

type CodeContent struct {
	RichText RichText `json:"richText"`
	Caption  RichText `json:"caption"`
	Language string   `json:"language"`
}

type CalloutContent struct {
	RichText RichText `json:"richText"`
	Color    Color    `json:"color,omitempty"`
	Icon     *Icon    `json:"icon,omitempty"`
}

type TableOfContentsContent struct {
	Color Color `json:"color,omitempty"`
}

type LinkToPageContent struct {
	Type ObjectType `json:"type"`
	ID   string     `json:"id"`
}

type TableContent struct {
	HasColumnHeader bool `json:"hasColumnHeader"`
	HasRowHeader    bool `json:"hasRowHeader"`
	TableWidth      int  `json:"tableWidth"`
}

type TableRowContent struct {
	Cells []RichText `json:"cells"`
}

// LinkContent is the payload of embed and bookmark blocks.
type LinkContent struct {
	URL     string   `json:"url"`
	Caption RichText `json:"caption"`
}

// MediaContent is the payload of image, video, pdf, file and audio blocks.
type MediaContent struct {
	File    File     `json:"file"`
	Caption RichText `json:"caption"`
}

type LinkPreviewContent struct {
	URL string `json:"url"`
}

func (*TextContent) blockContent()            {}
func (*HeadingContent) blockContent()         {}
func (*ToDoContent) blockContent()            {}
func (*TemplateContent) blockContent()        {}
func (*SyncedBlockContent) blockContent()     {}
func (*TitleContent) blockContent()           {}
func (*EquationContent) blockContent()        {}
func (*CodeContent) blockContent()            {}
func (*CalloutContent) blockContent()         {}
func (*TableOfContentsContent) blockContent() {}
func (*LinkToPageContent) blockContent()      {}
func (*TableContent) blockContent()           {}
func (*TableRowContent) blockContent()        {}
func (*LinkContent) blockContent()            {}
func (*MediaContent) blockContent()           {}
func (*LinkPreviewContent) blockContent()     {}

// newBlockContent returns an empty payload for the block type. ok is false for
// unknown types; content is nil for types without a payload.
func newBlockContent(t BlockType) (content BlockContent, ok bool) {
	switch t {
	case BlockTypeParagraph, BlockTypeBulletedListItem, BlockTypeNumberedListItem,
		BlockTypeQuote, BlockTypeToggle:
		return &TextContent{}, true
	case BlockTypeHeading1, BlockTypeHeading2, BlockTypeHeading3:
		return &HeadingContent{}, true
	case BlockTypeToDoListItem:
		return &ToDoContent{}, true
	case BlockTypeTemplate:
		return &TemplateContent{}, true
	case BlockTypeSyncedBlock:
		return &SyncedBlockContent{}, true
	case BlockTypeChildPage, BlockTypeChildDatabase:
		return &TitleContent{}, true
	case BlockTypeEquation:
		return &EquationContent{}, true
	case BlockTypeCode:
		return &CodeContent{}, true
	case BlockTypeCallout:
		return &CalloutContent{}, true
	case BlockTypeTableOfContents:
		return &TableOfContentsContent{}, true
	case BlockTypeLinkToPage:
		return &LinkToPageContent{}, true
	case BlockTypeTable:
		return &TableContent{}, true
	case BlockTypeTableRow:
		return &TableRowContent{}, true
	case BlockTypeEmbed, BlockTypeBookmark:
		return &LinkContent{}, true
	case BlockTypeImage, BlockTypeVideo, BlockTypePDF, BlockTypeFile, BlockTypeAudio:
		return &MediaContent{}, true
	case BlockTypeLinkPreview:
		return &LinkPreviewContent{}, true
	case BlockTypeDivider, BlockTypeBreadcrumb, BlockTypeColumnList, BlockTypeColumn,
		BlockTypeBulletedList, BlockTypeNumberedList, BlockTypeToDoList:
		return nil, true
	}
	return nil, false
}

// MarshalJSON always writes children for container types, as [] when there
// are none, and never for other types.
func (b Block) MarshalJSON() ([]byte, error) {
	out := struct {
		ID       string       `json:"id,omitempty"`
		Type     BlockType    `json:"type"`
		Content  BlockContent `json:"content,omitempty"`
		Children *[]Block     `json:"children,omitempty"`
	}{
		ID:      b.ID,
		Type:    b.Type,
		Content: b.Content,
	}

	if b.Type.IsContainer() {
		children := b.Children
		if children == nil {
			children = []Block{}
		}
		out.Children = &children
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the content payload according to the block type.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Type     BlockType       `json:"type"`
		Content  json.RawMessage `json:"content"`
		Children []Block         `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	content, ok := newBlockContent(raw.Type)
	if !ok {
		return fmt.Errorf("unknown block type %q", raw.Type)
	}
	if content != nil && len(raw.Content) > 0 && string(raw.Content) != "null" {
		if err := json.Unmarshal(raw.Content, content); err != nil {
			return fmt.Errorf("error decoding %s block content: %w", raw.Type, err)
		}
	}

	b.ID = raw.ID
	b.Type = raw.Type
	b.Content = content
	b.Children = raw.Children
	if b.Type.IsContainer() && b.Children == nil {
		b.Children = []Block{}
	}

	return nil
}

// StripIDs returns a copy of the blocks with every id removed, recursively.
func StripIDs(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}

	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = Block{
			Type:     b.Type,
			Content:  b.Content,
			Children: StripIDs(b.Children),
		}
	}
	return out
}
