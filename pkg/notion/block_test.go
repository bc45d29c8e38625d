package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) RichText {
	return RichText{{Type: RichTextTypeText, Text: s}}
}

func TestBlockTypeClassification(t *testing.T) {
	assert.True(t, BlockTypeParagraph.IsContainer())
	assert.True(t, BlockTypeColumnList.IsContainer())
	assert.True(t, BlockTypeBulletedList.IsContainer())
	assert.False(t, BlockTypeDivider.IsContainer())
	assert.False(t, BlockTypeImage.IsContainer())

	assert.True(t, BlockTypeToDoList.IsAggregate())
	assert.False(t, BlockTypeToDoListItem.IsAggregate())

	assert.Equal(t, BlockTypeNumberedListItem, BlockTypeNumberedList.ItemType())
	assert.Equal(t, BlockTypeToDoList, BlockTypeToDoListItem.AggregateType())
	assert.Equal(t, BlockType(""), BlockTypeParagraph.AggregateType())
}

func TestBlockJSON(t *testing.T) {
	t.Run("decodes typed content through a round trip", func(t *testing.T) {
		in := []Block{
			{
				ID:   "b1",
				Type: BlockTypeHeading1,
				Content: &HeadingContent{
					RichText:     text("Title"),
					IsToggleable: true,
				},
				Children: []Block{
					{ID: "b2", Type: BlockTypeDivider},
				},
			},
			{
				ID:   "virtual-b3",
				Type: BlockTypeToDoList,
				Children: []Block{
					{
						ID:       "b3",
						Type:     BlockTypeToDoListItem,
						Content:  &ToDoContent{RichText: text("task"), Checked: true},
						Children: []Block{},
					},
				},
			},
			{
				ID:   "b4",
				Type: BlockTypeImage,
				Content: &MediaContent{
					File:    File{URL: "https://files.example.com/a.png"},
					Caption: text("a picture"),
				},
			},
		}

		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out []Block
		require.NoError(t, json.Unmarshal(data, &out))
		require.Len(t, out, 3)

		heading, ok := out[0].Content.(*HeadingContent)
		require.True(t, ok)
		assert.True(t, heading.IsToggleable)
		assert.Equal(t, "Title", heading.RichText.PlainText())
		require.Len(t, out[0].Children, 1)
		assert.Nil(t, out[0].Children[0].Content)
		assert.Nil(t, out[0].Children[0].Children)

		assert.Nil(t, out[1].Content)
		require.Len(t, out[1].Children, 1)
		todo, ok := out[1].Children[0].Content.(*ToDoContent)
		require.True(t, ok)
		assert.True(t, todo.Checked)
		assert.NotNil(t, out[1].Children[0].Children)

		media, ok := out[2].Content.(*MediaContent)
		require.True(t, ok)
		assert.Equal(t, "https://files.example.com/a.png", media.File.URL)
	})

	t.Run("container without children decodes to an empty slice", func(t *testing.T) {
		var b Block
		require.NoError(t, json.Unmarshal(
			[]byte(`{"type":"paragraph","content":{"richText":[]}}`), &b))
		assert.NotNil(t, b.Children)
		assert.Empty(t, b.Children)
	})

	t.Run("children key follows the container kind", func(t *testing.T) {
		data, err := json.Marshal([]Block{
			{Type: BlockTypeParagraph, Content: &TextContent{}},
			{Type: BlockTypeQuote, Content: &TextContent{}, Children: []Block{}},
			{Type: BlockTypeDivider},
			{Type: BlockTypeCode, Content: &CodeContent{}, Children: []Block{}},
		})
		require.NoError(t, err)

		var raw []map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		require.Len(t, raw, 4)
		assert.Equal(t, []any{}, raw[0]["children"])
		assert.Equal(t, []any{}, raw[1]["children"])
		assert.NotContains(t, raw[2], "children")
		assert.NotContains(t, raw[3], "children")
	})

	t.Run("unknown type is an error", func(t *testing.T) {
		var b Block
		err := json.Unmarshal([]byte(`{"type":"hologram"}`), &b)
		assert.Error(t, err)
	})
}

func TestStripIDs(t *testing.T) {
	blocks := []Block{
		{
			ID:   "col-list",
			Type: BlockTypeColumnList,
			Children: []Block{
				{
					ID:   "col",
					Type: BlockTypeColumn,
					Children: []Block{
						{ID: "p", Type: BlockTypeParagraph, Content: &TextContent{RichText: text("x")}, Children: []Block{}},
					},
				},
			},
		},
		{ID: "d", Type: BlockTypeDivider},
	}

	stripped := StripIDs(blocks)

	var walk func([]Block)
	walk = func(bs []Block) {
		for _, b := range bs {
			assert.Empty(t, b.ID)
			walk(b.Children)
		}
	}
	walk(stripped)

	assert.Equal(t, "col-list", blocks[0].ID, "input must not be modified")
	assert.Equal(t, "p", blocks[0].Children[0].Children[0].ID)
	assert.NotNil(t, stripped[0].Children[0].Children[0].Children)
	assert.Nil(t, stripped[1].Children)

	data, err := json.Marshal(stripped)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
}
