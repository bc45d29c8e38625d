package notion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextTransformer(t *testing.T) {
	tr := NewPlainTextTransformer(nil)

	blocks := []Block{
		{Type: BlockTypeParagraph, Content: &TextContent{RichText: text("Intro")}, Children: []Block{}},
		{Type: BlockTypeNumberedList, Children: []Block{
			{Type: BlockTypeNumberedListItem, Content: &TextContent{RichText: text("first")}, Children: []Block{}},
			{Type: BlockTypeNumberedListItem, Content: &TextContent{RichText: text("second")}, Children: []Block{}},
		}},
		{Type: BlockTypeToDoList, Children: []Block{
			{Type: BlockTypeToDoListItem, Content: &ToDoContent{RichText: text("done"), Checked: true}, Children: []Block{}},
			{Type: BlockTypeToDoListItem, Content: &ToDoContent{RichText: text("open")}, Children: []Block{}},
		}},
		{Type: BlockTypeDivider},
		{Type: BlockTypeImage, Content: &MediaContent{Caption: text("diagram")}},
	}

	expected := "Intro\n" +
		" 1. first\n 2. second\n" +
		" [x] done\n [ ] open\n" +
		"Image (diagram)"

	assert.Equal(t, expected, tr.Transform(blocks))
}

func TestTransformerExtend(t *testing.T) {
	base := NewPlainTextTransformer(nil)
	ext := base.Extend(map[BlockType]TransformFunc{
		BlockTypeDivider: func(*Transformer, Block) string { return "---" },
	})

	blocks := []Block{{Type: BlockTypeDivider}}
	assert.Equal(t, "", base.Transform(blocks))
	assert.Equal(t, "---", ext.Transform(blocks))
}
