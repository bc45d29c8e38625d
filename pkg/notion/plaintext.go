package notion

import "strings"

// PlainText renders blocks as plain text for indexing. Each block contributes
// its text on its own line followed by the text of its children. Blocks
// without textual content (dividers, breadcrumbs, child pages and the like)
// and blocks with empty text are skipped.
func PlainText(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if text := blockPlainText(b); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

func blockPlainText(b Block) string {
	switch c := b.Content.(type) {
	case *TextContent:
		return withChildren(c.RichText.PlainText(), b.Children)
	case *HeadingContent:
		return withChildren(c.RichText.PlainText(), b.Children)
	case *ToDoContent:
		return withChildren(c.RichText.PlainText(), b.Children)
	case *TemplateContent:
		return withChildren(c.RichText.PlainText(), b.Children)
	case *CalloutContent:
		return withChildren(c.RichText.PlainText(), b.Children)
	case *CodeContent:
		return c.RichText.PlainText()
	case *EquationContent:
		return c.Expression
	case *LinkContent:
		return c.URL + "\n" + c.Caption.PlainText()
	case *MediaContent:
		return c.Caption.PlainText()
	case *LinkPreviewContent:
		return c.URL
	case *TableRowContent:
		cells := make([]string, len(c.Cells))
		for i, cell := range c.Cells {
			cells[i] = cell.PlainText()
		}
		return strings.Join(cells, " ")
	}

	switch b.Type {
	case BlockTypeBulletedList, BlockTypeNumberedList, BlockTypeToDoList,
		BlockTypeSyncedBlock, BlockTypeColumnList, BlockTypeColumn, BlockTypeTable:
		return PlainText(b.Children)
	}

	return ""
}

func withChildren(text string, children []Block) string {
	if len(children) == 0 {
		return text
	}
	return text + "\n" + PlainText(children)
}
