package notion

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// TransformFunc renders a single block. It may call t.Transform to render the
// block's children.
type TransformFunc func(t *Transformer, b Block) string

// Transformer renders a block tree to a string using one TransformFunc per
// block type. Blocks whose type has no function are skipped.
type Transformer struct {
	fns    map[BlockType]TransformFunc
	join   string
	logger hclog.Logger
}

// NewTransformer returns a Transformer that joins rendered siblings with sep.
func NewTransformer(fns map[BlockType]TransformFunc, sep string, logger hclog.Logger) *Transformer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Transformer{
		fns:    fns,
		join:   sep,
		logger: logger.Named("transformer"),
	}
}

// Extend returns a new Transformer with fns layered over the receiver's.
func (t *Transformer) Extend(fns map[BlockType]TransformFunc) *Transformer {
	merged := make(map[BlockType]TransformFunc, len(t.fns)+len(fns))
	for k, v := range t.fns {
		merged[k] = v
	}
	for k, v := range fns {
		merged[k] = v
	}
	return &Transformer{fns: merged, join: t.join, logger: t.logger}
}

// Transform renders blocks and joins the results.
func (t *Transformer) Transform(blocks []Block) string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		fn, ok := t.fns[b.Type]
		if !ok {
			t.logger.Debug("no transform function for block type, skipping",
				"type", b.Type)
			continue
		}
		out = append(out, fn(t, b))
	}
	return strings.Join(out, t.join)
}

func richTextOf(b Block) RichText {
	switch c := b.Content.(type) {
	case *TextContent:
		return c.RichText
	case *HeadingContent:
		return c.RichText
	case *ToDoContent:
		return c.RichText
	case *TemplateContent:
		return c.RichText
	case *CalloutContent:
		return c.RichText
	case *CodeContent:
		return c.RichText
	}
	return nil
}

func captionOf(b Block) string {
	if c, ok := b.Content.(*MediaContent); ok {
		return c.Caption.PlainText()
	}
	return ""
}

func textWithChildren(t *Transformer, b Block) string {
	text := richTextOf(b).PlainText()
	if len(b.Children) == 0 {
		return text
	}
	return text + "\n" + t.Transform(b.Children)
}

func listItems(t *Transformer, b Block, marker func(i int, item Block) string) string {
	lines := make([]string, 0, len(b.Children))
	for i, item := range b.Children {
		line := marker(i, item) + richTextOf(item).PlainText()
		if len(item.Children) > 0 {
			line += "\n" + t.Transform(item.Children)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// NewPlainTextTransformer returns a Transformer that renders documents as
// readable plain text, with list markers and media placeholders.
func NewPlainTextTransformer(logger hclog.Logger) *Transformer {
	return NewTransformer(map[BlockType]TransformFunc{
		BlockTypeParagraph:        textWithChildren,
		BlockTypeHeading1:         textWithChildren,
		BlockTypeHeading2:         textWithChildren,
		BlockTypeHeading3:         textWithChildren,
		BlockTypeQuote:            textWithChildren,
		BlockTypeToggle:           textWithChildren,
		BlockTypeCallout:          textWithChildren,
		BlockTypeCode:             textWithChildren,
		BlockTypeBulletedListItem: textWithChildren,
		BlockTypeNumberedListItem: textWithChildren,
		BlockTypeToDoListItem:     textWithChildren,
		BlockTypeBulletedList: func(t *Transformer, b Block) string {
			return listItems(t, b, func(int, Block) string { return " - " })
		},
		BlockTypeNumberedList: func(t *Transformer, b Block) string {
			return listItems(t, b, func(i int, _ Block) string {
				return fmt.Sprintf(" %d. ", i+1)
			})
		},
		BlockTypeToDoList: func(t *Transformer, b Block) string {
			return listItems(t, b, func(_ int, item Block) string {
				if c, ok := item.Content.(*ToDoContent); ok && c.Checked {
					return " [x] "
				}
				return " [ ] "
			})
		},
		BlockTypeImage: func(_ *Transformer, b Block) string {
			return fmt.Sprintf("Image (%s)", captionOf(b))
		},
		BlockTypeVideo: func(_ *Transformer, b Block) string {
			return fmt.Sprintf("Video File (%s)", captionOf(b))
		},
		BlockTypeAudio: func(_ *Transformer, b Block) string {
			return fmt.Sprintf("Audio File (%s)", captionOf(b))
		},
		BlockTypeColumnList: func(t *Transformer, b Block) string {
			return t.Transform(b.Children)
		},
		BlockTypeColumn: func(t *Transformer, b Block) string {
			return t.Transform(b.Children)
		},
		BlockTypeSyncedBlock: func(t *Transformer, b Block) string {
			return t.Transform(b.Children)
		},
	}, "\n", logger)
}
