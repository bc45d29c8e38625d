package notion

import "strings"

// RichTextType is the kind of a rich text span.
type RichTextType string

const (
	RichTextTypeText     RichTextType = "text"
	RichTextTypeMention  RichTextType = "mention"
	RichTextTypeEquation RichTextType = "equation"
)

// Annotations are the styles applied to a rich text span.
type Annotations struct {
	Bold          bool  `json:"bold"`
	Italic        bool  `json:"italic"`
	Strikethrough bool  `json:"strikethrough"`
	Underline     bool  `json:"underline"`
	Code          bool  `json:"code"`
	Color         Color `json:"color,omitempty"`
}

// RichTextItem is a single styled span of text.
type RichTextItem struct {
	Type        RichTextType `json:"type"`
	Annotations Annotations  `json:"annotations"`
	Text        string       `json:"text"`
	Href        string       `json:"href,omitempty"`
}

// RichText is an ordered list of spans.
type RichText []RichTextItem

// PlainText concatenates the text of every span in order.
func (rt RichText) PlainText() string {
	var b strings.Builder
	for _, item := range rt {
		b.WriteString(item.Text)
	}
	return b.String()
}
