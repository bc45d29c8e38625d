// Package notion defines the normalized document model that is mirrored from
// the Notion API: rich text, blocks, properties, and the raw objects returned
// by the connector.
package notion

// Color is a Notion text or background color. The zero value is the default
// color.
type Color string

// ObjectType is the type of a top-level Notion object.
type ObjectType string

const (
	ObjectTypeBlock     ObjectType = "block"
	ObjectTypePage      ObjectType = "page"
	ObjectTypeDatabase  ObjectType = "database"
	ObjectTypeWorkspace ObjectType = "workspace"
	ObjectTypeComment   ObjectType = "comment"
)

// File is a reference to a file. Once a document is mirrored, URL points at the
// cached copy rather than the short-lived Notion URL.
type File struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// IconType is the kind of an Icon.
type IconType string

const (
	IconTypeEmoji IconType = "emoji"
	IconTypeImage IconType = "image"
)

// Icon is either an emoji or an image file.
type Icon struct {
	Type  IconType `json:"type"`
	Emoji string   `json:"emoji,omitempty"`
	File  *File    `json:"file,omitempty"`
}

// Date is a date or date range. Start and End are kept in the ISO 8601 form
// Notion returns them in, since they may be either dates or datetimes.
type Date struct {
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// VerificationStatus is the state of a wiki page verification property.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationExpired    VerificationStatus = "expired"
)
