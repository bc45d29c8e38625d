package notion

import "time"

// Document is a database page as returned by the connector, before it is
// cached. It carries properties only; content is fetched separately.
type Document struct {
	NotionID         string
	NotionDatabaseID string
	Slug             string
	Name             string
	URL              string
	Cover            *File
	Icon             *Icon
	Properties       []Property
	CreatedTime      time.Time
	LastEditedTime   time.Time
}

// Database is a Notion database as returned by the connector.
type Database struct {
	NotionID       string
	Slug           string
	Name           string
	URL            string
	Cover          *File
	Icon           *Icon
	PropertySchema []PropertySchema
	CreatedTime    time.Time
	LastEditedTime time.Time
}

// DocumentContent is the block tree of a document along with its plain text
// rendering.
type DocumentContent struct {
	Blocks    []Block
	PlainText string
}

// User is a Notion workspace member or bot.
type User struct {
	NotionID string
	Name     string
	Avatar   *File
	IsBot    bool
}
