package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hashicorp-forge/notion-mirror/pkg/notion"
)

// CachedDatabase is a mirrored Notion database.
type CachedDatabase struct {
	ID uint `gorm:"primaryKey"`

	// NotionID is the id of the database in Notion.
	NotionID string `gorm:"uniqueIndex;not null"`

	// Slug is derived from the database title.
	Slug string `gorm:"index;not null"`

	Name           string `gorm:"not null"`
	URL            string
	Cover          JSON[*notion.File]
	Icon           JSON[*notion.Icon]
	PropertySchema JSON[[]notion.PropertySchema]

	NotionCreatedTime    time.Time
	NotionLastEditedTime time.Time

	// LastSyncedAt is when the database was last written to the cache.
	LastSyncedAt time.Time `gorm:"not null"`

	Documents []CachedDocument `gorm:"foreignKey:DatabaseID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CachedDatabase) TableName() string {
	return "cached_notion_databases"
}

func (d *CachedDatabase) validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.NotionID, validation.Required),
		validation.Field(&d.Slug, validation.Required),
	)
}

// CachedDocument is a mirrored database page. Slugs are unique within a
// database only.
type CachedDocument struct {
	ID uint `gorm:"primaryKey"`

	NotionID string `gorm:"uniqueIndex;not null"`

	DatabaseID uint            `gorm:"not null;uniqueIndex:idx_cached_notion_documents_database_slug"`
	Database   *CachedDatabase `gorm:"constraint:OnDelete:CASCADE"`

	Slug string `gorm:"not null;uniqueIndex:idx_cached_notion_documents_database_slug"`

	Name       string `gorm:"not null"`
	URL        string
	Cover      JSON[*notion.File]
	Icon       JSON[*notion.Icon]
	Properties JSON[[]notion.Property]

	// Blocks and PlainText are replaced together by a content sync.
	Blocks    JSON[[]notion.Block]
	PlainText string `gorm:"type:text"`

	NotionCreatedTime    time.Time
	NotionLastEditedTime time.Time

	PropertiesLastSyncedAt time.Time `gorm:"not null"`

	// BlocksLastSyncedAt is nil until content is first cached.
	BlocksLastSyncedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CachedDocument) TableName() string {
	return "cached_notion_documents"
}

func (d *CachedDocument) validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.NotionID, validation.Required),
		validation.Field(&d.DatabaseID, validation.Required),
		validation.Field(&d.Slug, validation.Required),
	)
}

// CachedUser is a Notion user. People properties are resolved against cached
// users when a document is cached.
type CachedUser struct {
	ID uint `gorm:"primaryKey"`

	NotionID string `gorm:"uniqueIndex;not null"`
	Name     string
	Avatar   JSON[*notion.File]
	IsBot    bool `gorm:"not null;default:false"`

	LastSyncedAt time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CachedUser) TableName() string {
	return "cached_notion_users"
}

func (u *CachedUser) validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.NotionID, validation.Required),
	)
}

// CachedFile records a file copied out of Notion into the file store.
type CachedFile struct {
	ID uint `gorm:"primaryKey"`

	// URLKey identifies the remote file independent of URL signing
	// parameters.
	URLKey string `gorm:"uniqueIndex;not null"`

	// URL is where the copy is served from.
	URL          string `gorm:"not null"`
	FileType     string
	Name         string
	FileSizeInKB int64 `gorm:"column:file_size_in_kb"`

	LastSyncedAt time.Time `gorm:"not null"`

	CreatedAt time.Time
}

func (CachedFile) TableName() string {
	return "cached_files"
}

func (f *CachedFile) validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.URLKey, validation.Required),
		validation.Field(&f.URL, validation.Required),
		validation.Field(&f.FileSizeInKB, validation.Min(int64(0))),
	)
}

// ModelsToAutoMigrate returns the models for gorm AutoMigrate, parents first.
func ModelsToAutoMigrate() []any {
	return []any{
		&CachedDatabase{},
		&CachedDocument{},
		&CachedUser{},
		&CachedFile{},
	}
}
