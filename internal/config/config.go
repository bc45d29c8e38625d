// Package config loads the HCL configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the root of the configuration file.
type Config struct {
	// LogLevel is one of trace, debug, info, warn or error.
	LogLevel string `hcl:"log_level,optional"`

	Notion    *Notion    `hcl:"notion,block"`
	Database  *Database  `hcl:"database,block"`
	FileStore *FileStore `hcl:"file_store,block"`
	Search    *Search    `hcl:"search,block"`
	Events    *Events    `hcl:"events,block"`
	Server    *Server    `hcl:"server,block"`
}

// Notion configures the Notion API client.
type Notion struct {
	// APIKey is the integration secret. NOTION_API_KEY is used when empty.
	APIKey        string `hcl:"api_key,optional"`
	BaseURL       string `hcl:"base_url,optional"`
	NotionVersion string `hcl:"notion_version,optional"`

	// Timeout bounds a single API request, e.g. "30s".
	Timeout    string `hcl:"timeout,optional"`
	MaxRetries int    `hcl:"max_retries,optional"`
}

// Database configures the cache database.
type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver string `hcl:"driver,optional"`

	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`

	// Path is the SQLite database file.
	Path string `hcl:"path,optional"`
}

// FileStore configures where files referenced by Notion objects are copied.
type FileStore struct {
	// Type is "s3" or "local".
	Type string `hcl:"type,optional"`

	DownloadTimeout string `hcl:"download_timeout,optional"`
	MaxFileSizeMB   int    `hcl:"max_file_size_mb,optional"`

	S3    *S3FileStore    `hcl:"s3,block"`
	Local *LocalFileStore `hcl:"local,block"`
}

// S3FileStore configures an S3 compatible bucket.
type S3FileStore struct {
	Endpoint           string `hcl:"endpoint,optional"`
	Region             string `hcl:"region,optional"`
	Bucket             string `hcl:"bucket"`
	Prefix             string `hcl:"prefix,optional"`
	AccessKey          string `hcl:"access_key,optional"`
	SecretKey          string `hcl:"secret_key,optional"`
	PublicBaseURL      string `hcl:"public_base_url,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// LocalFileStore configures a directory served by the server itself.
type LocalFileStore struct {
	Path    string `hcl:"path"`
	BaseURL string `hcl:"base_url"`
}

// Search configures the full-text index. Search is disabled without it.
type Search struct {
	IndexPath string `hcl:"index_path"`
}

// Events configures sync event publishing. Events are disabled without it.
type Events struct {
	Brokers []string `hcl:"brokers,optional"`
	Topic   string   `hcl:"topic,optional"`
}

// Server configures the read API.
type Server struct {
	Addr string `hcl:"addr,optional"`

	// ShutdownTimeout bounds graceful shutdown, e.g. "10s".
	ShutdownTimeout string `hcl:"shutdown_timeout,optional"`
}

// NewConfig parses an HCL configuration file, applies environment overrides
// and defaults, and validates the result.
func NewConfig(filename string) (*Config, error) {
	c := &Config{}
	if err := hclsimple.DecodeFile(filename, nil, c); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	c.applyEnv()
	c.SetDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if c.Notion == nil {
		c.Notion = &Notion{}
	}
	if c.Notion.APIKey == "" {
		c.Notion.APIKey = os.Getenv("NOTION_API_KEY")
	}
}

// SetDefaults sets default values for optional configuration.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Notion == nil {
		c.Notion = &Notion{}
	}
	if c.Notion.Timeout == "" {
		c.Notion.Timeout = "30s"
	}
	if c.Notion.MaxRetries == 0 {
		c.Notion.MaxRetries = 5
	}

	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" {
			c.Database.Host = "localhost"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.DBName == "" {
			c.Database.DBName = "notion_mirror"
		}
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "notion-mirror.db"
	}

	if c.FileStore == nil {
		c.FileStore = &FileStore{}
	}
	if c.FileStore.Type == "" {
		c.FileStore.Type = "local"
	}
	if c.FileStore.Type == "local" && c.FileStore.Local == nil {
		c.FileStore.Local = &LocalFileStore{
			Path:    "./files",
			BaseURL: "http://localhost:8000/files",
		}
	}

	if c.Events != nil && c.Events.Topic == "" {
		c.Events.Topic = "notion-mirror.sync"
	}

	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8000"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel,
			validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.Notion, validation.Required),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.FileStore, validation.Required),
		validation.Field(&c.Search),
		validation.Field(&c.Events),
		validation.Field(&c.Server, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (n Notion) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.APIKey, validation.Required.Error(
			"is required (set notion.api_key or NOTION_API_KEY)")),
		validation.Field(&n.Timeout, validation.By(isDuration)),
		validation.Field(&n.MaxRetries, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (d Database) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In("postgres", "sqlite")),
		validation.Field(&d.Path, validation.When(d.Driver == "sqlite", validation.Required)),
		validation.Field(&d.Host, validation.When(d.Driver == "postgres", validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (f FileStore) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Type, validation.Required, validation.In("s3", "local")),
		validation.Field(&f.S3, validation.When(f.Type == "s3", validation.Required)),
		validation.Field(&f.Local, validation.When(f.Type == "local", validation.Required)),
		validation.Field(&f.DownloadTimeout, validation.By(isDuration)),
		validation.Field(&f.MaxFileSizeMB, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (s Search) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.IndexPath, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (e Events) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Topic, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.ShutdownTimeout, validation.By(isDuration)),
	)
}

func isDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration such as \"30s\"")
	}
	return nil
}

// Duration parses a duration that has already been validated, returning
// fallback for an empty string.
func Duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return d
}
