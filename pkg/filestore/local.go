package filestore

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// LocalConfig contains configuration for the local backend.
type LocalConfig struct {
	// Path is the directory files are written to.
	Path string

	// BaseURL is the URL the directory is served at, e.g.
	// "http://localhost:8000/files".
	BaseURL string
}

// Validate validates the local configuration.
func (c *LocalConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	return nil
}

// LocalBackend stores files in a directory and serves them over HTTP.
type LocalBackend struct {
	fs      afero.Fs
	baseURL string
	logger  hclog.Logger
}

// NewLocalBackend creates a backend rooted at cfg.Path on fs. Pass
// afero.NewOsFs() to write to disk.
func NewLocalBackend(fs afero.Fs, cfg *LocalConfig, logger hclog.Logger) (*LocalBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid local file store configuration: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := fs.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("error creating file store directory: %w", err)
	}

	return &LocalBackend{
		fs:      afero.NewBasePathFs(fs, cfg.Path),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger.Named("local"),
	}, nil
}

// Put implements Backend.
func (b *LocalBackend) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	name := path.Clean("/" + key)
	if err := b.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("error creating directory: %w", err)
	}
	if err := afero.WriteFile(b.fs, name, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing file: %w", err)
	}
	return b.baseURL + name, nil
}

// Handler serves the stored files. Mount it with http.StripPrefix at the path
// of BaseURL.
func (b *LocalBackend) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(b.fs).Dir("/"))
}
