// Package filestore copies files referenced by Notion objects into storage
// that outlives the short-lived URLs Notion hands out.
package filestore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// CachedFileData describes a file after it has been copied.
type CachedFileData struct {
	URLKey       string
	URL          string
	FileType     string
	Name         string
	FileSizeInKB int64
}

// Backend writes file contents under a key and returns the URL the file is
// served from.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Config configures downloads of remote files.
type Config struct {
	// DownloadTimeout bounds a single download.
	DownloadTimeout time.Duration

	// MaxFileSizeMB is the largest file that will be copied.
	MaxFileSizeMB int
}

// SetDefaults sets default values for optional configuration fields.
func (c *Config) SetDefaults() {
	if c.DownloadTimeout == 0 {
		c.DownloadTimeout = 60 * time.Second
	}
	if c.MaxFileSizeMB == 0 {
		c.MaxFileSizeMB = 100
	}
}

// Store downloads remote files and writes them to a Backend.
type Store struct {
	backend Backend
	client  *http.Client
	maxSize int64
	logger  hclog.Logger
}

// New creates a Store writing to backend.
func New(backend Backend, cfg *Config, logger hclog.Logger) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.SetDefaults()
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Store{
		backend: backend,
		client:  &http.Client{Timeout: cfg.DownloadTimeout},
		maxSize: int64(cfg.MaxFileSizeMB) << 20,
		logger:  logger.Named("filestore"),
	}
}

// URLKey returns a stable key for a remote file URL. The query string is
// ignored because Notion signs file URLs with expiring parameters.
func URLKey(remoteURL string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", fmt.Errorf("invalid file URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid file URL %q: scheme and host are required", remoteURL)
	}

	sum := sha256.Sum256([]byte(strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.EscapedPath()))
	return hex.EncodeToString(sum[:]), nil
}

// CacheFile downloads remoteURL and writes it to the backend under a key
// derived from urlKey. The content type is detected from the file contents.
func (s *Store) CacheFile(ctx context.Context, urlKey, remoteURL string) (*CachedFileData, error) {
	data, err := s.download(ctx, remoteURL)
	if err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(data)
	name := fileName(remoteURL)
	key := urlKey + extension(name, contentType)

	storedURL, err := s.backend.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("error storing file %q: %w", key, err)
	}

	s.logger.Debug("cached file",
		"url_key", urlKey,
		"key", key,
		"content_type", contentType,
		"bytes", len(data),
	)

	return &CachedFileData{
		URLKey:       urlKey,
		URL:          storedURL,
		FileType:     contentType,
		Name:         name,
		FileSizeInKB: sizeInKB(len(data)),
	}, nil
}

func (s *Store) download(ctx context.Context, remoteURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading file: unexpected status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if n > s.maxSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}
	return buf.Bytes(), nil
}

func sizeInKB(n int) int64 {
	return (int64(n) + 1023) / 1024
}

func fileName(remoteURL string) string {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// extension prefers the extension of the original file name and falls back to
// one registered for the content type.
func extension(name, contentType string) string {
	if ext := path.Ext(name); ext != "" && len(ext) <= 6 {
		return strings.ToLower(ext)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	sort.Strings(exts)
	return exts[0]
}
