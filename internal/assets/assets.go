// Package assets persists generated launch images and hands back a
// publicly retrievable URL for them.
package assets

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/logger"
)

// Store writes generated image bytes and returns the URL they will be
// served from
type Store interface {
	// Put persists the named asset and returns its retrievable URL
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// fsStore writes assets under a public directory served statically
type fsStore struct {
	dir     string
	baseURL string
}

// NewFilesystemStore creates a store writing under dir; URLs are
// baseURL joined with the asset name
func NewFilesystemStore(dir, baseURL string) Store {
	return &fsStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *fsStore) Put(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	assetURL := s.baseURL + "/" + url.PathEscape(name)
	logger.InfoCtx(ctx, "Stored asset",
		zap.String("path", path),
		zap.String("url", assetURL),
	)
	return assetURL, nil
}
