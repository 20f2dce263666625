// Package storage keeps generated report artifacts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("object not found")

// Store saves and serves opaque blobs by key. Writing an existing key
// replaces its content.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// validateKey rejects keys that could escape a directory or bucket prefix.
func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
