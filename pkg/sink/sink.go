// Package sink delivers built artifacts to their destination.
//
// [Dir] writes into a local directory. [S3] uploads to an S3-compatible
// bucket so the HTTP server can hand out links instead of large bodies.
package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/decksmith/pkg/errors"
)

// Sink stores one artifact and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Dir writes artifacts into a directory.
type Dir struct {
	Path string
}

// Put writes data to Path/name atomically and returns the file path.
func (d Dir) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(d.Path, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.New(errors.ErrCodeInvalidInput, "invalid artifact name %q", name)
	}
	return nil
}
