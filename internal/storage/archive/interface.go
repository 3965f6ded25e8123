// Package archive stores blobs such as inflation index files and exported
// reports on a local directory or an S3-compatible bucket.
package archive

import (
	"context"
	"strings"

	"github.com/newthinker/bondcalc/internal/core"
)

// Storage is a flat key/blob store addressed by slash-separated paths.
type Storage interface {
	// Write stores data at path, replacing what was there.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the data at path. A missing path is core.ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns every path under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)
}

// Backend names.
const (
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Type string
	Path string // localfs root
	S3   S3Config
}

// New creates the configured backend. An empty type means localfs.
func New(cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Type) {
	case TypeLocalFS, "":
		if cfg.Path == "" {
			return nil, core.Errorf(core.ErrConfigInvalid, "storage path required for localfs")
		}
		return NewLocalFS(cfg.Path)
	case TypeS3:
		if cfg.S3.Bucket == "" {
			return nil, core.Errorf(core.ErrConfigInvalid, "storage bucket required for s3")
		}
		return NewS3(cfg.S3)
	default:
		return nil, core.Errorf(core.ErrConfigInvalid, "unknown storage type %q", cfg.Type)
	}
}
