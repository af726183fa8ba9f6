package storage

import (
	"context"
	"io"
	"time"
)

// Archive retains captured stills on the device for audit and
// troubleshooting. The authoritative copy of every still lives on the
// backend; the archive is strictly supplementary and failures to write
// it never fail a clock event.
type Archive interface {
	// Save stores a file under the given relative path and returns the
	// cleaned path.
	Save(ctx context.Context, path string, r io.Reader) (string, error)

	// Exists checks whether a file is present.
	Exists(ctx context.Context, path string) (bool, error)

	// Prune removes per-day directories older than the cutoff date.
	Prune(ctx context.Context, before time.Time) error
}
