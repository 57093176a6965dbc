package index

import "context"

// DocStore persists the whole metadata document as one opaque value.
// Implementations live in this package: a flat JSON file and an embedded
// SQLite key-value store. The index never depends on a specific medium.
type DocStore interface {
	// Load returns the raw document, or model.ErrNotFound when none has
	// been stored yet.
	Load(ctx context.Context) ([]byte, error)

	// Store replaces the document atomically.
	Store(ctx context.Context, data []byte) error

	// Ping reports whether the backing medium is usable.
	Ping(ctx context.Context) error

	Close() error
}
