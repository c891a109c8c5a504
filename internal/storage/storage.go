package storage

import (
	"context"
	"errors"
	"io"
	"path"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores the content at the given key, replacing any existing object
	Save(ctx context.Context, key string, r io.Reader) error

	// Delete removes the object at key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for accessing the object
	URL(key string) string

	// Key reverses URL. It reports false for URLs this storage did not issue.
	Key(url string) (string, bool)
}

// validKey accepts relative slash-separated keys that are already clean.
func validKey(key string) bool {
	clean := path.Clean("/" + key)[1:]
	return clean != "" && clean == key
}
