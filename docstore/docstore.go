// Package docstore provides a minimal document store: named collections of
// JSON documents keyed by string IDs.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is a set of named collections.
type Store interface {
	// Collection returns the collection with the given name. Collections
	// exist implicitly; a collection with no documents is empty, not absent.
	Collection(name string) Collection
}

// Collection is a set of documents keyed by ID.
type Collection interface {
	// Get returns the document with the given ID.
	// If there is no such document, the error is ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)
	// Put inserts a document or replaces an existing one with the same ID.
	Put(ctx context.Context, id string, doc []byte) error
	// Delete removes a document. The result reports whether a document
	// existed. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) (bool, error)
	// IDs returns the IDs of all documents in the collection in ascending
	// order.
	IDs(ctx context.Context) ([]string, error)
	// Update atomically replaces a document with the result of f. The old
	// document is nil if it does not exist. If f returns an error, the
	// document is unchanged and Update returns that error.
	Update(ctx context.Context, id string, f func(old []byte) ([]byte, error)) error
}

// Find decodes the document with the given ID.
func Find[T any](ctx context.Context, c Collection, id string) (T, error) {
	var v T
	b, err := c.Get(ctx, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("couldn't decode document %q: %w", id, err)
	}
	return v, nil
}

// Save encodes v as the document with the given ID.
func Save[T any](ctx context.Context, c Collection, id string, v T) error {
	b, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return fmt.Errorf("couldn't encode document %q: %w", id, err)
	}
	return c.Put(ctx, id, b)
}

// Modify atomically decodes a document, passes it to f, and encodes the
// result. exists reports whether the document was present; when it was not,
// f receives a zero value. An error from f aborts the modification.
func Modify[T any](ctx context.Context, c Collection, id string, f func(v *T, exists bool) error) error {
	return c.Update(ctx, id, func(old []byte) ([]byte, error) {
		var v T
		if old != nil {
			if err := json.Unmarshal(old, &v); err != nil {
				return nil, fmt.Errorf("couldn't decode document %q: %w", id, err)
			}
		}
		if err := f(&v, old != nil); err != nil {
			return nil, err
		}
		return json.Marshal(&v, json.Deterministic(true))
	})
}
