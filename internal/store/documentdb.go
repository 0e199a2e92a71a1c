package store

import "context"

// DocumentDB is the pluggable document database underneath the reactive
// store. Documents are opaque JSON blobs keyed by collection and "_id"; the
// store owns the schema translation and all notification fan-out.
type DocumentDB interface {
	// Upsert inserts or replaces the document with the given id.
	Upsert(ctx context.Context, collection, id string, doc []byte) error

	// Get returns the document, or (nil, nil) when it does not exist.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([][]byte, error)

	// FindByField returns every document whose top-level string field
	// matches value.
	FindByField(ctx context.Context, collection, field, value string) ([][]byte, error)

	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
}
