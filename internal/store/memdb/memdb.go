// Package memdb is the in-process document database backing the store in
// local mode. Collections are go-cache instances with no expiry, so documents
// live until deleted.
package memdb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/patrickmn/go-cache"
)

type DB struct {
	mu          sync.Mutex
	collections map[string]*cache.Cache
}

func New() *DB {
	return &DB{
		collections: make(map[string]*cache.Cache),
	}
}

func (d *DB) collection(name string) *cache.Cache {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = cache.New(cache.NoExpiration, 0)
		d.collections[name] = c
	}
	return c
}

func (d *DB) Upsert(_ context.Context, collection, id string, doc []byte) error {
	stored := make([]byte, len(doc))
	copy(stored, doc)
	d.collection(collection).Set(id, stored, cache.NoExpiration)
	return nil
}

func (d *DB) Get(_ context.Context, collection, id string) ([]byte, error) {
	if v, found := d.collection(collection).Get(id); found {
		return v.([]byte), nil
	}
	return nil, nil
}

func (d *DB) List(_ context.Context, collection string) ([][]byte, error) {
	items := d.collection(collection).Items()
	docs := make([][]byte, 0, len(items))
	for _, item := range items {
		docs = append(docs, item.Object.([]byte))
	}
	return docs, nil
}

func (d *DB) FindByField(_ context.Context, collection, field, value string) ([][]byte, error) {
	items := d.collection(collection).Items()
	docs := make([][]byte, 0)
	for _, item := range items {
		doc := item.Object.([]byte)
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(doc, &probe); err != nil {
			continue
		}
		raw, ok := probe[field]
		if !ok {
			continue
		}
		var got string
		if err := json.Unmarshal(raw, &got); err != nil {
			continue
		}
		if got == value {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (d *DB) Delete(_ context.Context, collection, id string) error {
	d.collection(collection).Delete(id)
	return nil
}
