// Package redisdb keeps store documents in Redis hashes, one hash per
// collection. It serves as the cloud mirror target for the sync service.
package redisdb

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

type DB struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *DB {
	if prefix == "" {
		prefix = "notelets"
	}
	return &DB{rdb: rdb, prefix: prefix}
}

func (d *DB) key(collection string) string {
	return d.prefix + ":" + collection
}

func (d *DB) Upsert(ctx context.Context, collection, id string, doc []byte) error {
	return d.rdb.HSet(ctx, d.key(collection), id, doc).Err()
}

func (d *DB) Get(ctx context.Context, collection, id string) ([]byte, error) {
	val, err := d.rdb.HGet(ctx, d.key(collection), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (d *DB) List(ctx context.Context, collection string) ([][]byte, error) {
	all, err := d.rdb.HGetAll(ctx, d.key(collection)).Result()
	if err != nil {
		return nil, err
	}
	docs := make([][]byte, 0, len(all))
	for _, v := range all {
		docs = append(docs, []byte(v))
	}
	return docs, nil
}

func (d *DB) FindByField(ctx context.Context, collection, field, value string) ([][]byte, error) {
	all, err := d.rdb.HGetAll(ctx, d.key(collection)).Result()
	if err != nil {
		return nil, err
	}
	docs := make([][]byte, 0)
	for _, v := range all {
		doc := []byte(v)
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

func (d *DB) Delete(ctx context.Context, collection, id string) error {
	return d.rdb.HDel(ctx, d.key(collection), id).Err()
}
