package memdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Upsert(ctx, "boards", "b1", []byte(`{"_id":"b1"}`)))

	doc, err := db.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"b1"}`, string(doc))

	require.NoError(t, db.Delete(ctx, "boards", "b1"))
	doc, err = db.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGetAbsentReturnsNil(t *testing.T) {
	db := New()
	doc, err := db.Get(context.Background(), "boards", "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	db := New()
	assert.NoError(t, db.Delete(context.Background(), "boards", "missing"))
}

func TestUpsertCopiesDocument(t *testing.T) {
	ctx := context.Background()
	db := New()

	doc := []byte(`{"_id":"b1","title":"before"}`)
	require.NoError(t, db.Upsert(ctx, "boards", "b1", doc))
	copy(doc, []byte(`{"_id":"b1","title":"AFTER!"}`))

	got, err := db.Get(ctx, "boards", "b1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"b1","title":"before"}`, string(got))
}

func TestListAndCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Upsert(ctx, "boards", "b1", []byte(`{"_id":"b1"}`)))
	require.NoError(t, db.Upsert(ctx, "boards", "b2", []byte(`{"_id":"b2"}`)))
	require.NoError(t, db.Upsert(ctx, "cards", "c1", []byte(`{"_id":"c1"}`)))

	boards, err := db.List(ctx, "boards")
	require.NoError(t, err)
	assert.Len(t, boards, 2)

	cards, err := db.List(ctx, "cards")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestFindByField(t *testing.T) {
	ctx := context.Background()
	db := New()

	require.NoError(t, db.Upsert(ctx, "cards", "c1", []byte(`{"_id":"c1","boardId":"b1"}`)))
	require.NoError(t, db.Upsert(ctx, "cards", "c2", []byte(`{"_id":"c2","boardId":"b2"}`)))
	require.NoError(t, db.Upsert(ctx, "cards", "c3", []byte(`{"_id":"c3","boardId":"b1"}`)))

	docs, err := db.FindByField(ctx, "cards", "boardId", "b1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = db.FindByField(ctx, "cards", "boardId", "nope")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
