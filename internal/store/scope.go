package store

import (
	"notelets-be/internal/model"

	"github.com/google/uuid"
)

// Scope keys name the subscriber sets a write can touch: one per collection,
// one per document id, and one per board-filtered list for cards and chats.

func collectionScope(collection string) string {
	return collection
}

func boardScope(id uuid.UUID) string {
	return "board:" + id.String()
}

func cardScope(id uuid.UUID) string {
	return "card:" + id.String()
}

func chatScope(id uuid.UUID) string {
	return "chat:" + id.String()
}

func cardsByBoardScope(boardId uuid.UUID) string {
	return model.CollectionCards + ":board:" + boardId.String()
}

func chatsByBoardScope(boardId uuid.UUID) string {
	return model.CollectionChats + ":board:" + boardId.String()
}
