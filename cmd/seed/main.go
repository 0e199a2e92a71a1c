package main

import (
	"context"
	"os"
	"time"

	"notelets-be/internal/config"
	"notelets-be/internal/entity"
	"notelets-be/internal/pkg/logger"
	"notelets-be/internal/store"
	"notelets-be/internal/store/gormdb"
	"notelets-be/internal/store/memdb"
	"notelets-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Seeds a demo board with a few cards and a chat thread. Against the memory
// backend this is only useful as a smoke test; against Postgres it gives a
// fresh database something to look at.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	var db store.DocumentDB
	switch cfg.Database.Backend {
	case "postgres":
		gdb, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			color.Red("Failed to connect to Postgres: %v", err)
			os.Exit(1)
		}
		docDB := gormdb.New(gdb)
		if err := docDB.Migrate(); err != nil {
			color.Red("Failed to migrate: %v", err)
			os.Exit(1)
		}
		db = docDB
		color.Cyan("Seeding POSTGRES backend")
	default:
		db = memdb.New()
		color.Cyan("Seeding MEMORY backend (data is gone when this process exits)")
	}

	st := store.NewStore(db, nil, logger.NewZapLogger(cfg.App.LogFilePath, false))

	now := time.Now()
	board := entity.Board{
		Id:        uuid.New(),
		Title:     "Getting Started",
		ViewType:  "canvas",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.SetBoard(ctx, &board); err != nil {
		color.Red("Failed to seed board: %v", err)
		os.Exit(1)
	}
	color.Green("Board %s (%s)", board.Title, board.Id)

	cards := []entity.Card{
		{
			Id:      uuid.New(),
			BoardId: board.Id,
			Kind:    entity.CardKindRichtext,
			Title:   "Welcome",
			Content: "Drag cards around, or ask the assistant about anything on this board.",
		},
		{
			Id:      uuid.New(),
			BoardId: board.Id,
			Kind:    entity.CardKindRichtext,
			Title:   "Study notes",
			Content: "The reactive store re-queries a scope only while someone is watching it.",
		},
		{
			Id:      uuid.New(),
			BoardId: board.Id,
			Kind:    entity.CardKindImage,
			Title:   "Logo",
			Image:   &entity.ImageAttachment{URL: "https://example.com/logo.png", Alt: "logo"},
		},
	}
	for i := range cards {
		cards[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		cards[i].UpdatedAt = cards[i].CreatedAt
		if err := st.SetCard(ctx, &cards[i]); err != nil {
			color.Red("Failed to seed card %q: %v", cards[i].Title, err)
			os.Exit(1)
		}
		color.Green("  Card %s (%s)", cards[i].Title, cards[i].Id)
	}

	chat := entity.Chat{
		Id:        uuid.New(),
		BoardId:   board.Id,
		Title:     "First chat",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.SetChat(ctx, &chat); err != nil {
		color.Red("Failed to seed chat: %v", err)
		os.Exit(1)
	}
	color.Green("  Chat %s (%s)", chat.Title, chat.Id)

	color.Cyan("Done.")
}
