package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"notelets-be/internal/entity"
	"notelets-be/internal/store"
	"notelets-be/internal/store/memdb"
	"notelets-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestStore(t *testing.T) (*store.Store, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	return store.NewStore(memdb.New(), pub, nopLogger{}), pub
}

func makeBoard(title string) *entity.Board {
	now := time.Now()
	return &entity.Board{
		Id:        uuid.New(),
		Title:     title,
		ViewType:  "canvas",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func makeCard(boardId uuid.UUID, title string, at time.Time) *entity.Card {
	return &entity.Card{
		Id:        uuid.New(),
		BoardId:   boardId,
		Kind:      entity.CardKindRichtext,
		Title:     title,
		Content:   "content of " + title,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestSetAndGetBoard(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("Physics")
	require.NoError(t, st.SetBoard(ctx, board))

	got, err := st.Board(ctx, board.Id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, board.Id, got.Id)
	assert.Equal(t, "Physics", got.Title)
	assert.Equal(t, "canvas", got.ViewType)
}

func TestBoardAbsentReturnsNil(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	got, err := st.Board(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetBoardOverwrites(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("v1")
	require.NoError(t, st.SetBoard(ctx, board))

	board.Title = "v2"
	require.NoError(t, st.SetBoard(ctx, board))

	got, err := st.Board(ctx, board.Id)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)

	boards, err := st.Boards(ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 1)
}

func TestCardsByBoardSortedAndFiltered(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	boardA := makeBoard("A")
	boardB := makeBoard("B")
	require.NoError(t, st.SetBoard(ctx, boardA))
	require.NoError(t, st.SetBoard(ctx, boardB))

	base := time.Now()
	second := makeCard(boardA.Id, "second", base.Add(time.Second))
	first := makeCard(boardA.Id, "first", base)
	other := makeCard(boardB.Id, "other", base)
	for _, c := range []*entity.Card{second, first, other} {
		require.NoError(t, st.SetCard(ctx, c))
	}

	cards, err := st.CardsByBoard(ctx, boardA.Id)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "first", cards[0].Title)
	assert.Equal(t, "second", cards[1].Title)
}

func TestWatchDeliversImmediateSnapshot(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("Snap")
	require.NoError(t, st.SetBoard(ctx, board))

	var snapshots [][]*entity.Board
	cancel := st.WatchBoards(ctx, func(boards []*entity.Board) {
		snapshots = append(snapshots, boards)
	})
	defer cancel()

	require.Len(t, snapshots, 1)
	require.Len(t, snapshots[0], 1)
	assert.Equal(t, board.Id, snapshots[0][0].Id)
}

func TestWatchNotifiesOnWrite(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	var snapshots [][]*entity.Board
	cancel := st.WatchBoards(ctx, func(boards []*entity.Board) {
		snapshots = append(snapshots, boards)
	})
	defer cancel()

	require.NoError(t, st.SetBoard(ctx, makeBoard("one")))
	require.NoError(t, st.SetBoard(ctx, makeBoard("two")))

	// Initial empty snapshot plus one per write.
	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[1], 1)
	assert.Len(t, snapshots[2], 2)
}

func TestWatchScopeFiltering(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	boardA := makeBoard("A")
	boardB := makeBoard("B")
	require.NoError(t, st.SetBoard(ctx, boardA))
	require.NoError(t, st.SetBoard(ctx, boardB))

	callsA := 0
	cancel := st.WatchCardsByBoard(ctx, boardA.Id, func([]*entity.Card) {
		callsA++
	})
	defer cancel()
	require.Equal(t, 1, callsA) // snapshot

	// A write on board B must not wake board A's watcher.
	require.NoError(t, st.SetCard(ctx, makeCard(boardB.Id, "b-card", time.Now())))
	assert.Equal(t, 1, callsA)

	require.NoError(t, st.SetCard(ctx, makeCard(boardA.Id, "a-card", time.Now())))
	assert.Equal(t, 2, callsA)
}

func TestCancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	calls := 0
	cancel := st.WatchBoards(ctx, func([]*entity.Board) { calls++ })
	require.Equal(t, 1, calls)

	cancel()
	cancel() // second call is a no-op

	require.NoError(t, st.SetBoard(ctx, makeBoard("after-cancel")))
	assert.Equal(t, 1, calls)
}

func TestMultipleWatchersSameScope(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	var a, b int
	cancelA := st.WatchBoards(ctx, func([]*entity.Board) { a++ })
	cancelB := st.WatchBoards(ctx, func([]*entity.Board) { b++ })
	defer cancelB()

	require.NoError(t, st.SetBoard(ctx, makeBoard("x")))
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)

	cancelA()
	require.NoError(t, st.SetBoard(ctx, makeBoard("y")))
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)
}

func TestRemoveBoardCascades(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("doomed")
	require.NoError(t, st.SetBoard(ctx, board))
	card := makeCard(board.Id, "card", time.Now())
	require.NoError(t, st.SetCard(ctx, card))
	chat := &entity.Chat{Id: uuid.New(), BoardId: board.Id, Title: "chat", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, st.SetChat(ctx, chat))

	require.NoError(t, st.RemoveBoard(ctx, board.Id))

	gotBoard, err := st.Board(ctx, board.Id)
	require.NoError(t, err)
	assert.Nil(t, gotBoard)

	gotCard, err := st.Card(ctx, card.Id)
	require.NoError(t, err)
	assert.Nil(t, gotCard)

	gotChat, err := st.Chat(ctx, chat.Id)
	require.NoError(t, err)
	assert.Nil(t, gotChat)
}

func TestWatchSnapshotNeverGoesStale(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	const writes = 50
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for i := 0; i < writes; i++ {
			assert.NoError(t, st.SetBoard(ctx, makeBoard(fmt.Sprintf("b%d", i))))
		}
	}()

	// Register while the writer is running: the initial snapshot must not
	// arrive after, and override, a fresher notification.
	var mu sync.Mutex
	var counts []int
	cancel := st.WatchBoards(ctx, func(boards []*entity.Board) {
		mu.Lock()
		counts = append(counts, len(boards))
		mu.Unlock()
	})
	defer cancel()
	<-writerDone

	require.NoError(t, st.SetBoard(ctx, makeBoard("last")))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, counts)
	for i := 1; i < len(counts); i++ {
		assert.GreaterOrEqual(t, counts[i], counts[i-1], "snapshot went backwards at delivery %d", i)
	}
	assert.Equal(t, writes+1, counts[len(counts)-1])
}

func TestCascadeNotifiesCardWatcher(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("board")
	require.NoError(t, st.SetBoard(ctx, board))
	card := makeCard(board.Id, "c1", time.Now())
	require.NoError(t, st.SetCard(ctx, card))

	var seen []*entity.Card
	cancel := st.WatchCard(ctx, card.Id, func(c *entity.Card) {
		seen = append(seen, c)
	})
	defer cancel()
	require.Len(t, seen, 1)
	require.NotNil(t, seen[0])

	// Deleting the board cascades to the card, and the card watcher learns
	// of the disappearance with a nil delivery.
	require.NoError(t, st.RemoveBoard(ctx, board.Id))
	require.GreaterOrEqual(t, len(seen), 2)
	assert.Nil(t, seen[len(seen)-1])
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	st, pub := newTestStore(t)

	require.NoError(t, st.RemoveBoard(ctx, uuid.New()))
	require.NoError(t, st.RemoveCard(ctx, uuid.New()))
	require.NoError(t, st.RemoveChat(ctx, uuid.New()))
	assert.Empty(t, pub.events)
}

func TestRemoveCardNotifiesBoardScope(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("board")
	require.NoError(t, st.SetBoard(ctx, board))
	card := makeCard(board.Id, "victim", time.Now())
	require.NoError(t, st.SetCard(ctx, card))

	var last []*entity.Card
	cancel := st.WatchCardsByBoard(ctx, board.Id, func(cards []*entity.Card) {
		last = cards
	})
	defer cancel()
	require.Len(t, last, 1)

	require.NoError(t, st.RemoveCard(ctx, card.Id))
	assert.Empty(t, last)
}

func TestWriteEventsPublished(t *testing.T) {
	ctx := context.Background()
	st, pub := newTestStore(t)

	board := makeBoard("evt")
	require.NoError(t, st.SetBoard(ctx, board))
	require.NoError(t, st.RemoveBoard(ctx, board.Id))

	require.Len(t, pub.events, 2)

	upsert, ok := pub.events[0].(events.DocumentChangedEvent)
	require.True(t, ok)
	assert.Equal(t, events.OpUpsert, upsert.Op)
	assert.Equal(t, board.Id, upsert.DocumentId)
	assert.Equal(t, board.Id, upsert.BoardId)

	del, ok := pub.events[1].(events.DocumentChangedEvent)
	require.True(t, ok)
	assert.Equal(t, events.OpDelete, del.Op)
}

func TestWatchChatSingleDocument(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	board := makeBoard("b")
	require.NoError(t, st.SetBoard(ctx, board))
	chat := &entity.Chat{Id: uuid.New(), BoardId: board.Id, Title: "t0", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, st.SetChat(ctx, chat))

	var seen []*entity.Chat
	cancel := st.WatchChat(ctx, chat.Id, func(c *entity.Chat) {
		seen = append(seen, c)
	})
	defer cancel()
	require.Len(t, seen, 1)
	assert.Equal(t, "t0", seen[0].Title)

	chat.Title = "t1"
	chat.Messages = append(chat.Messages, entity.ChatMessage{Role: entity.RoleUser, Content: "hi", CreatedAt: time.Now()})
	require.NoError(t, st.SetChat(ctx, chat))

	require.Len(t, seen, 2)
	assert.Equal(t, "t1", seen[1].Title)
	require.Len(t, seen[1].Messages, 1)
	assert.Equal(t, "hi", seen[1].Messages[0].Content)
}
