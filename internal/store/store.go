package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"notelets-be/internal/entity"
	"notelets-be/internal/mapper"
	"notelets-be/internal/model"
	"notelets-be/internal/pkg/logger"
	"notelets-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher receives a change event after every successful write or delete.
// The store tolerates a nil publisher.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// CancelFunc removes a watcher. Calling it more than once is safe; after it
// returns the callback is never invoked again.
type CancelFunc func()

// scopeSet is the subscriber registry for one scope key. The query is
// installed by the first watcher and re-run once per notification, so a write
// costs one database read per non-empty scope regardless of subscriber count.
type scopeSet struct {
	query func(ctx context.Context) (interface{}, error)

	// deliver serializes each snapshot query with its fan-out, so every
	// delivery on the scope carries state at least as new as the one
	// before it. Without it a new watcher's initial snapshot could land
	// after a concurrent write's notification and leave the watcher stale.
	// Callbacks run while deliver is held and must not write back into
	// the store.
	deliver sync.Mutex

	subs map[uint64]func(interface{})
}

// Store provides read/watch/write access to boards, cards and chats on top of
// a DocumentDB, translating between the id-keyed entities and the _id-keyed
// storage documents. Notification is scope-filtered: a write re-queries only
// the scopes somebody is currently watching.
//
// Writes are whole-document upserts with no version check; racing writes to
// the same id are last-write-wins. A failed write returns the error and fires
// no notification, so watchers keep their previous snapshot.
type Store struct {
	db     DocumentDB
	pub    Publisher
	log    logger.ILogger
	mapper *mapper.DocumentMapper

	mu     sync.Mutex
	nextId uint64
	scopes map[string]*scopeSet
}

func NewStore(db DocumentDB, pub Publisher, log logger.ILogger) *Store {
	return &Store{
		db:     db,
		pub:    pub,
		log:    log,
		mapper: mapper.NewDocumentMapper(),
		scopes: make(map[string]*scopeSet),
	}
}

// --- One-shot reads ---

func (s *Store) Boards(ctx context.Context) ([]*entity.Board, error) {
	raws, err := s.db.List(ctx, model.CollectionBoards)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	boards := make([]*entity.Board, 0, len(raws))
	for _, raw := range raws {
		var d model.BoardDocument
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode board: %w", err)
		}
		boards = append(boards, s.mapper.BoardToEntity(&d))
	}
	sortBoards(boards)
	return boards, nil
}

func (s *Store) Board(ctx context.Context, id uuid.UUID) (*entity.Board, error) {
	raw, err := s.db.Get(ctx, model.CollectionBoards, id.String())
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var d model.BoardDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return s.mapper.BoardToEntity(&d), nil
}

func (s *Store) CardsByBoard(ctx context.Context, boardId uuid.UUID) ([]*entity.Card, error) {
	raws, err := s.db.FindByField(ctx, model.CollectionCards, "boardId", boardId.String())
	if err != nil {
		return nil, fmt.Errorf("find cards: %w", err)
	}
	cards := make([]*entity.Card, 0, len(raws))
	for _, raw := range raws {
		var d model.CardDocument
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		cards = append(cards, s.mapper.CardToEntity(&d))
	}
	sortCards(cards)
	return cards, nil
}

func (s *Store) Card(ctx context.Context, id uuid.UUID) (*entity.Card, error) {
	raw, err := s.db.Get(ctx, model.CollectionCards, id.String())
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var d model.CardDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode card: %w", err)
	}
	return s.mapper.CardToEntity(&d), nil
}

func (s *Store) ChatsByBoard(ctx context.Context, boardId uuid.UUID) ([]*entity.Chat, error) {
	raws, err := s.db.FindByField(ctx, model.CollectionChats, "boardId", boardId.String())
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	chats := make([]*entity.Chat, 0, len(raws))
	for _, raw := range raws {
		var d model.ChatDocument
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode chat: %w", err)
		}
		chats = append(chats, s.mapper.ChatToEntity(&d))
	}
	sortChats(chats)
	return chats, nil
}

func (s *Store) Chat(ctx context.Context, id uuid.UUID) (*entity.Chat, error) {
	raw, err := s.db.Get(ctx, model.CollectionChats, id.String())
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var d model.ChatDocument
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}
	return s.mapper.ChatToEntity(&d), nil
}

// --- Writes ---

func (s *Store) SetBoard(ctx context.Context, board *entity.Board) error {
	doc := s.mapper.BoardToDocument(board)
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	if err := s.db.Upsert(ctx, model.CollectionBoards, doc.Id, raw); err != nil {
		return fmt.Errorf("upsert board: %w", err)
	}
	s.notify(ctx, collectionScope(model.CollectionBoards), boardScope(board.Id))
	s.publish(ctx, events.NewDocumentChangedEvent(model.CollectionBoards, board.Id, board.Id, events.OpUpsert))
	return nil
}

func (s *Store) SetCard(ctx context.Context, card *entity.Card) error {
	doc := s.mapper.CardToDocument(card)
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}
	if err := s.db.Upsert(ctx, model.CollectionCards, doc.Id, raw); err != nil {
		return fmt.Errorf("upsert card: %w", err)
	}
	s.notify(ctx,
		collectionScope(model.CollectionCards),
		cardScope(card.Id),
		cardsByBoardScope(card.BoardId),
	)
	s.publish(ctx, events.NewDocumentChangedEvent(model.CollectionCards, card.Id, card.BoardId, events.OpUpsert))
	return nil
}

func (s *Store) SetChat(ctx context.Context, chat *entity.Chat) error {
	doc := s.mapper.ChatToDocument(chat)
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}
	if err := s.db.Upsert(ctx, model.CollectionChats, doc.Id, raw); err != nil {
		return fmt.Errorf("upsert chat: %w", err)
	}
	s.notify(ctx,
		collectionScope(model.CollectionChats),
		chatScope(chat.Id),
		chatsByBoardScope(chat.BoardId),
	)
	s.publish(ctx, events.NewDocumentChangedEvent(model.CollectionChats, chat.Id, chat.BoardId, events.OpUpsert))
	return nil
}

// --- Deletes ---

// RemoveBoard cascades: each owned card and chat is deleted individually,
// firing its own scoped notifications, before the board itself goes.
func (s *Store) RemoveBoard(ctx context.Context, id uuid.UUID) error {
	cards, err := s.CardsByBoard(ctx, id)
	if err != nil {
		return err
	}
	for _, card := range cards {
		if err := s.RemoveCard(ctx, card.Id); err != nil {
			return err
		}
	}

	chats, err := s.ChatsByBoard(ctx, id)
	if err != nil {
		return err
	}
	for _, chat := range chats {
		if err := s.RemoveChat(ctx, chat.Id); err != nil {
			return err
		}
	}

	if err := s.db.Delete(ctx, model.CollectionBoards, id.String()); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	s.notify(ctx, collectionScope(model.CollectionBoards), boardScope(id))
	s.publish(ctx, events.NewDocumentChangedEvent(model.CollectionBoards, id, id, events.OpDelete))
	return nil
}

// RemoveCard looks the card up first to learn its board, so the board-scoped
// list subscribers can be notified. Removing an unknown id is a silent no-op.
func (s *Store) RemoveCard(ctx context.Context, id uuid.UUID) error {
	card, err := s.Card(ctx, id)
	if err != nil {
		return err
	}
	if card == nil {
		return nil
	}
	if err := s.db.Delete(ctx, model.CollectionCards, id.String()); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	s.notify(ctx,
		collectionScope(model.CollectionCards),
		cardScope(id),
		cardsByBoardScope(card.BoardId),
	)
	s.publish(ctx, events.NewDocumentChangedEvent(model.CollectionCards, id, card.BoardId, events.OpDelete))
	return nil
}

func (s *Store) RemoveChat(ctx context.Context, id uuid.UUID) error {
	chat, err := s.Chat(ctx, id)
	if err != nil {
		return err
	}
	if chat == nil {
		return nil
	}
	if err := s.db.Delete(ctx, model.CollectionChats, id.String()); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	s.notify(ctx,
		collectionScope(model.CollectionChats),
		chatScope(id),
		chatsByBoardScope(chat.BoardId),
	)
	s.publish(ctx, events.NewDocumentChangedEvent(model.CollectionChats, id, chat.BoardId, events.OpDelete))
	return nil
}

// --- Watchers ---

// WatchBoards delivers the full board list now and after every board write.
func (s *Store) WatchBoards(ctx context.Context, fn func([]*entity.Board)) CancelFunc {
	query := func(ctx context.Context) (interface{}, error) {
		boards, err := s.Boards(ctx)
		if err != nil {
			return nil, err
		}
		return boards, nil
	}
	return s.watch(ctx, collectionScope(model.CollectionBoards), query, func(v interface{}) {
		fn(v.([]*entity.Board))
	})
}

// WatchBoard delivers the board now and after every change; nil once deleted.
func (s *Store) WatchBoard(ctx context.Context, id uuid.UUID, fn func(*entity.Board)) CancelFunc {
	query := func(ctx context.Context) (interface{}, error) {
		board, err := s.Board(ctx, id)
		if err != nil {
			return nil, err
		}
		return board, nil
	}
	return s.watch(ctx, boardScope(id), query, func(v interface{}) {
		board, _ := v.(*entity.Board)
		fn(board)
	})
}

func (s *Store) WatchCardsByBoard(ctx context.Context, boardId uuid.UUID, fn func([]*entity.Card)) CancelFunc {
	query := func(ctx context.Context) (interface{}, error) {
		cards, err := s.CardsByBoard(ctx, boardId)
		if err != nil {
			return nil, err
		}
		return cards, nil
	}
	return s.watch(ctx, cardsByBoardScope(boardId), query, func(v interface{}) {
		fn(v.([]*entity.Card))
	})
}

func (s *Store) WatchCard(ctx context.Context, id uuid.UUID, fn func(*entity.Card)) CancelFunc {
	query := func(ctx context.Context) (interface{}, error) {
		card, err := s.Card(ctx, id)
		if err != nil {
			return nil, err
		}
		return card, nil
	}
	return s.watch(ctx, cardScope(id), query, func(v interface{}) {
		card, _ := v.(*entity.Card)
		fn(card)
	})
}

func (s *Store) WatchChatsByBoard(ctx context.Context, boardId uuid.UUID, fn func([]*entity.Chat)) CancelFunc {
	query := func(ctx context.Context) (interface{}, error) {
		chats, err := s.ChatsByBoard(ctx, boardId)
		if err != nil {
			return nil, err
		}
		return chats, nil
	}
	return s.watch(ctx, chatsByBoardScope(boardId), query, func(v interface{}) {
		fn(v.([]*entity.Chat))
	})
}

func (s *Store) WatchChat(ctx context.Context, id uuid.UUID, fn func(*entity.Chat)) CancelFunc {
	query := func(ctx context.Context) (interface{}, error) {
		chat, err := s.Chat(ctx, id)
		if err != nil {
			return nil, err
		}
		return chat, nil
	}
	return s.watch(ctx, chatScope(id), query, func(v interface{}) {
		chat, _ := v.(*entity.Chat)
		fn(chat)
	})
}

// --- Internals ---

func (s *Store) watch(
	ctx context.Context,
	scope string,
	query func(ctx context.Context) (interface{}, error),
	deliver func(interface{}),
) CancelFunc {
	s.mu.Lock()
	set, ok := s.scopes[scope]
	if !ok {
		set = &scopeSet{
			query: query,
			subs:  make(map[uint64]func(interface{})),
		}
		s.scopes[scope] = set
	}
	s.nextId++
	id := s.nextId
	set.subs[id] = deliver
	s.mu.Unlock()

	// Immediate snapshot for the new watcher only, queried under the
	// scope's delivery lock so it cannot trail a concurrent write's
	// notification with older data.
	set.deliver.Lock()
	snapshot, err := query(ctx)
	if err != nil {
		s.log.Error("Store", "Initial snapshot query failed", map[string]interface{}{
			"scope": scope,
			"error": err.Error(),
		})
	} else {
		deliver(snapshot)
	}
	set.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.scopes[scope]; ok {
				delete(set.subs, id)
				// Drop the scope entry once empty so board switches
				// don't accumulate dead registries.
				if len(set.subs) == 0 {
					delete(s.scopes, scope)
				}
			}
		})
	}
}

// notify re-queries each scope that has live subscribers and fans the fresh
// snapshot out. Scopes with no subscribers are skipped without touching the
// database.
func (s *Store) notify(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.mu.Lock()
		set, ok := s.scopes[scope]
		s.mu.Unlock()
		if !ok {
			continue
		}

		set.deliver.Lock()
		s.mu.Lock()
		query := set.query
		subs := make([]func(interface{}), 0, len(set.subs))
		for _, fn := range set.subs {
			subs = append(subs, fn)
		}
		s.mu.Unlock()

		if len(subs) == 0 {
			set.deliver.Unlock()
			continue
		}

		snapshot, err := query(ctx)
		if err != nil {
			s.log.Error("Store", "Notification query failed", map[string]interface{}{
				"scope": scope,
				"error": err.Error(),
			})
			set.deliver.Unlock()
			continue
		}
		for _, fn := range subs {
			fn(snapshot)
		}
		set.deliver.Unlock()
	}
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, event); err != nil {
		s.log.Warn("Store", "Failed to publish change event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func sortBoards(boards []*entity.Board) {
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].Id.String() < boards[j].Id.String()
		}
		return boards[i].CreatedAt.Before(boards[j].CreatedAt)
	})
}

func sortCards(cards []*entity.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].Id.String() < cards[j].Id.String()
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
}

func sortChats(chats []*entity.Chat) {
	sort.Slice(chats, func(i, j int) bool {
		if chats[i].CreatedAt.Equal(chats[j].CreatedAt) {
			return chats[i].Id.String() < chats[j].Id.String()
		}
		return chats[i].CreatedAt.Before(chats[j].CreatedAt)
	})
}
