package service

import (
	"context"
	"time"

	"notelets-be/internal/dto"
	"notelets-be/internal/entity"
	"notelets-be/internal/store"

	"github.com/google/uuid"
)

type IBoardService interface {
	Set(ctx context.Context, req *dto.SetBoardRequest) (*dto.SetBoardResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowBoardResponse, error)
	List(ctx context.Context) ([]*dto.ShowBoardResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type boardService struct {
	store *store.Store
}

func NewBoardService(st *store.Store) IBoardService {
	return &boardService{store: st}
}

// Set creates or replaces a board. A request without an id becomes a new
// board; with an id it overwrites whatever is there.
func (s *boardService) Set(ctx context.Context, req *dto.SetBoardRequest) (*dto.SetBoardResponse, error) {
	now := time.Now()
	board := entity.Board{
		Id:       uuid.New(),
		Title:    req.Title,
		ViewType: req.ViewType,
		LayoutConfig: entity.LayoutConfig{
			SelectedCardId: req.LayoutConfig.SelectedCardId,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if board.ViewType == "" {
		board.ViewType = "canvas"
	}

	if req.Id != nil {
		board.Id = *req.Id
		existing, err := s.store.Board(ctx, board.Id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			board.CreatedAt = existing.CreatedAt
		}
	}

	if err := s.store.SetBoard(ctx, &board); err != nil {
		return nil, err
	}

	return &dto.SetBoardResponse{Id: board.Id}, nil
}

func (s *boardService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowBoardResponse, error) {
	board, err := s.store.Board(ctx, id)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, nil // Not found
	}
	return boardToResponse(board), nil
}

func (s *boardService) List(ctx context.Context) ([]*dto.ShowBoardResponse, error) {
	boards, err := s.store.Boards(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowBoardResponse, 0, len(boards))
	for _, board := range boards {
		responses = append(responses, boardToResponse(board))
	}
	return responses, nil
}

// Delete removes the board and everything on it. Deleting an absent board is
// a no-op.
func (s *boardService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.RemoveBoard(ctx, id)
}

func boardToResponse(board *entity.Board) *dto.ShowBoardResponse {
	return &dto.ShowBoardResponse{
		Id:       board.Id,
		Title:    board.Title,
		ViewType: board.ViewType,
		LayoutConfig: dto.LayoutConfigDTO{
			SelectedCardId: board.LayoutConfig.SelectedCardId,
		},
		CreatedAt: board.CreatedAt,
		UpdatedAt: board.UpdatedAt,
	}
}
