package service

import (
	"context"

	"notelets-be/pkg/transcribe/fireworks"
)

type ITranscribeService interface {
	// NewSession opens a live transcription connection. The caller owns the
	// session and must Close it.
	NewSession(ctx context.Context) (*fireworks.Session, error)
}

type transcribeService struct {
	apiKey string
	model  string
}

func NewTranscribeService(apiKey, model string) ITranscribeService {
	return &transcribeService{apiKey: apiKey, model: model}
}

func (s *transcribeService) NewSession(ctx context.Context) (*fireworks.Session, error) {
	return fireworks.Dial(ctx, fireworks.Config{
		APIKey: s.apiKey,
		Model:  s.model,
	})
}
