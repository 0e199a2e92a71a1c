// Package fireworks implements the streaming speech-to-text client for the
// Fireworks AI transcription endpoint: binary 16-bit PCM frames go up over a
// WebSocket, JSON segment messages come back.
package fireworks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const DefaultEndpoint = "wss://audio-streaming.us-virginia-1.direct.fireworks.ai/v1/audio/transcriptions/streaming"

type Config struct {
	APIKey   string
	Endpoint string // defaults to DefaultEndpoint
	Model    string
	Language string
}

// Segment is one transcribed span. The server re-sends segments as they are
// refined, keyed by id, so later messages replace earlier text.
type Segment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Update is one consolidated transcript state. An Update with Err set is the
// last one before the channel closes, except for malformed-message errors,
// which are delivered in-band while the session keeps reading.
type Update struct {
	Text     string
	Segments []Segment
	Err      error
}

// Session is one live transcription connection. There is no reconnection: a
// dropped connection ends the updates channel and the caller starts over.
type Session struct {
	conn      *websocket.Conn
	updates   chan Update
	closed    atomic.Bool
	closeOnce sync.Once

	writeMu sync.Mutex

	// segment state owned by the read loop
	order    []string
	segments map[string]string
}

// Dial opens the transcription socket. The API key travels as an
// authorization query-string parameter, which is how this endpoint
// authenticates.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("authorization", cfg.APIKey)
	if cfg.Model != "" {
		q.Set("model", cfg.Model)
	}
	if cfg.Language != "" {
		q.Set("language", cfg.Language)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transcription dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("transcription dial failed: %w", err)
	}

	s := &Session{
		conn:     conn,
		updates:  make(chan Update, 16),
		segments: make(map[string]string),
	}
	go s.readLoop()
	return s, nil
}

// Updates returns the transcript channel, closed when the session ends.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// SendAudio writes one binary frame of 16-bit little-endian PCM samples.
func (s *Session) SendAudio(pcm []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return fmt.Errorf("send audio frame: %w", err)
	}
	return nil
}

// Close tears the connection down and ends the updates channel.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

type transcriptionMessage struct {
	Segments []Segment `json:"segments"`
}

func (s *Session) readLoop() {
	defer close(s.updates)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.updates <- Update{Err: fmt.Errorf("transcription connection error: %w", err)}
			return
		}

		var msg transcriptionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.updates <- Update{Err: fmt.Errorf("malformed transcription message: %w", err)}
			continue
		}
		if len(msg.Segments) == 0 {
			continue
		}

		for _, seg := range msg.Segments {
			if _, seen := s.segments[seg.ID]; !seen {
				s.order = append(s.order, seg.ID)
			}
			s.segments[seg.ID] = seg.Text
		}

		s.updates <- s.snapshot()
	}
}

func (s *Session) snapshot() Update {
	segments := make([]Segment, 0, len(s.order))
	texts := make([]string, 0, len(s.order))
	for _, id := range s.order {
		segments = append(segments, Segment{ID: id, Text: s.segments[id]})
		texts = append(texts, s.segments[id])
	}
	return Update{
		Text:     strings.Join(texts, " "),
		Segments: segments,
	}
}
