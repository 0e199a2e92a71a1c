package sse

import (
	"context"
	"encoding/json"
	"io"

	"notelets-be/pkg/llm"

	"go.uber.org/zap"
)

// ExtractFunc pulls the incremental text out of one decoded event. name is
// the SSE event name ("" for bare data events). ok is false when the event
// carries no delta; a non-nil err aborts the stream.
type ExtractFunc func(name string, data []byte) (delta string, ok bool, err error)

// StreamDeltas decodes body and applies extract to every non-sentinel event,
// sending each delta on ch. The "data: [DONE]" sentinel is recognized and
// never parsed. Malformed events are warned about and skipped, the same
// policy for every vendor. A read error or an extract error ends the stream
// after a final error chunk. ch is not closed here; the caller owns it.
// A nil log is replaced with a no-op logger.
func StreamDeltas(ctx context.Context, body io.Reader, ch chan<- llm.StreamChunk, provider string, extract ExtractFunc, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	dec := NewDecoder(body)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			emit(ctx, ch, llm.StreamChunk{Err: err})
			return
		}
		if ev.Done() {
			continue
		}
		delta, ok, err := extract(ev.Name, ev.Data)
		if err != nil {
			emit(ctx, ch, llm.StreamChunk{Err: err})
			return
		}
		if !ok {
			if !json.Valid(ev.Data) {
				sample := ev.Data
				if len(sample) > 80 {
					sample = sample[:80]
				}
				log.Warn("skipping malformed stream event",
					zap.String("provider", provider),
					zap.ByteString("data", sample),
				)
			}
			continue
		}
		if !emit(ctx, ch, llm.StreamChunk{Content: delta}) {
			return
		}
	}
}

func emit(ctx context.Context, ch chan<- llm.StreamChunk, chunk llm.StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
