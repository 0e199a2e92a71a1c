package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"notelets-be/internal/config"
	"notelets-be/pkg/events"
	pktNats "notelets-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails the document change stream from NATS JetStream. Handy when debugging
// multi-instance setups: run it next to the server and watch writes fan out.
func main() {
	cfg := config.Load()

	if cfg.App.NatsURL == "" {
		color.Red("NATS_URL is not set")
		os.Exit(1)
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	subject := "events." + events.EventTypeDocumentChanged
	err = sub.Subscribe(subject, "notelets-tail", func(ctx context.Context, event events.Event) error {
		p := event.Payload()
		op, _ := p["op"].(string)
		collection, _ := p["collection"].(string)
		documentId, _ := p["document_id"].(string)
		boardId, _ := p["board_id"].(string)

		if op == events.OpDelete {
			color.Red("%-7s %-7s %s (board %s)", op, collection, documentId, boardId)
		} else {
			color.Green("%-7s %-7s %s (board %s)", op, collection, documentId, boardId)
		}
		return nil
	})
	if err != nil {
		color.Red("Failed to subscribe: %v", err)
		os.Exit(1)
	}

	color.Cyan("Tailing %s (ctrl-c to stop)", subject)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
