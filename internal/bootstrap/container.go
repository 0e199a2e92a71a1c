package bootstrap

import (
	"context"
	"log"

	"notelets-be/internal/config"
	"notelets-be/internal/controller"
	"notelets-be/internal/handler"
	"notelets-be/internal/pkg/logger"
	"notelets-be/internal/repository/memory"
	"notelets-be/internal/service"
	"notelets-be/internal/store"
	"notelets-be/internal/store/gormdb"
	"notelets-be/internal/store/memdb"
	"notelets-be/internal/store/redisdb"
	"notelets-be/internal/websocket"
	"notelets-be/pkg/database"
	"notelets-be/pkg/llm/factory"

	pktNats "notelets-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	BoardController     controller.IBoardController
	CardController      controller.ICardController
	ChatController      controller.IChatController
	AssistantController controller.IAssistantController
	QuizController      controller.IQuizController

	// WebSockets
	BoardFeedHandler  *handler.BoardFeedHandler
	TranscribeHandler *handler.TranscribeHandler
	WebSocketHub      *websocket.Hub

	// Background Services (Exposed for main.go to run)
	SyncService service.ISyncService

	// Store is exposed for seeding and debugging tools.
	Store *store.Store
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(pubSub, service.TopicDocumentChanged)

	// 3. Document store backend
	var primaryDB store.DocumentDB
	switch cfg.Database.Backend {
	case "postgres":
		gdb, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to Postgres: %v", err)
		}
		docDB := gormdb.New(gdb)
		if err := docDB.Migrate(); err != nil {
			log.Fatalf("[FATAL] Failed to migrate documents table: %v", err)
		}
		primaryDB = docDB
		log.Printf("[INFO] Using store backend: POSTGRES")
	default:
		primaryDB = memdb.New()
		log.Printf("[INFO] Using store backend: MEMORY")
	}

	documentStore := store.NewStore(primaryDB, publisherService, sysLogger)

	// 4. Optional infrastructure: Redis (cluster fan-out + mirror), NATS
	var rdb *redis.Client
	var mirrorDB store.DocumentDB
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		mirrorDB = redisdb.New(rdb, "notelets")
	}

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// 5. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	llmConfig := factory.Config{
		AnthropicAPIKey:  cfg.Keys.Anthropic,
		OpenAIAPIKey:     cfg.Keys.OpenAI,
		OpenAIBaseURL:    cfg.Ai.OpenAIBaseURL,
		OpenRouterAPIKey: cfg.Keys.OpenRouter,
		OpenRouterSite:   cfg.Ai.OpenRouterSite,
		OpenRouterTitle:  cfg.Ai.OpenRouterTitle,
		GeminiAPIKey:     cfg.Keys.Gemini,
		Logger:           sysLogger.Zap(),
	}

	boardService := service.NewBoardService(documentStore)
	cardService := service.NewCardService(documentStore)
	chatService := service.NewChatService(documentStore)
	assistantService := service.NewAssistantService(documentStore, llmConfig, cfg.Ai.DefaultModel, sysLogger)
	quizRepo := memory.NewQuizRepository()
	quizService := service.NewQuizService(documentStore, quizRepo, llmConfig, cfg.Ai.DefaultModel, sysLogger)
	transcribeService := service.NewTranscribeService(cfg.Keys.Fireworks, cfg.Ai.TranscribeModel)

	syncService := service.NewSyncService(
		pubSub,
		service.TopicDocumentChanged,
		primaryDB,
		mirrorDB,
		wsHub,
		natsPub,
		sysLogger,
	)

	return &Container{
		BoardController:     controller.NewBoardController(boardService),
		CardController:      controller.NewCardController(cardService),
		ChatController:      controller.NewChatController(chatService),
		AssistantController: controller.NewAssistantController(assistantService),
		QuizController:      controller.NewQuizController(quizService),

		BoardFeedHandler:  handler.NewBoardFeedHandler(wsHub, wsLogger),
		TranscribeHandler: handler.NewTranscribeHandler(transcribeService, sysLogger),
		WebSocketHub:      wsHub,

		SyncService: syncService,
		Store:       documentStore,
	}
}
