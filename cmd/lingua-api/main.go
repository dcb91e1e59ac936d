package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	httpadapter "github.com/lingua-labs/lingua-agent/internal/adapters/http"
	"github.com/lingua-labs/lingua-agent/internal/adapters/llm"
	firestorestore "github.com/lingua-labs/lingua-agent/internal/adapters/storage/firestore"
	memstore "github.com/lingua-labs/lingua-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/lingua-labs/lingua-agent/internal/adapters/storage/sqlite"
	"github.com/lingua-labs/lingua-agent/internal/app/session"
	"github.com/lingua-labs/lingua-agent/internal/config"
	"github.com/lingua-labs/lingua-agent/internal/domain"
	"github.com/lingua-labs/lingua-agent/internal/observability"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	observability.Init(cfg.LogLevel)
	logger := observability.Logger()

	// Tutor backend: mock, gemini or claude
	var (
		tutor domain.TutorClient
		err   error
	)

	switch cfg.TutorBackend {
	case "gemini":
		logger.Info("using gemini tutor", "model", cfg.GeminiModel)
		tutor, err = llm.NewGeminiTutor(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("error initializing gemini tutor: %v", err)
		}
	case "claude":
		logger.Info("using claude tutor", "model", cfg.ClaudeModel)
		tutor, err = llm.NewClaudeTutor(cfg.AnthropicAPIKey, cfg.ClaudeModel)
		if err != nil {
			log.Fatalf("error initializing claude tutor: %v", err)
		}
	default:
		logger.Info("using mock tutor")
		tutor = llm.NewMockTutor()
	}

	// Storage: Firestore, SQLite or Memory
	var (
		convStore domain.ConversationStore
		turnStore domain.TurnStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		logger.Info("using firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 2 interfaces
		convStore = fsStore
		turnStore = fsStore

	case "sqlite":
		logger.Info("using sqlite storage", "path", cfg.SQLitePath)
		dbStore, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("error initializing SQLite store: %v", err)
		}
		defer dbStore.Close()

		convStore = dbStore
		turnStore = dbStore

	default:
		logger.Info("using in-memory storage")
		convStore = memstore.NewConversationStore()
		turnStore = memstore.NewTurnStore()
	}

	sessions := session.NewManager(convStore, turnStore, tutor)
	handler := httpadapter.NewServer(sessions)

	addr := ":" + cfg.Port
	logger.Info("lingua API listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
