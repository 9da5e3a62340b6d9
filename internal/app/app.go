package app

import (
	"context"
	"log"
	"time"

	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/core"
	db "github.com/markdave123-py/ragstore/internal/core/database"
	"github.com/markdave123-py/ragstore/internal/core/ingestion"
	"github.com/markdave123-py/ragstore/internal/core/llm"
	objectclient "github.com/markdave123-py/ragstore/internal/core/object-client"
	"github.com/markdave123-py/ragstore/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Provider     llm.Provider
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	provider, err := llm.NewProvider(appCtx, cfg)
	if provider == nil {
		return nil, err
	}
	if err != nil {
		// Embedding model failed to load; generation still works and a later
		// push can retry the load.
		log.Printf("WARN: provider started without embeddings: %v", err)
	} else {
		log.Printf("LLM provider %q initialized and ready.", cfg.LLMBackend)
	}

	extractor := ingestion.NewDocconvExtractor(false)
	validator := ingestion.NewValidator(cfg)

	projects := services.NewProjectService(dbClient)
	dataService := services.NewDataService(dbClient, objClient, projects, validator)
	processService := services.NewProcessService(dbClient, objClient, extractor, projects, cfg)
	nlpService := services.NewNLPService(dbClient, provider, projects)
	userService := services.NewUserService(dbClient)

	server := NewServer(cfg, dataService, processService, nlpService, userService)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Provider:     provider,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.Provider != nil {
		_ = a.Provider.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
