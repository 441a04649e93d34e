package main

import (
	"os"

	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"complexity-engine/internal/config"
	"complexity-engine/internal/embeddings"
	"complexity-engine/internal/engine"
	"complexity-engine/internal/server"
	"complexity-engine/internal/similarity"
	"complexity-engine/internal/storage"
)

// ServerComponents holds all initialized server components. Extracted from
// main() to enable testing.
type ServerComponents struct {
	Config     *config.Config
	Storage    storage.Storage
	Engine     *engine.Engine
	Similarity *similarity.Store
	Server     *server.EngineServer
}

// InitializeServer creates and initializes all server components.
func InitializeServer() (*ServerComponents, error) {
	components := &ServerComponents{}

	cfg, err := config.Load(os.Getenv("ENGINE_CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	components.Config = cfg
	log.Printf("Loaded configuration: storage=%s min_confidence=%.2f log_level=%s",
		cfg.Storage.Type, cfg.Engine.MinConfidence, cfg.Logging.Level)

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}
	components.Storage = store
	log.Printf("Initialized %s storage", cfg.Storage.Type)

	eng := engine.New(store, cfg.Engine.MinConfidence)
	components.Engine = eng
	log.Println("Initialized reasoning engine")

	if cfg.Features.EnableSimilaritySearch {
		embedder := embeddings.NewMockEmbedder(256)
		simStore, err := similarity.NewStore(os.Getenv("SIMILARITY_STORE_PATH"), embedder)
		if err != nil {
			log.Printf("Warning: failed to initialize similarity store: %v", err)
		} else {
			components.Similarity = simStore
			eng.SetSimilarity(simStore)
			log.Println("Initialized similarity search")
		}
	} else {
		log.Println("Similarity search disabled (features.enable_similarity_search = false)")
	}

	components.Server = server.NewEngineServer(eng)
	log.Println("Created engine server")

	return components, nil
}

// RegisterTools registers every MCP tool on mcpServer.
func (c *ServerComponents) RegisterTools(mcpServer *mcp.Server) {
	c.Server.RegisterTools(mcpServer)
}

// Cleanup closes all server resources.
func (c *ServerComponents) Cleanup() error {
	if c.Storage != nil {
		return storage.CloseStorage(c.Storage)
	}
	return nil
}
