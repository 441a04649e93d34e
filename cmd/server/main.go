// Package main provides the entry point for the complexity reasoning engine's
// MCP server.
//
// This server is designed to be spawned as a child process by an MCP client
// and communicates via stdio using the Model Context Protocol. It should not
// be run manually by users.
//
// Environment variables:
//   - DEBUG: Set to "true" to add file:line to log lines and log a startup
//     message ("debug:"-prefixed lines are logged either way)
//   - ENGINE_CONFIG_PATH: Path to a YAML config file overriding the defaults
//   - SIMILARITY_STORE_PATH: Optional persistence path for the similarity store
package main

import (
	"context"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	if os.Getenv("DEBUG") == "true" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Starting complexity reasoning engine server in debug mode...")
	}

	components, err := InitializeServer()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	defer func() {
		if err := components.Cleanup(); err != nil {
			log.Printf("Warning: failed to clean up server components: %v", err)
		}
	}()

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    components.Config.Server.Name,
		Version: components.Config.Server.Version,
	}, nil)
	log.Println("Created MCP server")

	components.RegisterTools(mcpServer)
	log.Println("Registered tools: process-smart-input, suppress-factor-code, unsuppress-factor-code, " +
		"list-suppressed-factor-codes, set-use-saved-context, get-use-saved-context, " +
		"set-session-use-profile, get-session-use-profile, clear-session-context, get-pending-followup")

	transport := &mcp.StdioTransport{}
	log.Println("Created stdio transport")

	ctx := context.Background()
	log.Println("Starting MCP server...")
	if err := mcpServer.Run(ctx, transport); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
