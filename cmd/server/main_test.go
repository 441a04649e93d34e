package main

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainWiring(t *testing.T) {
	components, err := InitializeServer()
	require.NoError(t, err)
	defer components.Cleanup()

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    components.Config.Server.Name,
		Version: components.Config.Server.Version,
	}, nil)
	assert.NotNil(t, mcpServer)

	// RegisterTools must not panic when given a fresh MCP server.
	components.RegisterTools(mcpServer)

	transport := &mcp.StdioTransport{}
	assert.NotNil(t, transport)

	// main() itself calls mcpServer.Run, which blocks on stdio; that call
	// is intentionally left untested here.
}

func TestMainWiring_DebugEnv(t *testing.T) {
	t.Setenv("DEBUG", "true")

	components, err := InitializeServer()
	require.NoError(t, err)
	defer components.Cleanup()

	assert.NotNil(t, components.Engine)
}
