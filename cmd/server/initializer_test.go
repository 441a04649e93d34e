package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeServer_Defaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("ENGINE_CONFIG_PATH", "")
	t.Setenv("ENGINE_ENABLE_SIMILARITY_SEARCH", "")

	components, err := InitializeServer()
	require.NoError(t, err)
	defer components.Cleanup()

	assert.NotNil(t, components.Config)
	assert.NotNil(t, components.Storage)
	assert.NotNil(t, components.Engine)
	assert.NotNil(t, components.Server)
	assert.Nil(t, components.Similarity, "similarity search is disabled by default")
}

func TestInitializeServer_SimilaritySearchEnabled(t *testing.T) {
	t.Setenv("ENGINE_ENABLE_SIMILARITY_SEARCH", "true")
	t.Setenv("SIMILARITY_STORE_PATH", "")

	components, err := InitializeServer()
	require.NoError(t, err)
	defer components.Cleanup()

	require.NotNil(t, components.Similarity, "similarity store should initialize when enabled")
}

func TestInitializeServer_InvalidConfigFails(t *testing.T) {
	t.Setenv("ENGINE_MIN_CONFIDENCE", "1.5")

	_, err := InitializeServer()
	assert.Error(t, err)
}

func TestInitializeServer_Cleanup(t *testing.T) {
	components, err := InitializeServer()
	require.NoError(t, err)

	assert.NoError(t, components.Cleanup())
	// Cleanup must be idempotent; main always defers it once but tests
	// exercise double-close to catch accidental panics in storage.Close.
	assert.NoError(t, components.Cleanup())
}

func TestServerComponents_NilStorageCleanup(t *testing.T) {
	components := &ServerComponents{}
	assert.NoError(t, components.Cleanup())
}

func TestServerComponents_DefaultFields(t *testing.T) {
	components := &ServerComponents{}
	assert.Nil(t, components.Storage)
	assert.Nil(t, components.Engine)
	assert.Nil(t, components.Similarity)
	assert.Nil(t, components.Server)
}
