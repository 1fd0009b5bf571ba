package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexforge/vertexforge/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 512, cfg.PreviewSize)
	assert.InDelta(t, 0.02, cfg.VertexPickRange, 1e-12)
	assert.True(t, cfg.SeedSample)
	assert.Equal(t, 1000, cfg.MaxRooms)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("VERTEX_PICK_RANGE", "0.05")
	t.Setenv("SEED_SAMPLE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.InDelta(t, 0.05, cfg.VertexPickRange, 1e-12)
	assert.False(t, cfg.SeedSample)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("PREVIEW_SIZE", "huge")

	_, err := config.Load()
	assert.Error(t, err)
}
