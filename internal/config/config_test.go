package config

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint32(1852), cfg.Width)
	assert.Equal(t, uint32(2056), cfg.Height)
	assert.InDelta(t, 0.064, cfg.IPD, 1e-6)
	assert.Equal(t, float32(110), cfg.Fov)
	assert.Equal(t, 90, cfg.Frames)
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, "vulkan", cfg.Backend)
	assert.True(t, cfg.Headless)
	assert.Empty(t, cfg.DumpDir)
	assert.Equal(t, 30, cfg.DumpEvery)
	assert.Equal(t, 2, cfg.DumpWorkers)
	assert.Empty(t, cfg.OTelEndpoint)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, gputypes.BackendVulkan, cfg.GraphicsBackend())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OXYVR_WIDTH", "640")
	t.Setenv("OXYVR_HEIGHT", "720")
	t.Setenv("OXYVR_BACKEND", "DX12")
	t.Setenv("OXYVR_HEADLESS", "false")
	t.Setenv("OXYVR_DUMP_DIR", "/tmp/frames")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(640), cfg.Width)
	assert.Equal(t, uint32(720), cfg.Height)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "/tmp/frames", cfg.DumpDir)
	assert.Equal(t, gputypes.BackendDX12, cfg.GraphicsBackend())
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("OXYVR_FRAMES", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Width = 0
	cfg.Backend = "glide"
	cfg.TickRate = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eye size")
	assert.Contains(t, err.Error(), "glide")
	assert.Contains(t, err.Error(), "tick rate")
}

func TestParseBackend(t *testing.T) {
	tests := map[string]gputypes.Backend{
		"vulkan": gputypes.BackendVulkan,
		"VK":     gputypes.BackendVulkan,
		"d3d12":  gputypes.BackendDX12,
		"metal":  gputypes.BackendMetal,
		" gl ":   gputypes.BackendGL,
	}
	for name, want := range tests {
		got, err := ParseBackend(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseBackend("")
	assert.Error(t, err)
}
