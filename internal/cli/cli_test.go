package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Width, cfg.Height = 32, 36
	cfg.Frames = 3
	cfg.TickRate = 120
	return cfg
}

func TestRunCommand_Flags(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
	for _, name := range []string{"frames", "tick-rate", "headless", "dump-dir", "dump-every", "otel-endpoint", "profile"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), name)
	}
	assert.Error(t, runCmd.Args(runCmd, []string{"extra"}))
}

func TestRunVR_Headless(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, runVR(context.Background(), cfg, false, &out))
	assert.Contains(t, out.String(), "rendered 3 frames, 6 eye images submitted")
}

func TestRunVR_DumpsFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.DumpDir = filepath.Join(t.TempDir(), "frames")
	cfg.DumpEvery = 1

	var out bytes.Buffer
	require.NoError(t, runVR(context.Background(), cfg, true, &out))
	assert.Contains(t, out.String(), "wrote 6 images")

	entries, err := os.ReadDir(cfg.DumpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
	assert.FileExists(t, filepath.Join(cfg.DumpDir, "frame_000000_left.png"))
}

func TestRunVR_UnsupportedBackendStillRenders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = "metal"

	var out bytes.Buffer
	require.NoError(t, runVR(context.Background(), cfg, false, &out))
	assert.Contains(t, out.String(), "rendered 3 frames, 0 eye images submitted")
}

func TestInfoCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"info", "--width", "640", "--height", "720", "--backend", "dx12"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	s := out.String()
	assert.Contains(t, s, "driver:      simvr")
	assert.Contains(t, s, "eye size:    640x720")
	assert.Contains(t, s, "submission:  d3d12")
	assert.Contains(t, s, "left projection:")
	assert.Contains(t, s, "right offset:")
}

func TestInfoCommand_RejectsBadBackend(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"info", "--backend", "glide"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = rootCmd.PersistentFlags().Set("backend", "vulkan")
	})

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, "unknown graphics backend")
}
