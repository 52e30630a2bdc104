package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "oxyvr",
	Short: "Stereo VR session runner on a simulated headset",
	Long: `oxyvr drives a VR session against a simulated headset runtime: it renders
both eyes of a demo scene every frame, submits them to the compositor and
polls poses and controllers for the next frame.

Settings come from OXYVR_* environment variables; flags override them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("oxyvr version {{.Version}}\n")

	f := rootCmd.PersistentFlags()
	f.Uint32("width", 0, "per-eye render width in pixels")
	f.Uint32("height", 0, "per-eye render height in pixels")
	f.Float32("ipd", 0, "interpupillary distance in meters")
	f.Float32("fov", 0, "vertical field of view in degrees")
	f.String("backend", "", "reported graphics backend: vulkan, dx12, metal or gl")
	f.String("log-level", "", "log level: debug, info, warn or error")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig reads the environment and applies every flag the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width, _ = flags.GetUint32("width")
	}
	if flags.Changed("height") {
		cfg.Height, _ = flags.GetUint32("height")
	}
	if flags.Changed("ipd") {
		cfg.IPD, _ = flags.GetFloat32("ipd")
	}
	if flags.Changed("fov") {
		cfg.Fov, _ = flags.GetFloat32("fov")
	}
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Lookup("frames") != nil && flags.Changed("frames") {
		cfg.Frames, _ = flags.GetInt("frames")
	}
	if flags.Lookup("tick-rate") != nil && flags.Changed("tick-rate") {
		cfg.TickRate, _ = flags.GetInt("tick-rate")
	}
	if flags.Lookup("headless") != nil && flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	if flags.Lookup("dump-dir") != nil && flags.Changed("dump-dir") {
		cfg.DumpDir, _ = flags.GetString("dump-dir")
	}
	if flags.Lookup("dump-every") != nil && flags.Changed("dump-every") {
		cfg.DumpEvery, _ = flags.GetInt("dump-every")
	}
	if flags.Lookup("otel-endpoint") != nil && flags.Changed("otel-endpoint") {
		cfg.OTelEndpoint, _ = flags.GetString("otel-endpoint")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setupLogging installs a text logger on w at the configured level.
func setupLogging(w io.Writer, level string) {
	common.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: common.ParseLogLevel(level),
	})))
}
