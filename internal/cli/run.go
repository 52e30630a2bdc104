package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/software"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr/simvr"
	"github.com/Carmen-Shannon/oxy-vr/engine/window"
	"github.com/Carmen-Shannon/oxy-vr/internal/config"
	"github.com/Carmen-Shannon/oxy-vr/internal/framedump"
	"github.com/Carmen-Shannon/oxy-vr/internal/telemetry"
	"github.com/spf13/cobra"
)

const serviceName = "oxyvr"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a VR session on the simulated headset",
	Long: `Runs the engine loop with a VR session on the simulated headset.

Headless runs render on the CPU and can dump submitted eye images as PNG files.
With --headless=false the eyes render on WebGPU and the left eye is mirrored
in a desktop window: W/A/S/D move, Q/E turn, V toggles the session, P toggles
the profiler and Esc quits.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.Int("frames", 0, "frames to render before exiting, 0 runs until interrupted")
	f.Int("tick-rate", 0, "application ticks per second")
	f.Bool("headless", true, "render on the CPU without a mirror window")
	f.String("dump-dir", "", "directory for PNG dumps of submitted eye images")
	f.Int("dump-every", 0, "dump every n-th frame")
	f.String("otel-endpoint", "", "OTLP/HTTP collector URL for frame traces")
	f.Bool("profile", false, "log frame and memory statistics every second")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cmd.ErrOrStderr(), cfg.LogLevel)
	profile, _ := cmd.Flags().GetBool("profile")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runVR(ctx, cfg, profile, cmd.OutOrStdout())
}

// runtimeOptions maps the configuration onto the simulated headset.
func runtimeOptions(cfg config.Config) []simvr.RuntimeOption {
	return []simvr.RuntimeOption{
		simvr.WithRecommendedSize(cfg.Width, cfg.Height),
		simvr.WithIPD(cfg.IPD),
		simvr.WithFov(cfg.Fov),
	}
}

// runVR wires the runtime, device, session and engine for one run and prints a summary to out.
func runVR(ctx context.Context, cfg config.Config, profile bool, out io.Writer) (err error) {
	log := common.Logger()

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if serr := shutdown(context.Background()); serr != nil {
			log.Warn("[Telemetry] shutdown failed", "error", serr)
		}
	}()

	rtOpts := runtimeOptions(cfg)
	var (
		device renderer.GraphicsDevice
		win    window.Window
		dump   framedump.Dumper
	)
	engineOpts := []engine.EngineBuilderOption{
		engine.WithTickRate(float64(cfg.TickRate)),
		engine.WithMaxFrames(uint64(cfg.Frames)),
		engine.WithProfiling(profile),
	}

	if cfg.Headless {
		sw := software.NewDevice(software.WithBackend(cfg.GraphicsBackend()))
		device = sw
		if cfg.DumpDir != "" {
			dump, err = framedump.New(cfg.DumpDir, cfg.DumpEvery, cfg.DumpWorkers, sw)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, dump.Close())
			}()
			rtOpts = append(rtOpts, simvr.WithOnSubmit(dump.OnSubmit))
		}
	} else {
		win, err = window.NewWindow(window.WithTitle("oxyvr mirror"))
		if err != nil {
			return err
		}
		defer win.Close()

		wd, err := renderer.NewWGPUDevice(
			renderer.WithSurfaceDescriptor(win.SurfaceDescriptor()),
			renderer.WithPresentMode(renderer.PresentModeUncapped),
		)
		if err != nil {
			return fmt.Errorf("create wgpu device: %w", err)
		}
		defer wd.Release()
		device = wd
		engineOpts = append(engineOpts, engine.WithWindow(win), engine.WithMirror(wd, vr.EyeLeft))
		if cfg.DumpDir != "" {
			log.Warn("[FrameDump] dumping needs the software device, ignoring dump dir", "dir", cfg.DumpDir)
		}
	}

	rt := simvr.NewRuntime(rtOpts...)
	demo := newDemoScene()
	locomotion := camera.NewCameraController(camera.WithTransform(demo.cam.InvView()))

	sess := vr.NewSession(rt, demo.scn, device,
		vr.WithRenderPathFactory(eyePaths),
		vr.WithLocomotion(locomotion),
		vr.WithControllerHandler(func(s vr.ControllerSnapshot) {
			log.Debug("[VR] controller input", "side", s.Side.String(), "button", s.Button.String(), "axis", s.Axis)
		}),
	)

	engineOpts = append(engineOpts,
		engine.WithScene(demo.scn),
		engine.WithVRSession(sess),
		engine.WithKeyboardController(locomotion),
	)
	e := engine.NewEngine(engineOpts...)
	e.SetTickCallback(demo.Tick)

	if err := e.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "rendered %d frames, %d eye images submitted\n", e.Frames(), len(rt.Submissions()))
	if dump != nil {
		if cerr := dump.Close(); cerr != nil {
			return cerr
		}
		fmt.Fprintf(out, "wrote %d images to %s\n", dump.Written(), cfg.DumpDir)
	}
	return nil
}
