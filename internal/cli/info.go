package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/software"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr"
	"github.com/Carmen-Shannon/oxy-vr/engine/vr/simvr"
	"github.com/Carmen-Shannon/oxy-vr/internal/config"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the simulated headset's session parameters",
	Long: `Starts a session on the simulated headset, prints the driver, display,
eye render size, submission path and both eye projections and offsets, then
stops the session.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cmd.ErrOrStderr(), cfg.LogLevel)
	return printInfo(cmd.Context(), cfg, cmd.OutOrStdout())
}

func printInfo(ctx context.Context, cfg config.Config, out io.Writer) error {
	rt := simvr.NewRuntime(runtimeOptions(cfg)...)
	demo := newDemoScene()
	device := software.NewDevice(software.WithBackend(cfg.GraphicsBackend()))
	sess := vr.NewSession(rt, demo.scn, device)
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Stop()

	info := sess.Info()
	fmt.Fprintf(out, "driver:      %s\n", info.Driver)
	fmt.Fprintf(out, "display:     %s\n", info.Display)
	fmt.Fprintf(out, "eye size:    %dx%d\n", info.Width, info.Height)
	fmt.Fprintf(out, "backend:     %s\n", info.Backend.String())
	fmt.Fprintf(out, "submission:  %s\n", submissionName(info))
	fmt.Fprintf(out, "compositor:  %t\n", info.Compositor)
	for _, eye := range [...]vr.Eye{vr.EyeLeft, vr.EyeRight} {
		fmt.Fprintf(out, "\n%s projection:\n", eye)
		writeMatrix(out, sess.EyeProjection(eye))
		fmt.Fprintf(out, "%s offset:\n", eye)
		writeMatrix(out, sess.EyeOffset(eye))
	}
	return nil
}

func submissionName(info vr.SessionInfo) string {
	switch info.Submission {
	case vr.TextureTypeVulkan:
		return "vulkan"
	case vr.TextureTypeDirectX12:
		return "d3d12"
	default:
		return "none"
	}
}

// writeMatrix prints a column-major matrix in row order.
func writeMatrix(out io.Writer, m [16]float32) {
	for row := range 4 {
		fmt.Fprintf(out, "  % 9.4f % 9.4f % 9.4f % 9.4f\n", m[row], m[4+row], m[8+row], m[12+row])
	}
}
