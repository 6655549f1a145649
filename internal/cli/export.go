package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarjuma/tarjuma/internal/export"
	"github.com/tarjuma/tarjuma/internal/project"
)

var exportCmd = &cobra.Command{
	Use:   "export [project_file]",
	Short: "Burn captions into the video and mux the original audio",
	Long: `Export renders the project's captions onto every frame of the
source video at its native resolution, in their settled visual state,
and muxes the original audio through untouched. The result is a single
playable file named by timestamp.

Examples:
  tarjuma export video.tarjuma.json
  tarjuma export video.tarjuma.json -o renders/
  tarjuma export video.tarjuma.json --email me@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		String("email", "", "Email the finished export's location to this address")
}

func runExport(cmd *cobra.Command, args []string) error {
	proj, err := project.Load(args[0])
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output")
	if outDir == "" {
		outDir = filepath.Dir(args[0])
	}
	emailAddr, _ := cmd.Flags().GetString("email")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline := export.NewDefaultPipeline(logger, outDir, fontsDir())

	if err := pipeline.Start(ctx, proj); err != nil {
		return err
	}

	// surface progress while the render runs
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	lastReported := -1

	done := make(chan struct{})
	go func() {
		pipeline.Wait()
		close(done)
	}()

waiting:
	for {
		select {
		case <-done:
			break waiting
		case <-ctx.Done():
			pipeline.Cancel()
			return ctx.Err()
		case <-ticker.C:
			status := pipeline.Status()
			if status.State == export.StateRendering && status.Progress != lastReported {
				lastReported = status.Progress
				logger.Infow("Rendering", "progress", fmt.Sprintf("%d%%", status.Progress))
			}
		}
	}

	status := pipeline.Status()
	if status.State != export.StateSuccess {
		return fmt.Errorf("export failed: %s", status.Error)
	}

	logger.Infow("Export complete", "output", status.OutputPath)

	if emailAddr != "" {
		if err := pipeline.EmailResult(ctx, emailAddr); err != nil {
			return err
		}
	}
	return nil
}
