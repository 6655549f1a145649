package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tarjuma/tarjuma/internal/export"
	"github.com/tarjuma/tarjuma/internal/project"
	"github.com/tarjuma/tarjuma/internal/server"
	"github.com/tarjuma/tarjuma/internal/transcribe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editing surface over HTTP",
	Long: `Serve exposes the captioning session over HTTP: read and replace
the project, upload a video (captioned on upload when an API key is
available), resolve the active caption for a playback time, and start,
monitor, cancel, or email an export.

The session is in-memory; pass --project to seed it from a project
file.

Examples:
  tarjuma serve
  tarjuma serve --addr :9000 --project video.tarjuma.json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("project", "", "Seed the session from a project file")
	serveCmd.Flags().
		StringP("api-key", "k", "", "Gemini API key for upload captioning (or set GEMINI_API_KEY)")
	serveCmd.Flags().
		String("model", "gemini-2.5-flash", "Gemini model to use for transcription")
	serveCmd.Flags().String("upload-dir", "", "Directory for uploaded videos")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	addr, _ := cmd.Flags().GetString("addr")
	projectPath, _ := cmd.Flags().GetString("project")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	uploadDir, _ := cmd.Flags().GetString("upload-dir")
	outDir, _ := cmd.Flags().GetString("output")

	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "tarjuma-uploads")
	}
	if outDir == "" {
		outDir = "."
	}

	proj := project.New("")
	if projectPath != "" {
		loaded, err := project.Load(projectPath)
		if err != nil {
			return err
		}
		proj = loaded
	}
	store := project.NewStore(proj)

	// uploads are captioned only when a key is available; without one
	// the surface still works, captions just stay manual
	var transcriber server.Transcriber
	if apiKey != "" {
		service, err := transcribe.Factory(ctx, transcribe.ProviderGemini, apiKey, transcribe.Options{
			Model: model,
		})
		if err != nil {
			return fmt.Errorf("failed to create transcription service: %w", err)
		}
		transcriber = service
	} else {
		logger.Warnw("No Gemini API key; uploads will not be captioned automatically")
	}

	pipeline := export.NewDefaultPipeline(logger, outDir, fontsDir())
	srv := server.New(logger, store, pipeline, transcriber, uploadDir)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
		logger.Infow("Shutting down")
		pipeline.Cancel()
		return srv.Shutdown()
	}
}
