package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tarjuma/tarjuma/internal/preview"
	"github.com/tarjuma/tarjuma/internal/project"
)

var previewCmd = &cobra.Command{
	Use:   "preview [project_file]",
	Short: "Preview a project with animated captions overlaid on playback",
	Long: `Preview plays the project's video with its captions overlaid,
including the entry/exit animations, exactly as the export will place
them. Requires ffplay on the PATH (or TARJUMA_FFPLAY_PATH).

Examples:
  tarjuma preview video.tarjuma.json`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	proj, err := project.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := preview.NewPlayer(logger, fontsDir())
	return player.Play(ctx, proj)
}
