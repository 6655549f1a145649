package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tarjuma/tarjuma/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tarjuma",
	Short: "Poetic Arabic captions for videos",
	Long: `Tarjuma captions videos with AI-generated, poetically translated
Arabic subtitles, previews them overlaid on playback, and burns them
into a final export with the original audio.

A captioning session lives in a project file: generate it with
'caption', polish the translations with 'refine', check the result
with 'preview', and render the final video with 'export'. 'serve'
exposes the same session over HTTP for editing clients.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

// fontsDir is where downloaded caption fonts live between runs.
func fontsDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "tarjuma", "fonts")
}

// defaultProjectPath derives the project file path from the video path.
func defaultProjectPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return videoPath[:len(videoPath)-len(ext)] + ".tarjuma.json"
}
