package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/project"
	"github.com/tarjuma/tarjuma/internal/style"
	"github.com/tarjuma/tarjuma/internal/transcribe"
	"github.com/tarjuma/tarjuma/internal/video"
)

var captionCmd = &cobra.Command{
	Use:   "caption [video_file]",
	Short: "Caption a video with AI-generated poetic Arabic translations",
	Long: `Caption the specified video using AI transcription. Every caption
line carries the original text plus a poetic Arabic translation, timed
to the source.

The result is written to a project file next to the video (or to the
--output path), ready for refine, preview, and export. Optionally a
sidecar subtitle file (SRT/VTT) is written as well.

Examples:
  tarjuma caption video.mp4
  tarjuma caption video.mp4 --api-key YOUR_KEY --sidecar video.srt
  tarjuma caption video.mp4 --font-size 56 --pos-y 85 --animation glow`,
	Args: cobra.ExactArgs(1),
	RunE: runCaption,
}

func init() {
	rootCmd.AddCommand(captionCmd)

	captionCmd.Flags().
		StringP("api-key", "k", "", "Gemini API key (or set GEMINI_API_KEY env var)")
	captionCmd.Flags().
		String("model", "gemini-2.5-flash", "Gemini model to use for transcription")
	captionCmd.Flags().
		String("prompt", "", "Extra transcription instructions")
	captionCmd.Flags().
		String("title", "", "Project title")
	captionCmd.Flags().
		String("sidecar", "", "Also write a sidecar subtitle file (srt or vtt by extension)")
	captionCmd.Flags().
		Bool("upload-audio", false, "Upload only the extracted audio track (smaller, faster, loses visual context)")

	captionCmd.Flags().String("font", "", "Caption font family")
	captionCmd.Flags().Int("font-size", 0, "Caption font size (at 1080p reference height)")
	captionCmd.Flags().String("color", "", "Caption color as #rrggbb")
	captionCmd.Flags().Float64("pos-x", -1, "Horizontal caption position, percent [0,100]")
	captionCmd.Flags().Float64("pos-y", -1, "Vertical caption position, percent [0,100]")
	captionCmd.Flags().String("animation", "", "Caption animation (fade, blur, reveal, bounce, typing, glow)")
	captionCmd.Flags().String("font-url", "", "Custom font URL, takes precedence over --font")
}

func runCaption(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !video.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	title, _ := cmd.Flags().GetString("title")
	sidecarPath, _ := cmd.Flags().GetString("sidecar")
	outputPath, _ := cmd.Flags().GetString("output")

	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("Gemini API key is required: use --api-key flag or set GEMINI_API_KEY environment variable")
	}

	if outputPath == "" {
		outputPath = defaultProjectPath(videoPath)
	}

	cfg, err := styleFromFlags(cmd)
	if err != nil {
		return err
	}

	service, err := transcribe.Factory(ctx, transcribe.ProviderGemini, apiKey, transcribe.Options{
		Model:  model,
		Prompt: prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcription service: %w", err)
	}

	logger.Infow("Starting captioning",
		"input", videoPath,
		"output", outputPath,
		"model", model,
	)

	proj := project.New(title).WithVideo(videoPath).WithStyle(cfg)

	mediaPath := videoPath
	if uploadAudio, _ := cmd.Flags().GetBool("upload-audio"); uploadAudio {
		tempDir, err := os.MkdirTemp("", "tarjuma-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)

		logger.Infow("Extracting audio from video")
		mediaPath = filepath.Join(tempDir, "audio.mp3")
		if err := video.ExtractAudio(ctx, videoPath, mediaPath, video.DefaultExtractAudioOptions()); err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}
	}

	lines, err := service.TranscribeFile(ctx, mediaPath)
	if err != nil {
		// the video stays in the project; captions can be added later
		logger.Errorw("Transcription failed, writing project with empty captions", "error", err)
		lines = nil
	}
	proj = proj.WithLines(lines)

	if err := project.Save(proj, outputPath); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	if sidecarPath != "" && len(lines) > 0 {
		format, err := caption.SidecarFormatFromExtension(sidecarPath)
		if err != nil {
			return err
		}
		if err := caption.WriteSidecar(lines, format, sidecarPath); err != nil {
			return fmt.Errorf("failed to write sidecar: %w", err)
		}
		logger.Infow("Sidecar written", "path", sidecarPath)
	}

	logger.Infow("Captioning complete",
		"captions", len(lines),
		"project", outputPath,
	)
	return nil
}

// styleFromFlags layers explicit style flags over the defaults.
func styleFromFlags(cmd *cobra.Command) (style.Config, error) {
	cfg := style.Default()

	if font, _ := cmd.Flags().GetString("font"); font != "" {
		cfg.FontFamily = font
	}
	if size, _ := cmd.Flags().GetInt("font-size"); size > 0 {
		cfg.FontSize = size
	}
	if color, _ := cmd.Flags().GetString("color"); color != "" {
		cfg.FontColor = color
	}
	if x, _ := cmd.Flags().GetFloat64("pos-x"); x >= 0 {
		cfg.PositionX = x
	}
	if y, _ := cmd.Flags().GetFloat64("pos-y"); y >= 0 {
		cfg.PositionY = y
	}
	if anim, _ := cmd.Flags().GetString("animation"); anim != "" {
		cfg.Animation = style.Animation(strings.ToLower(anim))
	}
	if fontURL, _ := cmd.Flags().GetString("font-url"); fontURL != "" {
		cfg.CustomFontURL = fontURL
	}

	if err := cfg.Validate(); err != nil {
		return style.Config{}, fmt.Errorf("invalid style: %w", err)
	}
	return cfg, nil
}
