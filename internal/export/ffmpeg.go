package export

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/tarjuma/tarjuma/internal/ffmpeg"
	"github.com/tarjuma/tarjuma/internal/video"
)

// encoder preference, best first
var preferredEncoders = []string{"libx265", "libx264", "mpeg4"}

// FFprobeProber reads source facts through ffprobe.
type FFprobeProber struct{}

func (FFprobeProber) Probe(ctx context.Context, path string) (*video.Info, error) {
	return video.GetInfo(ctx, path)
}

// FFmpegBurner renders the overlay with the host ffmpeg. The encoder is
// probed at runtime because codec support varies by build.
type FFmpegBurner struct{}

// SelectEncoder asks ffmpeg which encoders it carries and picks the best
// supported one.
func (b *FFmpegBurner) SelectEncoder(ctx context.Context) (string, error) {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("encoder probe failed: %w", err)
	}

	return pickEncoder(out.String())
}

func pickEncoder(encoderList string) (string, error) {
	for _, enc := range preferredEncoders {
		// encoder rows look like " V....D libx264  H.264 / AVC ..."
		if strings.Contains(encoderList, " "+enc+" ") {
			return enc, nil
		}
	}
	return "", fmt.Errorf("none of %s available", strings.Join(preferredEncoders, ", "))
}

// Burn runs the render. The original audio stream is copied through
// untouched, never re-encoded.
func (b *FFmpegBurner) Burn(
	ctx context.Context,
	job BurnJob,
	progress func(seconds float64),
) error {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	kwargs := ffmpeg.KwArgs{
		"vf":  fmt.Sprintf("ass=%s:fontsdir=%s", ffmpegbin.FilterEscape(job.ASSPath), ffmpegbin.FilterEscape(job.FontsDir)),
		"c:v": job.Encoder,
	}
	if job.HasAudio {
		kwargs["c:a"] = "copy"
	}

	cmd := ffmpeg.Input(job.VideoPath).
		Output(job.OutputPath, kwargs).
		GlobalArgs("-progress", "pipe:1", "-nostats").
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Compile()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open progress pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// kill the render if the export is cancelled mid-flight
	renderDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
		case <-renderDone:
		}
	}()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if seconds, ok := parseProgressLine(scanner.Text()); ok && progress != nil {
			progress(seconds)
		}
	}

	err = cmd.Wait()
	close(renderDone)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("ffmpeg exited: %w", err)
	}
	return nil
}

// parseProgressLine reads one key=value line of ffmpeg's -progress
// stream and returns the output clock in seconds.
func parseProgressLine(line string) (float64, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}

	switch key {
	case "out_time_us", "out_time_ms":
		// both report microseconds in current ffmpeg builds
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return float64(us) / 1e6, true
	default:
		return 0, false
	}
}
