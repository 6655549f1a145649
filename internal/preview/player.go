package preview

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	ffmpegbin "github.com/tarjuma/tarjuma/internal/ffmpeg"
	"github.com/tarjuma/tarjuma/internal/fonts"
	"github.com/tarjuma/tarjuma/internal/logging"
	"github.com/tarjuma/tarjuma/internal/overlay"
	"github.com/tarjuma/tarjuma/internal/project"
	"github.com/tarjuma/tarjuma/internal/video"
)

// Player previews a project with ffplay, overlaying the animated
// captions on normal-speed playback.
type Player struct {
	logger *logging.Logger
	fonts  *fonts.Installer
}

func NewPlayer(logger *logging.Logger, fontsDir string) *Player {
	return &Player{
		logger: logger,
		fonts:  fonts.NewInstaller(fontsDir),
	}
}

// Play blocks until playback ends or the context is cancelled.
func (p *Player) Play(ctx context.Context, proj project.Project) error {
	if proj.VideoPath == "" {
		return fmt.Errorf("no source video loaded")
	}

	ffplayPath, err := ffmpegbin.FFplayPath()
	if err != nil {
		return err
	}

	info, err := video.GetInfo(ctx, proj.VideoPath)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	customFamily := ""
	if proj.Style.CustomFontURL != "" {
		if _, err := p.fonts.Ensure(ctx, proj.Style.CustomFontURL); err != nil {
			p.logger.Warnw("Custom font unavailable, falling back", "error", err)
		} else {
			customFamily = fonts.FamilyName(proj.Style.CustomFontURL)
		}
	}

	compositor, err := overlay.NewCompositor(proj.Style, customFamily)
	if err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}

	doc, err := compositor.Document(proj.Lines, info.Width, info.Height, overlay.ModeAnimated)
	if err != nil {
		return fmt.Errorf("overlay composition failed: %w", err)
	}

	dir, err := os.MkdirTemp("", "tarjuma-preview-*")
	if err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	defer os.RemoveAll(dir)

	assPath := filepath.Join(dir, "captions.ass")
	if err := os.WriteFile(assPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write overlay document: %w", err)
	}

	p.logger.Infow("Starting preview",
		"video", proj.VideoPath,
		"captions", len(proj.Lines),
		"animation", proj.Style.Animation,
	)

	cmd := exec.CommandContext(ctx, ffplayPath,
		"-hide_banner",
		"-loglevel", "error",
		"-autoexit",
		"-window_title", proj.Title,
		"-vf", fmt.Sprintf("ass=%s:fontsdir=%s", ffmpegbin.FilterEscape(assPath), ffmpegbin.FilterEscape(p.fonts.Dir())),
		proj.VideoPath,
	)
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}

	// mirror the playback clock into the caption driver so the terminal
	// reports the same transitions the overlay shows
	playDone := make(chan error, 1)
	go func() { playDone <- cmd.Wait() }()

	driver := NewDriver(&logRenderer{logger: p.logger}, p.fonts, proj.Lines, proj.Style)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case err := <-playDone:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return fmt.Errorf("ffplay exited: %w", err)
			}
			return nil
		case <-ticker.C:
			// playback runs at 1x, so wall clock approximates position
			driver.OnTimeUpdate(time.Since(start).Seconds())
		}
	}
}

// logRenderer reports caption transitions on the terminal. It only
// speaks when the visible caption changes.
type logRenderer struct {
	logger *logging.Logger
	lastID string
}

func (r *logRenderer) Render(frame Frame) {
	if frame.Transition == TransitionExiting || frame.Line.ID == r.lastID {
		return
	}
	r.lastID = frame.Line.ID
	r.logger.Infow("Caption",
		"at", frame.Line.Start,
		"text", frame.Line.Translation,
	)
}

func (r *logRenderer) Clear() {
	r.lastID = ""
}
