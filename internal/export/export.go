package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tarjuma/tarjuma/internal/email"
	"github.com/tarjuma/tarjuma/internal/fonts"
	"github.com/tarjuma/tarjuma/internal/logging"
	"github.com/tarjuma/tarjuma/internal/overlay"
	"github.com/tarjuma/tarjuma/internal/project"
	"github.com/tarjuma/tarjuma/internal/video"
)

var (
	ErrNoVideo   = errors.New("no source video loaded")
	ErrNoEncoder = errors.New("no usable video encoder found")
	ErrNotDone   = errors.New("no finished export to act on")
)

// export lifecycle
type State string

const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateSuccess   State = "success"
	StateEmailing  State = "emailing"
)

// Status is a readable snapshot of the pipeline.
type Status struct {
	State      State  `json:"state"`
	Progress   int    `json:"progress"` // percent, meaningful while rendering
	OutputPath string `json:"outputPath,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Prober reads source video facts before rendering starts.
type Prober interface {
	Probe(ctx context.Context, path string) (*video.Info, error)
}

// BurnJob is one render request for a Burner.
type BurnJob struct {
	VideoPath  string
	ASSPath    string
	FontsDir   string
	Encoder    string
	OutputPath string
	HasAudio   bool
}

// Burner renders captions onto a video. Progress is reported as seconds
// of output written so far.
type Burner interface {
	SelectEncoder(ctx context.Context) (string, error)
	Burn(ctx context.Context, job BurnJob, progress func(seconds float64)) error
}

// FontReadier blocks until a caption font is usable from FontsDir.
type FontReadier interface {
	Ensure(ctx context.Context, url string) (string, error)
	Dir() string
}

// Pipeline burns settled-state captions into a copy of the source video
// while muxing the original audio through untouched.
//
// At most one render is in flight. Starting a new one cancels the old
// one and waits for its resources to be released first.
type Pipeline struct {
	logger *logging.Logger
	prober Prober
	burner Burner
	fonts  FontReadier
	sender email.Sender
	outDir string

	// admit serializes the cancel-wait-install sequence in Start so
	// racing callers cannot both pass the teardown wait and launch
	// simultaneous renders
	admit sync.Mutex

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPipeline(
	logger *logging.Logger,
	prober Prober,
	burner Burner,
	fontReadier FontReadier,
	sender email.Sender,
	outDir string,
) *Pipeline {
	if sender == nil {
		sender = email.NopSender{}
	}
	return &Pipeline{
		logger: logger,
		prober: prober,
		burner: burner,
		fonts:  fontReadier,
		sender: sender,
		outDir: outDir,
		status: Status{State: StateIdle},
	}
}

// NewDefaultPipeline wires the ffmpeg-backed collaborators.
func NewDefaultPipeline(logger *logging.Logger, outDir, fontsDir string) *Pipeline {
	sender := buildSender()
	return NewPipeline(
		logger,
		FFprobeProber{},
		&FFmpegBurner{},
		fonts.NewInstaller(fontsDir),
		sender,
		outDir,
	)
}

func buildSender() email.Sender {
	cfg := email.ConfigFromEnv()
	if !cfg.Enabled() {
		return email.NopSender{}
	}
	s, err := email.NewSMTPSender(cfg)
	if err != nil {
		return email.NopSender{}
	}
	return s
}

// Status returns a snapshot of the pipeline state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Start begins rendering the project. An in-flight render is cancelled
// and fully torn down before the new one starts. Start returns once the
// render is admitted; Wait blocks until it finishes.
func (p *Pipeline) Start(ctx context.Context, proj project.Project) error {
	if proj.VideoPath == "" {
		return ErrNoVideo
	}

	// admit is held across cancel, wait and install: two racing callers
	// must not both observe the previous render torn down and then
	// launch side by side
	p.admit.Lock()
	defer p.admit.Unlock()

	p.mu.Lock()
	prevCancel, prevDone := p.cancel, p.done
	p.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	renderCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.status = Status{State: StateRendering, Progress: 0}
	p.mu.Unlock()

	go func() {
		defer close(done)
		outputPath, err := p.run(renderCtx, proj)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.cancel = nil
		if err != nil {
			p.logger.Errorw("Export failed", "error", err)
			p.status = Status{State: StateIdle, Error: err.Error()}
			return
		}
		p.status = Status{State: StateSuccess, Progress: 100, OutputPath: outputPath}
		p.logger.Infow("Export finished", "output", outputPath)
	}()

	return nil
}

// Wait blocks until the current render (if any) has finished.
func (p *Pipeline) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Cancel stops an in-flight render and returns the pipeline to Idle.
// Cancelling when nothing is rendering is a no-op.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run executes one render from probe to finished file. It owns the temp
// overlay directory and the partial output; both are removed on failure.
func (p *Pipeline) run(ctx context.Context, proj project.Project) (string, error) {
	info, err := p.prober.Probe(ctx, proj.VideoPath)
	if err != nil {
		return "", fmt.Errorf("probe failed: %w", err)
	}

	p.logger.Infow("Starting export",
		"video", proj.VideoPath,
		"resolution", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"duration", info.Duration,
		"captions", len(proj.Lines),
	)

	// Font must be on disk before the first frame is drawn; a late font
	// swap cannot be corrected once frames are encoded.
	if proj.Style.CustomFontURL != "" {
		if _, err := p.fonts.Ensure(ctx, proj.Style.CustomFontURL); err != nil {
			return "", fmt.Errorf("font not ready: %w", err)
		}
	}

	assPath, cleanup, err := p.writeOverlay(proj, info)
	if err != nil {
		return "", err
	}
	defer cleanup()

	encoder, err := p.burner.SelectEncoder(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoEncoder, err)
	}

	if err := os.MkdirAll(p.outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	// timestamp for readability, uuid fragment so renders started in the
	// same second never overwrite each other
	outputPath := filepath.Join(
		p.outDir,
		fmt.Sprintf("tarjuma-%s-%s.mp4",
			time.Now().Format("20060102-150405"),
			uuid.NewString()[:8],
		),
	)

	job := BurnJob{
		VideoPath:  proj.VideoPath,
		ASSPath:    assPath,
		FontsDir:   p.fonts.Dir(),
		Encoder:    encoder,
		OutputPath: outputPath,
		HasAudio:   info.HasAudio,
	}

	// Progress caps at 99 here; 100 is reported exactly once, on
	// successful completion.
	onProgress := func(seconds float64) {
		pct := int(math.Round(seconds / info.Duration * 100))
		if pct > 99 {
			pct = 99
		}
		if pct < 0 {
			pct = 0
		}
		p.setProgress(pct)
	}

	if err := p.burner.Burn(ctx, job, onProgress); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("render failed: %w", err)
	}

	return outputPath, nil
}

func (p *Pipeline) writeOverlay(
	proj project.Project,
	info *video.Info,
) (string, func(), error) {
	customFamily := ""
	if proj.Style.CustomFontURL != "" {
		customFamily = fonts.FamilyName(proj.Style.CustomFontURL)
	}

	compositor, err := overlay.NewCompositor(proj.Style, customFamily)
	if err != nil {
		return "", nil, fmt.Errorf("invalid style: %w", err)
	}

	doc, err := compositor.Document(proj.Lines, info.Width, info.Height, overlay.ModeSettled)
	if err != nil {
		return "", nil, fmt.Errorf("overlay composition failed: %w", err)
	}

	dir, err := os.MkdirTemp("", "tarjuma-overlay-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create overlay directory: %w", err)
	}

	assPath := filepath.Join(dir, "captions.ass")
	if err := os.WriteFile(assPath, []byte(doc), 0644); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("failed to write overlay document: %w", err)
	}

	return assPath, func() { os.RemoveAll(dir) }, nil
}

func (p *Pipeline) setProgress(pct int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.State == StateRendering && pct > p.status.Progress {
		p.status.Progress = pct
	}
}

// EmailResult sends the finished export's location to an address. An
// empty address is a silent no-op. The side path is Success -> Emailing
// -> Idle; the output path stays readable from the final status.
func (p *Pipeline) EmailResult(ctx context.Context, address string) error {
	if address == "" {
		return nil
	}

	p.mu.Lock()
	if p.status.State != StateSuccess {
		p.mu.Unlock()
		return ErrNotDone
	}
	outputPath := p.status.OutputPath
	p.status.State = StateEmailing
	p.mu.Unlock()

	err := p.sender.Send(ctx, address, outputPath)

	p.mu.Lock()
	p.status.State = StateIdle
	p.status.OutputPath = outputPath
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to email result: %w", err)
	}
	p.logger.Infow("Export location emailed", "recipient", address)
	return nil
}
