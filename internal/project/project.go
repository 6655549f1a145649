package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/style"
)

// Project is the single mutable aggregate of a captioning session. Edits
// never mutate a Project in place; every change builds a replacement value
// so a concurrently rendering consumer never observes a half-applied edit.
type Project struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	VideoPath string         `json:"videoSource,omitempty"`
	Lines     []caption.Line `json:"lines"`
	Style     style.Config   `json:"styleConfig"`
	CreatedAt time.Time      `json:"createdAt"`
}

func New(title string) Project {
	if title == "" {
		title = "فيديو جديد"
	}
	return Project{
		ID:        uuid.NewString(),
		Title:     title,
		Lines:     []caption.Line{},
		Style:     style.Default(),
		CreatedAt: time.Now(),
	}
}

// WithVideo returns a copy with a new video source.
func (p Project) WithVideo(path string) Project {
	p.Lines = cloneLines(p.Lines)
	p.VideoPath = path
	return p
}

// WithLines returns a copy with the caption list replaced wholesale.
func (p Project) WithLines(lines []caption.Line) Project {
	p.Lines = cloneLines(lines)
	return p
}

// WithStyle returns a copy with the style configuration replaced.
func (p Project) WithStyle(cfg style.Config) Project {
	p.Lines = cloneLines(p.Lines)
	p.Style = cfg
	return p
}

// WithTitle returns a copy with a new title.
func (p Project) WithTitle(title string) Project {
	p.Lines = cloneLines(p.Lines)
	p.Title = title
	return p
}

func (p Project) Validate() error {
	if err := p.Style.Validate(); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	for i, l := range p.Lines {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("invalid caption line %d: %w", i, err)
		}
	}
	return nil
}

func cloneLines(lines []caption.Line) []caption.Line {
	out := make([]caption.Line, len(lines))
	copy(out, lines)
	return out
}

// Load reads a project file written by Save.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Lines == nil {
		p.Lines = []caption.Line{}
	}
	return p, nil
}

// Save writes the project as indented JSON.
func Save(p Project, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
