package fonts

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Installer materializes custom font resources into a directory that the
// subtitle renderer is pointed at (the ass filter's fontsdir). Rendering
// must never start before the font file is fully on disk: a frame drawn
// with a fallback face cannot be corrected once captured.
type Installer struct {
	dir    string
	client *http.Client

	mu        sync.Mutex
	installed map[string]string // source URL -> font file path
}

func NewInstaller(dir string) *Installer {
	return &Installer{
		dir:    dir,
		client: &http.Client{Timeout: 2 * time.Minute},
		installed: map[string]string{},
	}
}

// Dir is the fontsdir to hand to the renderer.
func (i *Installer) Dir() string {
	return i.dir
}

// Ensure blocks until the font behind rawURL is present in the fonts
// directory and returns the family name to reference it by. Repeated
// calls for the same URL are served from the install cache.
//
// The family is derived from the file stem; fontconfig discovers the
// face by scanning fontsdir, so the stem must match the font's real
// family name for exotic files. That matches how the source URL is
// produced by the editing surface.
func (i *Installer) Ensure(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("empty font url")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if path, ok := i.installed[rawURL]; ok {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return FamilyName(rawURL), nil
		}
		delete(i.installed, rawURL)
	}

	if err := os.MkdirAll(i.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create fonts directory: %w", err)
	}

	dest := filepath.Join(i.dir, fileName(rawURL))

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid font url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		if err := i.download(ctx, rawURL, dest); err != nil {
			return "", err
		}
	case "", "file":
		src := u.Path
		if u.Scheme == "" {
			src = rawURL
		}
		if err := copyFile(src, dest); err != nil {
			return "", fmt.Errorf("failed to install local font: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported font url scheme %q", u.Scheme)
	}

	i.installed[rawURL] = dest
	return FamilyName(rawURL), nil
}

func (i *Installer) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build font request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("font download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("font download failed: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(i.dir, "font-*.part")
	if err != nil {
		return fmt.Errorf("failed to create font temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write font file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close font file: %w", err)
	}

	// rename-into-place so a crashed download never looks installed
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize font file: %w", err)
	}
	return nil
}

// FamilyName derives the family a font URL renders under.
func FamilyName(rawURL string) string {
	name := fileName(rawURL)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		return "CustomUserFont"
	}
	return name
}

func fileName(rawURL string) string {
	trimmed := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		trimmed = u.Path
	}

	base := filepath.Base(trimmed)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	if base == "" || base == "." || base == string(filepath.Separator) {
		sum := sha256.Sum256([]byte(rawURL))
		base = fmt.Sprintf("font-%x", sum[:8])
	}
	if filepath.Ext(base) == "" {
		base += ".ttf"
	}
	return base
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
