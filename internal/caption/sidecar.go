package caption

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// sidecar subtitle formats for moving caption lists between tools
type SidecarFormat string

const (
	FormatSRT SidecarFormat = "srt"
	FormatVTT SidecarFormat = "vtt"
)

// WriteSidecar writes the translated captions as a plain subtitle file.
// Only the translation is emitted; the original text rides along as the
// second cue line so round-tripping through ParseSRT loses nothing.
func WriteSidecar(lines []Line, format SidecarFormat, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var sb strings.Builder

	if format == FormatVTT {
		sb.WriteString("WEBVTT\n\n")
	}

	// sidecar players expect chronological cues
	for i, l := range Sorted(lines) {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		switch format {
		case FormatVTT:
			sb.WriteString(fmt.Sprintf("%s --> %s\n",
				formatClock(l.Start, "."),
				formatClock(l.End, ".")))
		case FormatSRT:
			sb.WriteString(fmt.Sprintf("%s --> %s\n",
				formatClock(l.Start, ","),
				formatClock(l.End, ",")))
		default:
			return fmt.Errorf("unsupported sidecar format: %s", format)
		}

		sb.WriteString(l.Translation)
		if l.Text != "" {
			sb.WriteString("\n")
			sb.WriteString(l.Text)
		}
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// ParseSRT reads an SRT file back into caption lines. The first cue line
// becomes the translation, any remaining lines the original text. Each
// parsed line gets a fresh identity.
func ParseSRT(path string) ([]Line, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	timestampRegex := regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`,
	)

	var lines []Line
	var current *Line
	var textLines []string
	lineNum := 0

	flush := func() {
		if current == nil || len(textLines) == 0 {
			return
		}
		current.Translation = textLines[0]
		if len(textLines) > 1 {
			current.Text = strings.Join(textLines[1:], "\n")
		}
		lines = append(lines, *current)
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
		}

		matches := timestampRegex.FindStringSubmatch(line)
		if len(matches) == 9 {
			flush()
			start, err := parseClock(matches[1:5])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			end, err := parseClock(matches[5:9])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			l := NewLine(start, end, "", "")
			current = &l
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return lines, nil
}

// seconds to hh:mm:ss<sep>mmm
func formatClock(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int(seconds*1000 + 0.5)
	h := millis / 3600000
	m := (millis / 60000) % 60
	s := (millis / 1000) % 60
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}

func parseClock(fields []string) (float64, error) {
	if len(fields) != 4 {
		return 0, fmt.Errorf("expected 4 clock fields, got %d", len(fields))
	}
	h, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, err
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// SidecarFormatFromExtension maps a file extension to a sidecar format.
func SidecarFormatFromExtension(path string) (SidecarFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	default:
		return "", fmt.Errorf("unsupported subtitle extension: %s", filepath.Ext(path))
	}
}
