package caption

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// represents one timed unit of original + translated text
type Line struct {
	ID          string  `json:"id"`
	Start       float64 `json:"startTime"`
	End         float64 `json:"endTime"`
	Text        string  `json:"originalText"`
	Translation string  `json:"translatedText"`
}

// creates a line with a fresh identity
func NewLine(start, end float64, text, translation string) Line {
	return Line{
		ID:          uuid.NewString(),
		Start:       start,
		End:         end,
		Text:        text,
		Translation: translation,
	}
}

func (l Line) Validate() error {
	if l.Start < 0 {
		return fmt.Errorf("start time must not be negative, got %v", l.Start)
	}
	if l.End < l.Start {
		return fmt.Errorf(
			"end time %v is before start time %v",
			l.End,
			l.Start,
		)
	}
	return nil
}

// Resolve returns the line active at time t, or nil when no line matches.
// Boundaries are inclusive on both ends. When lines overlap, the first one
// in list order wins; preview and export both go through this function so
// the exported output always matches the previewed one.
func Resolve(lines []Line, t float64) *Line {
	for i := range lines {
		if t >= lines[i].Start && t <= lines[i].End {
			return &lines[i]
		}
	}
	return nil
}

// Insert returns a new slice with the line appended. The input slice is
// never mutated; callers replace the whole project value.
func Insert(lines []Line, l Line) []Line {
	out := make([]Line, 0, len(lines)+1)
	out = append(out, lines...)
	return append(out, l)
}

// Replace returns a new slice with the line at index swapped out.
func Replace(lines []Line, index int, l Line) ([]Line, error) {
	if index < 0 || index >= len(lines) {
		return nil, fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(lines)-1,
		)
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	out[index] = l
	return out, nil
}

// Sorted returns a new slice ordered by start time. The project keeps
// lines in authoring order (first-match resolution depends on it);
// sorting is for consumers that need chronological output, like
// sidecar files.
func Sorted(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Remove returns a new slice without the line at index.
func Remove(lines []Line, index int) ([]Line, error) {
	if index < 0 || index >= len(lines) {
		return nil, fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(lines)-1,
		)
	}
	out := make([]Line, 0, len(lines)-1)
	out = append(out, lines[:index]...)
	return append(out, lines[index+1:]...), nil
}
