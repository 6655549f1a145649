package ffmpeg

import "strings"

// FilterEscape quotes a path for use inside a filtergraph argument, so
// drive letters, quotes and option separators survive the filter parser.
func FilterEscape(path string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	)
	return r.Replace(path)
}
