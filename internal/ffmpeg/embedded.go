//go:build ffmpeg_embedded

package ffmpeg

import (
	"embed"
	"errors"
	"io"
	"io/fs"
)

// Building with -tags ffmpeg_embedded compiles the release archives
// under assets/ into the binary, so first run works without network.
//
//go:embed assets/*
var bundledArchives embed.FS

// openEmbeddedAsset returns the bundled archive by name. An archive
// missing for this platform is not an error; the caller falls back to
// downloading it.
func openEmbeddedAsset(name string) (io.ReadCloser, bool, error) {
	f, err := bundledArchives.Open("assets/" + name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return f, true, nil
}
