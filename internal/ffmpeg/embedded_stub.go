//go:build !ffmpeg_embedded

package ffmpeg

import "io"

// without the ffmpeg_embedded tag no archives are bundled
func openEmbeddedAsset(string) (io.ReadCloser, bool, error) {
	return nil, false, nil
}
