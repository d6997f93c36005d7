package browser

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// ShrinkScreenshot downscales a screenshot so its width does not
// exceed maxWidth, re-encoding as JPEG to keep tool results small.
// Images already within bounds are re-encoded but not resized.
func ShrinkScreenshot(data []byte, maxWidth int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
