package gemini

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const maxImageSide = 1080

// ImageStore saves generated images as JPEG files served under PublicURL.
// Facebook fetches photos by URL, so PublicURL must be reachable from outside.
type ImageStore struct {
	Dir       string
	PublicURL string
}

// Save decodes data (png, jpeg, gif or webp), fits it into maxImageSide and
// writes it as JPEG. It returns the public URL of the file.
func (s ImageStore) Save(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode generated image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}

	name := uuid.NewString() + ".jpg"
	if err := imaging.Save(img, filepath.Join(s.Dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save generated image: %w", err)
	}
	return strings.TrimRight(s.PublicURL, "/") + "/" + name, nil
}
