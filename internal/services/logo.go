package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// LogoSource provides the image drawn in the logo cell.
type LogoSource interface {
	Logo(ctx context.Context) (image.Image, error)
}

// FileLogo decodes the logo from a file on every call.
type FileLogo string

func (p FileLogo) Logo(ctx context.Context) (image.Image, error) {
	f, err := os.Open(string(p))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", string(p), err)
	}
	return img, nil
}

// BytesLogo decodes the logo from an in-memory image, e.g. an embedded asset.
type BytesLogo []byte

func (b BytesLogo) Logo(ctx context.Context) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}

// NewLogoSource returns a FileLogo when path is set and the embedded
// fallback otherwise.
func NewLogoSource(path string, fallback []byte) LogoSource {
	if path != "" {
		return FileLogo(path)
	}
	return BytesLogo(fallback)
}
