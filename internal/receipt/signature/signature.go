// Package signature turns a captured signature data URI into an opaque PNG
// suitable for embedding in a PDF.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmpty     = errors.New("signature: empty data")
	ErrMalformed = errors.New("signature: malformed data URI")
)

// Image is a decoded signature flattened onto white.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// Decode parses a data:image/<type>;base64,<payload> URI. Transparent or
// paletted images are composited onto a white background; the result is
// always re-encoded as PNG.
func Decode(dataURI string) (*Image, error) {
	dataURI = strings.TrimSpace(dataURI)
	if dataURI == "" {
		return nil, ErrEmpty
	}
	payload, err := payloadOf(dataURI)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode signature image: %w", err)
	}
	flat := flatten(src)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode signature png: %w", err)
	}
	b := flat.Bounds()
	return &Image{PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

func payloadOf(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, "data:image") {
		return nil, ErrMalformed
	}
	header, data, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.Contains(header, ";base64") {
		return nil, ErrMalformed
	}
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrEmpty
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// Some canvases drop the padding.
		payload, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return payload, nil
}

func flatten(src image.Image) image.Image {
	_, paletted := src.(*image.Paletted)
	if !paletted && isOpaque(src) {
		return imaging.Clone(src)
	}
	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
