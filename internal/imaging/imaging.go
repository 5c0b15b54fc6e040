// Package imaging prepares photos for image analysis.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxWidth is the width photos are reduced to before analysis.
const MaxWidth = 800

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 70

// MaxUploadSize bounds the raw photo read from a request.
const MaxUploadSize = 16 << 20

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Prepared is a photo ready to send to the analysis service.
type Prepared struct {
	Data          []byte
	MIME          string
	Width, Height int
}

// Base64 returns the standard base64 encoding of the JPEG data.
func (p *Prepared) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// Prepare reads a photo, validates the format by sniffing bytes, reduces it
// to at most MaxWidth pixels wide and re-encodes it as JPEG.
func Prepare(r io.Reader) (*Prepared, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadSize)
	}

	// Sniff actual MIME type from bytes (not trusting client headers).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fitWidth(img, MaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Prepared{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// fitWidth scales img down to maxWidth keeping the aspect ratio, using
// Catmull-Rom interpolation. Narrower images are returned unchanged.
func fitWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return img
	}

	newH := max(int(float64(h)*float64(maxWidth)/float64(w)), 1)

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
