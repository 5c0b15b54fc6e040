package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, testImage(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, testImage(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func TestPreparePNG(t *testing.T) {
	result, err := Prepare(bytes.NewReader(createTestPNG(100, 60)))
	if err != nil {
		t.Fatalf("Prepare PNG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", result.MIME)
	}
	if _, err := jpeg.Decode(bytes.NewReader(result.Data)); err != nil {
		t.Errorf("output is not a JPEG: %v", err)
	}
}

func TestPrepareFitsWidth(t *testing.T) {
	result, err := Prepare(bytes.NewReader(createTestJPEG(1600, 1200)))
	if err != nil {
		t.Fatalf("Prepare large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != MaxWidth || bounds.Dy() != 600 {
		t.Errorf("expected %dx600, got %dx%d", MaxWidth, bounds.Dx(), bounds.Dy())
	}
	if result.Width != bounds.Dx() || result.Height != bounds.Dy() {
		t.Errorf("reported %dx%d, decoded %dx%d", result.Width, result.Height, bounds.Dx(), bounds.Dy())
	}
}

func TestPrepareTallImage(t *testing.T) {
	// Only width is constrained.
	result, err := Prepare(bytes.NewReader(createTestJPEG(400, 2000)))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if result.Width != 400 || result.Height != 2000 {
		t.Errorf("narrow image should not be resized: got %dx%d", result.Width, result.Height)
	}
}

func TestPrepareBase64(t *testing.T) {
	result, err := Prepare(bytes.NewReader(createTestJPEG(10, 10)))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := base64.StdEncoding.DecodeString(result.Base64())
	if err != nil {
		t.Fatalf("decoding base64: %v", err)
	}
	if !bytes.Equal(decoded, result.Data) {
		t.Error("base64 does not round-trip to the JPEG data")
	}
}

func TestPrepareInvalidFormat(t *testing.T) {
	if _, err := Prepare(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestPrepareGIFRejected(t *testing.T) {
	if _, err := Prepare(bytes.NewReader([]byte("GIF89a..."))); err == nil {
		t.Error("expected error for GIF")
	}
}
