// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strconv"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcess_FillsBannerSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		dest          string
		mime          string
	}{
		{"larger png", 1200, 600, "banner.png", MimeTypePNG},
		{"smaller png to jpeg", 300, 200, "banner.jpg", MimeTypeJPEG},
		{"exact size", BannerWidth, BannerHeight, "banner.png", MimeTypePNG},
		{"webp name written as jpeg", 100, 100, "banner.webp", MimeTypeJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "banners", tt.dest)
			data := encodePNG(t, createTestImage(tt.width, tt.height))

			res, err := NewBannerProcessor().Process(bytes.NewReader(data), dest)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if res.Width != BannerWidth || res.Height != BannerHeight {
				t.Errorf("size = %dx%d, want %dx%d", res.Width, res.Height, BannerWidth, BannerHeight)
			}
			if res.MimeType != tt.mime {
				t.Errorf("MimeType = %q, want %q", res.MimeType, tt.mime)
			}
			if res.Size == 0 {
				t.Error("Size should be > 0")
			}

			w, h, err := GetImageDimensions(dest)
			if err != nil {
				t.Fatalf("GetImageDimensions() error = %v", err)
			}
			if w != BannerWidth || h != BannerHeight {
				t.Errorf("file size = %dx%d", w, h)
			}
		})
	}
}

func TestProcess_RejectsNonImage(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "x.png")
	_, err := NewBannerProcessor().Process(bytes.NewReader([]byte("plain text")), dest)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Process() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{MimeTypeJPEG, true},
		{MimeTypePNG, true},
		{MimeTypeGIF, true},
		{MimeTypeWebP, true},
		{"image/tiff", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.mimeType); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"tiff magic bytes", []byte{0x49, 0x49, 0x2A, 0x00}, ""},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutputExtension(t *testing.T) {
	tests := map[string]string{
		"a.PNG":  ".png",
		"a.gif":  ".gif",
		"a.jpeg": ".jpg",
		"a.webp": ".jpg",
		"a":      ".jpg",
	}
	for in, want := range tests {
		if got := OutputExtension(in); got != want {
			t.Errorf("OutputExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(20, 10)

	for orientation := 0; orientation <= 9; orientation++ {
		t.Run("orientation_"+strconv.Itoa(orientation), func(t *testing.T) {
			b := applyOrientation(img, orientation).Bounds()
			rotated := orientation >= 5 && orientation <= 8
			if rotated && (b.Dx() != 10 || b.Dy() != 20) {
				t.Errorf("bounds = %v, want rotated 10x20", b)
			}
			if !rotated && (b.Dx() != 20 || b.Dy() != 10) {
				t.Errorf("bounds = %v, want 20x10", b)
			}
		})
	}
}
