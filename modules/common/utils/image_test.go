package utils

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestSniffImageMIME(t *testing.T) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}

	jpegHeader := append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 16)...)
	webpHeader := append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 8)...)

	tests := []struct {
		name     string
		data     []byte
		expected string
		wantErr  bool
	}{
		{"png", pngBuf.Bytes(), "image/png", false},
		{"jpeg", jpegHeader, "image/jpeg", false},
		{"webp", webpHeader, "image/webp", false},
		{"too short", []byte{0x89, 0x50}, "", true},
		{"unknown format", make([]byte, 32), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := SniffImageMIME(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mime != tt.expected {
				t.Errorf("mime = %q, want %q", mime, tt.expected)
			}
		})
	}
}

func TestResizeImageFitsTarget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	dst := ResizeImage(src, 50, 50)

	bounds := dst.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("resized bounds = %dx%d, want 50x50", bounds.Dx(), bounds.Dy())
	}
}
