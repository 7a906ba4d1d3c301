package vision

import (
	"errors"
	"testing"

	"github.com/7blacky7/vismatch/types/errtypes"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected ImageFormat
	}{
		{
			name:     "JPEG Magic Bytes",
			data:     []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
			expected: FormatJPEG,
		},
		{
			name:     "PNG Magic Bytes",
			data:     []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A},
			expected: FormatPNG,
		},
		{
			name:     "WebP Magic Bytes",
			data:     []byte{'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P'},
			expected: FormatWebP,
		},
		{
			name:     "RIFF ohne WEBP",
			data:     []byte{'R', 'I', 'F', 'F', 0x00, 0x00, 0x00, 0x00, 'W', 'A', 'V', 'E'},
			expected: FormatUnknown,
		},
		{
			name:     "GIF89a",
			data:     []byte("GIF89a\x01\x00"),
			expected: FormatGIF,
		},
		{
			name:     "GIF87a",
			data:     []byte("GIF87a\x01\x00"),
			expected: FormatGIF,
		},
		{
			name:     "Zu kurze Daten",
			data:     []byte{0xFF, 0xD8},
			expected: FormatUnknown,
		},
		{
			name:     "Text",
			data:     []byte("<html>"),
			expected: FormatUnknown,
		},
		{
			name:     "Leere Daten",
			data:     []byte{},
			expected: FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormat(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormat() = %v, erwartet %v", result, tt.expected)
			}
		})
	}
}

func TestValidateImage(t *testing.T) {
	if _, err := ValidateImage([]byte("not an image")); !errors.Is(err, errtypes.ErrFormat) {
		t.Errorf("erwartet Format-Fehler, erhalten %v", err)
	}

	format, err := ValidateImage([]byte{0xFF, 0xD8, 0xFF, 0xDB})
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if format != FormatJPEG {
		t.Errorf("erwartet jpeg, erhalten %v", format)
	}
}

func TestFormatFromMimeType(t *testing.T) {
	tests := map[string]ImageFormat{
		"image/jpeg":               FormatJPEG,
		"image/jpg":                FormatJPEG,
		"IMAGE/PNG":                FormatPNG,
		"image/webp":               FormatWebP,
		"image/gif":                FormatGIF,
		"image/jpeg; charset=utf8": FormatJPEG,
		"image/svg+xml":            FormatUnknown,
		"":                         FormatUnknown,
	}

	for mime, expected := range tests {
		if got := FormatFromMimeType(mime); got != expected {
			t.Errorf("FormatFromMimeType(%q) = %v, erwartet %v", mime, got, expected)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]ImageFormat{
		"a.jpg":        FormatJPEG,
		"b.JPEG":       FormatJPEG,
		"/x/y/c.png":   FormatPNG,
		"d.webp":       FormatWebP,
		"e.gif":        FormatGIF,
		"f.bmp":        FormatUnknown,
		"no-extension": FormatUnknown,
	}

	for path, expected := range tests {
		if got := FormatFromPath(path); got != expected {
			t.Errorf("FormatFromPath(%q) = %v, erwartet %v", path, got, expected)
		}
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		format ImageFormat
		mime   string
		ext    string
	}{
		{FormatJPEG, "image/jpeg", ".jpg"},
		{FormatPNG, "image/png", ".png"},
		{FormatWebP, "image/webp", ".webp"},
		{FormatGIF, "image/gif", ".gif"},
		{FormatUnknown, "application/octet-stream", ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.MimeType(); got != tt.mime {
				t.Errorf("MimeType() = %q, erwartet %q", got, tt.mime)
			}
			if got := tt.format.Extension(); got != tt.ext {
				t.Errorf("Extension() = %q, erwartet %q", got, tt.ext)
			}
		})
	}
}
