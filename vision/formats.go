// MODUL: formats
// ZWECK: Bildformat-Erkennung fuer Uploads und Provider-Eingaben
// INPUT: Bild-Bytes, MIME-Type oder Dateiendung
// OUTPUT: ImageFormat, Fehler bei ungueltigem Format
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: types/errtypes
// HINWEISE: Magic-Bytes-basierte Erkennung, erlaubt sind JPEG/PNG/WebP/GIF

package vision

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/7blacky7/vismatch/types/errtypes"
)

// ImageFormat repraesentiert ein unterstuetztes Bildformat
type ImageFormat string

const (
	FormatJPEG    ImageFormat = "jpeg"
	FormatPNG     ImageFormat = "png"
	FormatWebP    ImageFormat = "webp"
	FormatGIF     ImageFormat = "gif"
	FormatUnknown ImageFormat = "unknown"
)

// Magic-Byte-Signaturen fuer Bildformate
var (
	magicJPEG  = []byte{0xFF, 0xD8, 0xFF}
	magicPNG   = []byte{0x89, 0x50, 0x4E, 0x47}
	magicRIFF  = []byte("RIFF")
	magicGIF87 = []byte("GIF87a")
	magicGIF89 = []byte("GIF89a")
)

// ErrUnknownFormat wird zurueckgegeben wenn Format nicht erkannt wurde
var ErrUnknownFormat = errors.New("unbekanntes Bildformat")

// DetectFormat erkennt das Bildformat anhand der Magic-Bytes
func DetectFormat(data []byte) ImageFormat {
	switch {
	case len(data) < 4:
		return FormatUnknown
	case bytes.HasPrefix(data, magicJPEG):
		return FormatJPEG
	case bytes.HasPrefix(data, magicPNG):
		return FormatPNG
	case bytes.HasPrefix(data, magicGIF87), bytes.HasPrefix(data, magicGIF89):
		return FormatGIF
	case bytes.HasPrefix(data, magicRIFF) && len(data) >= 12 && string(data[8:12]) == "WEBP":
		return FormatWebP
	}
	return FormatUnknown
}

// ValidateImage prueft die Magic-Bytes gegen die erlaubten Formate.
// Gibt einen Format-Fehler zurueck wenn das Format unbekannt ist.
func ValidateImage(data []byte) (ImageFormat, error) {
	format := DetectFormat(data)
	if format == FormatUnknown {
		return format, errtypes.Format("vision: detect format", ErrUnknownFormat)
	}
	return format, nil
}

// FormatFromMimeType bildet einen MIME-Type auf ein Format ab.
// image/jpg wird wie image/jpeg behandelt.
func FormatFromMimeType(mime string) ImageFormat {
	mime, _, _ = strings.Cut(strings.ToLower(strings.TrimSpace(mime)), ";")
	switch strings.TrimSpace(mime) {
	case "image/jpeg", "image/jpg":
		return FormatJPEG
	case "image/png":
		return FormatPNG
	case "image/webp":
		return FormatWebP
	case "image/gif":
		return FormatGIF
	}
	return FormatUnknown
}

// FormatFromPath leitet das Format aus der Dateiendung ab
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	case ".webp":
		return FormatWebP
	case ".gif":
		return FormatGIF
	}
	return FormatUnknown
}

// MimeType gibt den MIME-Type fuer ein Format zurueck
func (f ImageFormat) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// Extension gibt die Dateiendung fuer ein Format zurueck
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	case FormatGIF:
		return ".gif"
	default:
		return ".bin"
	}
}

// String implementiert Stringer Interface
func (f ImageFormat) String() string {
	return string(f)
}
