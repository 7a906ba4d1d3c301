// MODUL: image
// ZWECK: Dekodierung und JPEG-Normalisierung fuer Provider-Eingaben
// INPUT: Bild-Bytes (JPEG, PNG, WebP, GIF)
// OUTPUT: image.Image bzw. JPEG-Bytes
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: golang.org/x/image/draw, golang.org/x/image/webp
// HINWEISE: Transparenz wird auf weissem Hintergrund verflacht

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	// Decoder registrieren
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/7blacky7/vismatch/types/errtypes"
)

// JPEGQuality ist die Qualitaet fuer re-kodierte Bilder
const JPEGQuality = 90

// Decode dekodiert Bild-Bytes nach Pruefung der Magic-Bytes
func Decode(data []byte) (image.Image, ImageFormat, error) {
	format, err := ValidateImage(data)
	if err != nil {
		return nil, format, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, errtypes.Format("vision: decode", fmt.Errorf("bild dekodieren fehlgeschlagen: %w", err))
	}
	return img, format, nil
}

// NormalizeJPEG liefert JPEG-Bytes fuer Provider, die JPEG erwarten.
// JPEG-Eingaben werden unveraendert zurueckgegeben.
func NormalizeJPEG(data []byte) ([]byte, error) {
	if DetectFormat(data) == FormatJPEG {
		return data, nil
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img, color.White), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, errtypes.Format("vision: encode jpeg", err)
	}
	return buf.Bytes(), nil
}

// flatten zeichnet das Bild auf einen einfarbigen Hintergrund
func flatten(img image.Image, bg color.Color) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	draw.Draw(dst, dst.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}
