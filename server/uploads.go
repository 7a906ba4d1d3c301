// uploads.go - Bild-Uploads und Aufloesung von Bild-Referenzen
// Enthaelt: readUpload(), saveUpload(), resolveRef()

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/7blacky7/vismatch/vision"
)

const (
	uploadField  = "image"
	uploadPrefix = "/uploads/"
)

var errNoFile = errors.New("no file")

// apiError ist ein Fehler mit festem Status und Client-Meldung
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func badRequest(msg string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: msg}
}

func (s *Server) sizeLimitMessage() string {
	return fmt.Sprintf("File size exceeds %dMB limit", s.cfg.MaxUploadSize>>20)
}

// readUpload liest das Multipart-Feld "image". Ohne Datei wird errNoFile
// zurueckgegeben, bei Groesse oder Format ein *apiError.
func (s *Server) readUpload(c *gin.Context) ([]byte, vision.ImageFormat, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, vision.FormatUnknown, errNoFile
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadSize+1<<20)
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, vision.FormatUnknown, badRequest(s.sizeLimitMessage())
		}
		return nil, vision.FormatUnknown, errNoFile
	}
	if fh.Size > s.cfg.MaxUploadSize {
		return nil, vision.FormatUnknown, badRequest(s.sizeLimitMessage())
	}

	f, err := fh.Open()
	if err != nil {
		return nil, vision.FormatUnknown, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadSize+1))
	if err != nil {
		return nil, vision.FormatUnknown, err
	}
	if int64(len(data)) > s.cfg.MaxUploadSize {
		return nil, vision.FormatUnknown, badRequest(s.sizeLimitMessage())
	}

	format, err := vision.ValidateImage(data)
	if err != nil {
		return nil, vision.FormatUnknown, badRequest("Invalid file type. Only JPEG, PNG, WebP, and GIF are allowed")
	}
	return data, format, nil
}

// saveUpload schreibt data als <uuid><ext> ins Upload-Verzeichnis und gibt
// den oeffentlichen Pfad /uploads/<datei> zurueck
func (s *Server) saveUpload(data []byte, format vision.ImageFormat) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + format.Extension()
	if err := os.WriteFile(filepath.Join(s.cfg.UploadDir, name), data, 0o644); err != nil {
		return "", err
	}
	return uploadPrefix + name, nil
}

// resolveRef wandelt eine Referenz aus einem Request in eine ImageRef.
// /uploads/-Pfade zeigen ins Upload-Verzeichnis, sonst sind nur http(s)
// und Data-URIs erlaubt.
func (s *Server) resolveRef(ref string) (vision.ImageRef, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return vision.ImageRef{}, badRequest("Image URL is required")
	case strings.HasPrefix(ref, uploadPrefix):
		name := filepath.Base(filepath.Clean("/" + strings.TrimPrefix(ref, uploadPrefix)))
		if name == "/" || name == "." {
			return vision.ImageRef{}, badRequest("Invalid upload path")
		}
		return vision.RefString(filepath.Join(s.cfg.UploadDir, name)), nil
	case strings.HasPrefix(strings.ToLower(ref), "data:"), vision.IsRemoteRef(ref):
		return vision.RefString(ref), nil
	default:
		return vision.ImageRef{}, badRequest("Please provide a valid image URL")
	}
}
