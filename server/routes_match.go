// routes_match.go - Handler fuer Health, Match und Embed
// Enthaelt: HealthHandler, MatchHandler, EmbedHandler, imageFromRequest()

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/vismatch/api"
	"github.com/7blacky7/vismatch/match"
	"github.com/7blacky7/vismatch/vision"
)

// HealthHandler meldet Status, Umgebung und aktiven Provider
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Success:     true,
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Environment: s.cfg.Environment,
		Provider:    s.pipeline.Provider().Info().Name,
	})
}

// imageFromRequest liest das Bild aus einem Multipart-Upload oder aus
// image_url (JSON oder Formular). Mit keep wird ein Upload gespeichert und
// sein oeffentlicher Pfad zurueckgegeben.
func (s *Server) imageFromRequest(c *gin.Context, keep bool) (vision.ImageRef, string, error) {
	data, format, err := s.readUpload(c)
	switch {
	case err == nil:
		if !keep {
			return vision.RefBytes(data), "", nil
		}
		path, err := s.saveUpload(data, format)
		if err != nil {
			return vision.ImageRef{}, "", fmt.Errorf("save upload: %w", err)
		}
		return vision.RefBytes(data), path, nil
	case !errors.Is(err, errNoFile):
		return vision.ImageRef{}, "", err
	}

	var req api.MatchRequest
	if err := c.ShouldBind(&req); err != nil && req.ImageURL == "" {
		return vision.ImageRef{}, "", badRequest("Image URL is required")
	}
	ref, err := s.resolveRef(req.ImageURL)
	if err != nil {
		return vision.ImageRef{}, "", err
	}
	if strings.HasPrefix(strings.ToLower(ref.Ref), "data:") {
		return ref, ref.String(), nil
	}
	return ref, req.ImageURL, nil
}

// MatchHandler sucht die aehnlichsten Katalog-Produkte zu einem Bild
func (s *Server) MatchHandler(c *gin.Context) {
	ref, query, err := s.imageFromRequest(c, true)
	if err != nil {
		s.handleError(c, err)
		return
	}

	results, err := s.pipeline.Match(c.Request.Context(), ref)
	if err != nil {
		// nur die in diesem Request gespeicherte Datei entfernen
		if ref.Data != nil {
			s.removeUpload(query)
		}
		s.handleError(c, err)
		return
	}

	resp := api.MatchResponse{
		Success:    true,
		QueryImage: query,
		Count:      len(results),
		Data:       make([]api.MatchItem, 0, len(results)),
	}
	if len(results) == 0 {
		resp.Message = "No products available for matching"
	}
	for _, r := range results {
		resp.Data = append(resp.Data, matchItem(r))
	}
	c.JSON(http.StatusOK, resp)
}

func matchItem(r match.Result) api.MatchItem {
	return api.MatchItem{
		ID:                   r.ProductID,
		ProductID:            r.ProductID,
		Name:                 r.Name,
		Category:             r.Category,
		ImageURL:             r.ImageRef,
		Similarity:           r.Similarity,
		SimilarityScore:      r.Similarity,
		SimilarityPercentage: fmt.Sprintf("%.2f", r.Similarity*100),
	}
}

// EmbedHandler gibt das Embedding eines Bildes zurueck
func (s *Server) EmbedHandler(c *gin.Context) {
	ref, _, err := s.imageFromRequest(c, false)
	if err != nil {
		s.handleError(c, err)
		return
	}

	vec, err := s.pipeline.Embed(c.Request.Context(), ref)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.EmbedResponse{
		Success:    true,
		Provider:   s.pipeline.Provider().Info().Name,
		Dimensions: len(vec),
		Embedding:  vec,
	})
}

// handleError unterscheidet feste Client-Fehler von Engine-Fehlern
func (s *Server) handleError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		writeError(c, ae.Status, ae.Message)
		c.Abort()
		return
	}
	abortWithError(c, err)
}
