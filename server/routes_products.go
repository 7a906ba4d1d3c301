// routes_products.go - Handler fuer Upload und Katalog-Verwaltung
// Enthaelt: UploadHandler, ListHandler, ShowHandler, DeleteHandler

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/vismatch/api"
	"github.com/7blacky7/vismatch/catalog"
	"github.com/7blacky7/vismatch/match"
	"github.com/7blacky7/vismatch/types/errtypes"
	"github.com/7blacky7/vismatch/vision"
)

const (
	nameFromUpload = "Uploaded Product"
	nameFromURL    = "Product from URL"
)

// UploadHandler nimmt ein Produktbild als Datei oder URL an und indexiert es
func (s *Server) UploadHandler(c *gin.Context) {
	data, format, err := s.readUpload(c)
	if err != nil && !errors.Is(err, errNoFile) {
		s.handleError(c, err)
		return
	}

	var req api.UploadRequest
	_ = c.ShouldBind(&req)

	in := match.ProductInput{Category: sanitizeCategory(req.Category)}

	switch {
	case err == nil:
		path, err := s.saveUpload(data, format)
		if err != nil {
			abortWithError(c, err)
			return
		}
		in.Image = vision.RefBytes(data)
		in.ImageRef = path
		in.Name = productName(req.Name, nameFromUpload)
	case strings.TrimSpace(req.ImageURL) != "":
		u := strings.TrimSpace(req.ImageURL)
		if !validImageURL(u) {
			writeError(c, http.StatusBadRequest, "Please provide a valid image URL")
			return
		}
		in.Image = vision.RefString(u)
		in.Name = productName(req.Name, nameFromURL)
	default:
		writeError(c, http.StatusBadRequest, "Please provide an image file or image URL")
		return
	}

	prod, err := s.pipeline.Index(c.Request.Context(), in)
	if err != nil {
		if in.ImageRef != "" {
			s.removeUpload(in.ImageRef)
		}
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.UploadResponse{
		Success: true,
		Message: "Product uploaded successfully",
		Data: api.UploadedProduct{
			ID:              prod.ID,
			Name:            prod.Name,
			Category:        prod.Category,
			ImageURL:        prod.ImageRef,
			EmbeddingLength: len(prod.Embedding),
		},
	})
}

// productName bereinigt name, leere Namen ergeben den Platzhalter
func productName(name, placeholder string) string {
	if strings.TrimSpace(name) == "" {
		return placeholder
	}
	return sanitizeProductName(name)
}

// ListHandler listet Produkte, neueste zuerst, optional nach Kategorie
func (s *Server) ListHandler(c *gin.Context) {
	products, err := s.pipeline.Store().List(c.Request.Context(), catalog.Filter{
		Category: strings.TrimSpace(c.Query("category")),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := api.ListResponse{Success: true, Count: len(products), Data: make([]api.Product, 0, len(products))}
	for _, p := range products {
		resp.Data = append(resp.Data, apiProduct(p))
	}
	c.JSON(http.StatusOK, resp)
}

// ShowHandler gibt ein einzelnes Produkt ohne Embedding zurueck
func (s *Server) ShowHandler(c *gin.Context) {
	p, err := s.pipeline.Store().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.productError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ProductResponse{Success: true, Data: apiProduct(p)})
}

// DeleteHandler loescht ein Produkt und seine hochgeladene Bilddatei
func (s *Server) DeleteHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	p, err := s.pipeline.Store().Get(ctx, id)
	if err != nil {
		s.productError(c, err)
		return
	}
	if err := s.pipeline.Store().Delete(ctx, id); err != nil {
		s.productError(c, err)
		return
	}
	s.removeUpload(p.ImageRef)

	slog.Info("product deleted", "id", id)
	c.JSON(http.StatusOK, api.MessageResponse{Success: true, Message: "Product deleted successfully"})
}

func (s *Server) productError(c *gin.Context, err error) {
	if errors.Is(err, errtypes.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Product not found")
		return
	}
	abortWithError(c, err)
}

// removeUpload loescht eine Datei unter /uploads/, andere Referenzen bleiben
func (s *Server) removeUpload(ref string) {
	if !strings.HasPrefix(ref, uploadPrefix) {
		return
	}
	path := filepath.Join(s.cfg.UploadDir, filepath.Base(ref))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("remove upload", "path", path, "error", err)
	}
}

func apiProduct(p *catalog.Product) api.Product {
	return api.Product{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		ImageURL:   p.ImageRef,
		Dimensions: len(p.Embedding),
		Metadata:   p.Metadata,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
