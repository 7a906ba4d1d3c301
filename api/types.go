// types.go - Request- und Response-Typen der vismatch HTTP API
// Enthaelt: StatusError, Match/Embed/Upload/Product Typen, Health
package api

import (
	"fmt"
	"time"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return "something went wrong, please see the vismatch server logs for details"
	}
}

// ErrorResponse ist der Body jeder Fehlerantwort
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ============================================================================
// Match / Embed
// ============================================================================

// MatchRequest is the JSON body of POST /api/match and POST /api/embed.
type MatchRequest struct {
	// ImageURL is an http(s) URL, a data URI or an /uploads/ path.
	ImageURL string `json:"image_url" form:"image_url"`
}

// MatchItem is a single ranked product.
type MatchItem struct {
	ID                   string  `json:"id"`
	ProductID            string  `json:"productId"`
	Name                 string  `json:"name"`
	Category             string  `json:"category"`
	ImageURL             string  `json:"image_url"`
	Similarity           float64 `json:"similarity"`
	SimilarityScore      float64 `json:"similarityScore"`
	SimilarityPercentage string  `json:"similarity_percentage"`
}

// MatchResponse is the response of POST /api/match.
type MatchResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	QueryImage string      `json:"query_image,omitempty"`
	Count      int         `json:"count"`
	Data       []MatchItem `json:"data"`
}

// EmbedResponse is the response of POST /api/embed.
type EmbedResponse struct {
	Success    bool      `json:"success"`
	Provider   string    `json:"provider"`
	Dimensions int       `json:"dimensions"`
	Embedding  []float32 `json:"embedding"`
}

// ============================================================================
// Upload / Products
// ============================================================================

// UploadRequest is the JSON or form body of POST /api/upload without a file.
type UploadRequest struct {
	ImageURL string `json:"imageUrl" form:"imageUrl"`
	Name     string `json:"name" form:"name"`
	Category string `json:"category" form:"category"`
}

// UploadedProduct describes a newly indexed product.
type UploadedProduct struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	ImageURL        string `json:"image_url"`
	EmbeddingLength int    `json:"embedding_length"`
}

// UploadResponse is the response of POST /api/upload.
type UploadResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    UploadedProduct `json:"data"`
}

// Product is a catalog entry without its embedding.
type Product struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	ImageURL   string         `json:"image_url"`
	Dimensions int            `json:"dimensions"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ListResponse is the response of GET /api/products.
type ListResponse struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	Data    []Product `json:"data"`
}

// ProductResponse is the response of GET /api/products/:id.
type ProductResponse struct {
	Success bool    `json:"success"`
	Data    Product `json:"data"`
}

// MessageResponse is returned by operations without payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is the response of GET /health.
type HealthResponse struct {
	Success     bool      `json:"success"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Provider    string    `json:"provider"`
}

// VersionResponse is the response of GET /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}
