// client_api.go - API-Methoden des vismatch Clients
// Enthaelt: Health, Version, Match, Embed, Upload, List, Show, Delete
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Health prueft ob der Server laeuft und welcher Provider aktiv ist.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Version gibt die Server-Version zurueck.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Match sucht aehnliche Produkte zu einer Bild-URL.
func (c *Client) Match(ctx context.Context, imageURL string) (*MatchResponse, error) {
	var resp MatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/match", &MatchRequest{ImageURL: imageURL}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MatchFile sucht aehnliche Produkte zu einem hochgeladenen Bild.
func (c *Client) MatchFile(ctx context.Context, filename string, image io.Reader) (*MatchResponse, error) {
	body, contentType, err := multipartBody(filename, image, nil)
	if err != nil {
		return nil, err
	}

	var resp MatchResponse
	if err := c.send(ctx, http.MethodPost, "/api/match", contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Embed berechnet das Embedding einer Bild-URL.
func (c *Client) Embed(ctx context.Context, imageURL string) (*EmbedResponse, error) {
	var resp EmbedResponse
	if err := c.do(ctx, http.MethodPost, "/api/embed", &MatchRequest{ImageURL: imageURL}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EmbedFile berechnet das Embedding eines hochgeladenen Bildes.
func (c *Client) EmbedFile(ctx context.Context, filename string, image io.Reader) (*EmbedResponse, error) {
	body, contentType, err := multipartBody(filename, image, nil)
	if err != nil {
		return nil, err
	}

	var resp EmbedResponse
	if err := c.send(ctx, http.MethodPost, "/api/embed", contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Upload indiziert ein Produkt aus einer Bild-URL.
func (c *Client) Upload(ctx context.Context, req *UploadRequest) (*UploadResponse, error) {
	var resp UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadFile indiziert ein Produkt aus einer lokalen Bilddatei.
func (c *Client) UploadFile(ctx context.Context, name, category, filename string, image io.Reader) (*UploadResponse, error) {
	body, contentType, err := multipartBody(filename, image, map[string]string{
		"name":     name,
		"category": category,
	})
	if err != nil {
		return nil, err
	}

	var resp UploadResponse
	if err := c.send(ctx, http.MethodPost, "/api/upload", contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List listet Produkte, optional gefiltert nach Kategorie.
func (c *Client) List(ctx context.Context, category string) (*ListResponse, error) {
	path := "/api/products"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}

	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Show gibt ein einzelnes Produkt zurueck.
func (c *Client) Show(ctx context.Context, id string) (*Product, error) {
	var resp ProductResponse
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Delete entfernt ein Produkt.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}
