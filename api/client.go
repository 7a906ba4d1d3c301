// Package api implements the client-side API for the vismatch HTTP service.
// The methods of the [Client] type correspond to the routes served by the
// server package. The vismatch command-line client uses this package to
// talk to a running server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/7blacky7/vismatch/envconfig"
	"github.com/7blacky7/vismatch/version"
)

// Client encapsulates client state for interacting with the vismatch
// service. Use [ClientFromEnvironment] to create new Clients.
type Client struct {
	base *url.URL
	http *http.Client
}

func checkError(resp *http.Response, body []byte) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	apiError := StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	if err := json.Unmarshal(body, &apiError); err != nil {
		// Use the full body as the message if we fail to decode a response.
		apiError.ErrorMessage = string(body)
	}
	return apiError
}

// ClientFromEnvironment creates a new [Client] using VISMATCH_HOST, which
// points to the network host and port on which the server is listening:
//
//	<scheme>://<host>:<port>
//
// If the variable is not specified, http://127.0.0.1:5000 is used.
func ClientFromEnvironment() (*Client, error) {
	return &Client{
		base: envconfig.Host(),
		http: http.DefaultClient,
	}, nil
}

func NewClient(base *url.URL, http *http.Client) *Client {
	return &Client{
		base: base,
		http: http,
	}
}

// do sends reqData as JSON unless it is already an io.Reader.
func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader

	switch reqData := reqData.(type) {
	case io.Reader:
		reqBody = reqData
	case nil:
		// noop
	default:
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	return c.send(ctx, method, path, "application/json", reqBody, respData)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, respData any) error {
	path, query, _ := strings.Cut(path, "?")
	requestURL := c.base.JoinPath(path)
	requestURL.RawQuery = query

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), body)
	if err != nil {
		return err
	}

	if body != nil {
		request.Header.Set("Content-Type", contentType)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", fmt.Sprintf("vismatch/%s (%s %s) Go/%s", version.Version, runtime.GOARCH, runtime.GOOS, runtime.Version()))

	respObj, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer respObj.Body.Close()

	respBody, err := io.ReadAll(respObj.Body)
	if err != nil {
		return err
	}

	if err := checkError(respObj, respBody); err != nil {
		return err
	}

	if len(respBody) > 0 && respData != nil {
		if err := json.Unmarshal(respBody, respData); err != nil {
			return err
		}
	}
	return nil
}

// multipartBody baut einen multipart/form-data Body mit dem Bild unter
// "image" und den uebrigen Feldern.
func multipartBody(filename string, image io.Reader, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
