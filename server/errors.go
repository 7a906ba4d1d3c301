// errors.go - Abbildung der Fehler-Kinds auf HTTP-Status
// Enthaelt: writeError(), statusFor(), abortWithError()

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/vismatch/api"
	"github.com/7blacky7/vismatch/types/errtypes"
)

// writeError schreibt {success:false, error:msg}
func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, api.ErrorResponse{Success: false, Error: msg})
}

// statusFor waehlt den HTTP-Status zur Kind des Fehlers
func statusFor(err error) int {
	switch errtypes.KindOf(err) {
	case errtypes.KindFormat, errtypes.KindValidation:
		return http.StatusBadRequest
	case errtypes.KindNotFound:
		return http.StatusNotFound
	case errtypes.KindConfiguration:
		return http.StatusServiceUnavailable
	case errtypes.KindProvider:
		if errors.Is(err, errtypes.ErrServiceUnreachable) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case errtypes.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError protokolliert err und antwortet mit dem passenden Status.
// Bei 500 wird die Ursache nicht an den Client gegeben.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		msg = "Internal server error"
	} else {
		slog.Warn("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	writeError(c, status, msg)
	c.Abort()
}
