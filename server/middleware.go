// middleware.go - Middleware-Funktionen fuer den HTTP-Router
// Enthaelt: requestLogger(), allowedHostsMiddleware()

package server

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger protokolliert jeden Request nach Abschluss
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"elapsed", time.Since(start))
	}
}

// localTLDs gelten auch ohne DNS-Aufloesung als lokal
var localTLDs = []string{"localhost", "local", "internal"}

// allowedHost prueft ob ein Host-Header auf diese Maschine zeigt
func allowedHost(host string) bool {
	host = strings.ToLower(host)
	if host == "" || host == "localhost" {
		return true
	}
	if hostname, err := os.Hostname(); err == nil && host == strings.ToLower(hostname) {
		return true
	}
	for _, tld := range localTLDs {
		if strings.HasSuffix(host, "."+tld) {
			return true
		}
	}
	return false
}

// allowedHostsMiddleware schuetzt einen nur lokal gebundenen Server vor
// DNS-Rebinding: bei Loopback-Adresse werden fremde Host-Header abgewiesen.
func allowedHostsMiddleware(addr net.Addr) gin.HandlerFunc {
	return func(c *gin.Context) {
		if addr == nil {
			c.Next()
			return
		}
		if ap, err := netip.ParseAddrPort(addr.String()); err == nil && !ap.Addr().IsLoopback() {
			c.Next()
			return
		}

		host, _, err := net.SplitHostPort(c.Request.Host)
		if err != nil {
			host = c.Request.Host
		}

		if ip, err := netip.ParseAddr(host); err == nil {
			if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
				c.Next()
				return
			}
		}

		if allowedHost(host) {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		writeError(c, http.StatusForbidden, "Host not allowed")
		c.Abort()
	}
}
