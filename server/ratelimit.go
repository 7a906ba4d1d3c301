// ratelimit.go - Rate-Limits pro Client-IP
// Token-Bucket je IP: max Requests als Burst, aufgefuellt ueber das Fenster.

package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	msgRateLimited   = "Too many requests from this IP, please try again later"
	msgUploadLimited = "Upload limit exceeded, please try again later"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// ipLimiter haelt einen rate.Limiter pro IP. Eintraege, die laenger als
// ein Fenster nicht gesehen wurden, werden beim naechsten Zugriff entfernt.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	max       int
	window    time.Duration
	every     rate.Limit
	lastSweep time.Time
	now       func() time.Time
}

// newIPLimiter gibt nil zurueck wenn max oder window nicht positiv sind
func newIPLimiter(max int, window time.Duration) *ipLimiter {
	if max <= 0 || window <= 0 {
		return nil
	}
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		max:      max,
		window:   window,
		every:    rate.Every(window / time.Duration(max)),
		now:      time.Now,
	}
}

// allow verbraucht ein Token fuer ip und gibt die verbleibenden zurueck
func (l *ipLimiter) allow(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.window {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > l.window {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.max)}
		l.visitors[ip] = v
	}
	v.seen = now

	ok = v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return ok, remaining
}

// middleware lehnt Requests ueber dem Limit mit 429 und msg ab
func (l *ipLimiter) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		ok, remaining := l.allow(c.ClientIP())
		c.Header("RateLimit-Limit", strconv.Itoa(l.max))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			slog.Warn("rate limit exceeded", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			writeError(c, http.StatusTooManyRequests, msg)
			c.Abort()
			return
		}
		c.Next()
	}
}
