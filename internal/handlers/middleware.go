package handlers

import (
	"context"
	"net/http"
	"strings"

	constants "github.com/CodeAndHammer/ctfconsole/internal/constants"
	util "github.com/CodeAndHammer/ctfconsole/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
)

const csp = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; object-src 'none'; base-uri 'self'; form-action 'self'; frame-ancestors 'none';"

func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", csp)
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}
		c.Next()
	}
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), constants.RequestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

// FloodGuardMiddleware applies one token bucket shared by every client. It
// sits in front of the per-client tracker and never blocks anyone.
func (app *App) FloodGuardMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.FloodLimiter != nil && !app.FloodLimiter.Allow() {
			if app.Metrics != nil {
				app.Metrics.FloodRejected.Inc()
			}
			util.LogWarn("%sFlood guard rejected request from %s", util.RequestTag(c.Request.Context()), c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

// RecoveryMiddleware turns a panic below it into the generic 500 payload.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		util.LogError("%sError in %s: %v", util.RequestTag(c.Request.Context()), c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error: Processing issue"})
	})
}

func (app *App) CacheHeadersMiddleware() gin.HandlerFunc {
	noStore := cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})
	static := cachecontrol.New(cachecontrol.Config{
		Public: true,
		MaxAge: cachecontrol.Duration(app.StaticCacheAge),
	})
	return func(c *gin.Context) {
		if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Header("Vary", "Accept-Encoding")
			static(c)
			return
		}
		noStore(c)
	}
}
