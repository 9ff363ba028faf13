package main

import (
	"context"
	"html/template"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	abuse "github.com/CodeAndHammer/ctfconsole/internal/abuse"
	catalog "github.com/CodeAndHammer/ctfconsole/internal/catalog"
	config "github.com/CodeAndHammer/ctfconsole/internal/config"
	console "github.com/CodeAndHammer/ctfconsole/internal/console"
	constants "github.com/CodeAndHammer/ctfconsole/internal/constants"
	handlers "github.com/CodeAndHammer/ctfconsole/internal/handlers"
	metrics "github.com/CodeAndHammer/ctfconsole/internal/metrics"
	util "github.com/CodeAndHammer/ctfconsole/internal/util"
	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		util.LogFatal("Failed to load configuration: %v", err)
	}

	isProduction := settings.IsProduction()
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	util.LogInfo("Starting CTF console in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	cat := catalog.Default()
	util.LogInfo("Loaded %d challenges", cat.Len())

	tracker := abuse.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rps := settings.GlobalRateRPS
	if rps <= 0 {
		rps = 1
	}
	app := &handlers.App{
		Console:        console.New(cat, tracker),
		Metrics:        metrics.New(registry, tracker),
		FloodLimiter:   rate.NewLimiter(rate.Limit(rps), settings.GlobalRateBurst),
		IsProduction:   isProduction,
		StartTime:      time.Now(),
		StaticCacheAge: settings.StaticCacheAge,
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(handlers.RecoveryMiddleware())
	router.Use(handlers.RequestIDMiddleware())
	router.Use(handlers.SecurityHeadersMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png"}),
		ginGzip.WithExcludedPaths([]string{constants.RouteMetrics})))
	router.Use(app.CacheHeadersMiddleware())

	if err := router.SetTrustedProxies(settings.TrustedProxies); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	tplPattern := filepath.ToSlash(filepath.Join(settings.TemplateDir, "*.html"))
	master, err := template.New("").ParseGlob(tplPattern)
	if err != nil {
		util.LogFatal("Failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(master)
	router.Static("/static", settings.StaticDir)

	router.GET(constants.RouteHome, app.HomeHandler)
	router.POST(constants.RouteSubmit, app.FloodGuardMiddleware(), app.SubmitHandler)
	router.GET(constants.RouteHealthz, app.HealthzHandler)
	router.GET(constants.RouteMetrics, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startSweeper(ctx, tracker, settings)
	startServer(ctx, router, settings.Port)
}

// startSweeper bounds the tracker's memory; blocked clients are never swept.
func startSweeper(ctx context.Context, tracker *abuse.Tracker, settings config.Settings) {
	interval := settings.SweepInterval
	if interval <= 0 {
		util.LogWarn("Client sweep disabled (SWEEP_INTERVAL=%v)", interval)
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := tracker.Sweep(now, settings.ClientTTL, settings.MaxClients); removed > 0 {
					util.LogInfo("Cleaned up %d stale client states", removed)
				}
			}
		}
	}()
	util.LogInfo("Started client state sweeper every %v", interval)
}

func startServer(ctx context.Context, router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		util.LogFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
}
