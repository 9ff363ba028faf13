package handlers

import (
	"net/http"
	"runtime"
	"time"

	console "github.com/CodeAndHammer/ctfconsole/internal/console"
	constants "github.com/CodeAndHammer/ctfconsole/internal/constants"
	metrics "github.com/CodeAndHammer/ctfconsole/internal/metrics"
	models "github.com/CodeAndHammer/ctfconsole/internal/models"
	util "github.com/CodeAndHammer/ctfconsole/internal/util"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type App struct {
	Console        *console.Service
	Metrics        *metrics.Metrics
	FloodLimiter   *rate.Limiter
	IsProduction   bool
	StartTime      time.Time
	StaticCacheAge time.Duration
	Now            func() time.Time
}

func (app *App) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}

func (app *App) HomeHandler(c *gin.Context) {
	util.LogInfo("%sConnection to / from %s", util.RequestTag(c.Request.Context()), c.ClientIP())
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "CTF Challenge Console",
	})
}

func (app *App) SubmitHandler(c *gin.Context) {
	ctx := c.Request.Context()
	clientID := c.ClientIP()
	command := c.PostForm(constants.CommandFormField)
	util.LogInfo("%sSubmit request from %s", util.RequestTag(ctx), clientID)

	reply := app.Console.Submit(clientID, command, app.now())

	if app.Metrics != nil {
		app.Metrics.Commands.WithLabelValues(string(reply.Outcome)).Inc()
		if reply.Blocked && reply.Outcome != console.OutcomeBlocked {
			app.Metrics.Blocks.WithLabelValues(string(reply.Reason)).Inc()
		}
	}
	if reply.Blocked {
		util.LogWarn("%s%s outcome=%s reason=%s", util.RequestTag(ctx), clientID, reply.Outcome, reply.Reason)
	}

	c.JSON(http.StatusOK, models.SubmitResponse{Response: reply.Response})
}

func (app *App) HealthzHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := app.Console.Tracker().Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"tracked_clients": stats.TrackedClients,
		"blocked_clients": stats.BlockedClients,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(time.Since(app.StartTime)),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
