package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	abuse "github.com/CodeAndHammer/ctfconsole/internal/abuse"
	catalog "github.com/CodeAndHammer/ctfconsole/internal/catalog"
	console "github.com/CodeAndHammer/ctfconsole/internal/console"
	constants "github.com/CodeAndHammer/ctfconsole/internal/constants"
	handlers "github.com/CodeAndHammer/ctfconsole/internal/handlers"
	metrics "github.com/CodeAndHammer/ctfconsole/internal/metrics"
	models "github.com/CodeAndHammer/ctfconsole/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

func testApp(t *testing.T) *handlers.App {
	t.Helper()
	tracker := abuse.New()
	return &handlers.App{
		Console:   console.New(catalog.Default(), tracker),
		Metrics:   metrics.New(prometheus.NewRegistry(), tracker),
		StartTime: time.Now(),
		Now:       func() time.Time { return time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC) },
	}
}

func testRouter(app *handlers.App) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers.RecoveryMiddleware())
	r.Use(handlers.RequestIDMiddleware())
	r.Use(handlers.SecurityHeadersMiddleware())
	r.Use(app.CacheHeadersMiddleware())
	r.POST(constants.RouteSubmit, app.FloodGuardMiddleware(), app.SubmitHandler)
	r.GET(constants.RouteHealthz, app.HealthzHandler)
	return r
}

func submit(t *testing.T, r http.Handler, remote, command string) (int, models.SubmitResponse) {
	t.Helper()
	form := url.Values{constants.CommandFormField: {command}}
	req := httptest.NewRequest(http.MethodPost, constants.RouteSubmit, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remote + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body models.SubmitResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v (%s)", err, w.Body.String())
		}
	}
	return w.Code, body
}

func TestSubmitHandlerChallenge(t *testing.T) {
	r := testRouter(testApp(t))
	code, body := submit(t, r, "192.0.2.1", "CHALLENGE base64")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body.Response, "Decode this Base64 string: Q1RGe0Jhc2U2NEZsYWd9") {
		t.Errorf("response = %q", body.Response)
	}
}

func TestSubmitHandlerBlocksByClientIP(t *testing.T) {
	app := testApp(t)
	r := testRouter(app)
	for i := 0; i < 3; i++ {
		submit(t, r, "192.0.2.2", "CHALLENGE bogus")
	}
	_, body := submit(t, r, "192.0.2.2", "HELP")
	if !strings.HasPrefix(body.Response, "Access denied for 192.0.2.2") {
		t.Errorf("response = %q", body.Response)
	}
	_, body = submit(t, r, "192.0.2.3", "HELP")
	if body.Response != "Commands:\nHELP - Show this help\nLIST - List challenges\nCHALLENGE <name> - Get challenge details\nSOLVE <challenge> <answer> - Submit answer\n" {
		t.Errorf("other client affected: %q", body.Response)
	}
	if got := testutil.ToFloat64(app.Metrics.Blocks.WithLabelValues(string(abuse.ReasonInvalidCommands))); got != 1 {
		t.Errorf("blocks_total = %v, want 1", got)
	}
}

func TestFloodGuard(t *testing.T) {
	app := testApp(t)
	app.FloodLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	r := testRouter(app)
	if code, _ := submit(t, r, "192.0.2.4", "HELP"); code != http.StatusOK {
		t.Fatalf("first request status = %d", code)
	}
	if code, _ := submit(t, r, "192.0.2.5", "HELP"); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", code)
	}
	if got := testutil.ToFloat64(app.Metrics.FloodRejected); got != 1 {
		t.Errorf("flood_rejected_total = %v", got)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	r := testRouter(testApp(t))
	req := httptest.NewRequest(http.MethodGet, constants.RouteHealthz, nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-Id") != "req-123" {
		t.Errorf("X-Request-Id = %q", w.Header().Get("X-Request-Id"))
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
	if !strings.Contains(w.Header().Get("Cache-Control"), "no-store") {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
	var health map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers.RecoveryMiddleware())
	r.GET("/boom", func(*gin.Context) { panic("template issue") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Internal Server Error: Processing issue") {
		t.Errorf("body = %s", w.Body.String())
	}
}
