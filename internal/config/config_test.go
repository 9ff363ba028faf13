package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	config "github.com/CodeAndHammer/ctfconsole/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	s, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != "8080" || s.GlobalRateRPS != 50 || s.ClientTTL != time.Hour {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if !slices.Equal(s.TrustedProxies, []string{"127.0.0.1"}) {
		t.Errorf("TrustedProxies = %v", s.TrustedProxies)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("SWEEP_INTERVAL=30s\nPORT=1111\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SWEEP_INTERVAL") })

	s, err := config.Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != "9090" {
		t.Errorf("process env should win over .env, Port = %q", s.Port)
	}
	if s.SweepInterval != 30*time.Second {
		t.Errorf("SweepInterval = %v", s.SweepInterval)
	}
	if len(s.TrustedProxies) != 2 {
		t.Errorf("TrustedProxies = %v", s.TrustedProxies)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GLOBAL_RATE_RPS", "lots")
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected an error for a non-numeric GLOBAL_RATE_RPS")
	}
}

func TestIsProduction(t *testing.T) {
	if (config.Settings{Env: "production"}).IsProduction() != true {
		t.Error("ENV=production should be production")
	}
	if (config.Settings{GinMode: "release"}).IsProduction() != true {
		t.Error("GIN_MODE=release should be production")
	}
	if (config.Settings{}).IsProduction() {
		t.Error("zero settings should be development")
	}
}
