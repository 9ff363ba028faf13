package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings covers the transport only; abuse thresholds are constants.
type Settings struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Env             string        `envconfig:"ENV" default:"development"`
	GinMode         string        `envconfig:"GIN_MODE" default:""`
	TrustedProxies  []string      `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
	StaticCacheAge  time.Duration `envconfig:"STATIC_CACHE_AGE" default:"5m"`
	GlobalRateRPS   int           `envconfig:"GLOBAL_RATE_RPS" default:"50"`
	GlobalRateBurst int           `envconfig:"GLOBAL_RATE_BURST" default:"100"`
	ClientTTL       time.Duration `envconfig:"CLIENT_TTL" default:"1h"`
	MaxClients      int           `envconfig:"MAX_CLIENTS" default:"50000"`
	SweepInterval   time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	TemplateDir     string        `envconfig:"TEMPLATE_DIR" default:"templates"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"static"`
}

func (s Settings) IsProduction() bool {
	return s.GinMode == "release" || s.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Settings, error) {
	_ = godotenv.Load(envFiles...)

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
