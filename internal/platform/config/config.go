package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration for the consent platform.
type Server struct {
	Addr           string
	Env            string
	APIKey         string
	PageSize       int
	Latency        time.Duration
	Throttle       int
	TrustedProxies []netip.Prefix
	LogLevel       slog.Level
}

// DevAPIKey is the fallback credential for local development.
// Production deployments must set ASSENT_API_KEY.
const DevAPIKey = "assent-dev-api-key"

// LoadDotEnv loads variables from a local .env file when present.
// Missing files are fine; the environment always wins over file values.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ASSENT_API_ADDR")
	if addr == "" {
		addr = ":8184"
	}

	env := os.Getenv("ASSENT_ENV")
	if env == "" {
		env = "dev"
	}

	apiKey := os.Getenv("ASSENT_API_KEY")
	if apiKey == "" {
		// Use a default for development - should be overridden in production
		apiKey = DevAPIKey
	}

	pageSize := 0
	if raw := os.Getenv("ASSENT_PAGE_SIZE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	var latency time.Duration
	if raw := os.Getenv("ASSENT_LATENCY"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			latency = d
		}
	}

	throttle := 0
	if raw := os.Getenv("ASSENT_THROTTLE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			throttle = n
		}
	}

	var trustedProxies []netip.Prefix
	if raw := os.Getenv("ASSENT_TRUSTED_PROXIES"); raw != "" {
		for _, cidr := range strings.Split(raw, ",") {
			if prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err == nil {
				trustedProxies = append(trustedProxies, prefix)
			}
		}
	}

	level := slog.LevelInfo
	if os.Getenv("ASSENT_DEBUG") == "true" {
		level = slog.LevelDebug
	}

	return Server{
		Addr:           addr,
		Env:            env,
		APIKey:         apiKey,
		PageSize:       pageSize,
		Latency:        latency,
		Throttle:       throttle,
		TrustedProxies: trustedProxies,
		LogLevel:       level,
	}
}
