package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr string

	// Relational mirror + event log (optional per deployment).
	MirrorEnabled bool
	DBDriver      string
	DBDSN         string

	// DefaultUser stands in when a request carries no user_id. Identity is
	// an unauthenticated free-text identifier.
	DefaultUser string

	DemoSeed bool

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:      addr,
		MirrorEnabled: envBool("MIRROR_ENABLED", false),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		DefaultUser:   envOr("DEFAULT_USER", "demo_user"),
		DemoSeed:      envBool("DEMO_SEED", true),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
