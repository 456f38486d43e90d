package config

import (
	"fmt"
	"strings"
)

// AppConfig contains HTTP server configuration
type AppConfig struct {
	Host string `env:"SHOP_APP_HOST" env-default:"localhost"`
	Port uint16 `env:"SHOP_APP_PORT" env-default:"8080"`
}

// Addr returns the host:port listen address
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// EnvConfig distinguishes production from non-production deployments.
// Verbose error logging is gated on this flag.
type EnvConfig struct {
	Env string `env:"SHOP_ENV" env-default:"development"`
}

// IsProduction reports whether the service runs in a production-like environment
func (e EnvConfig) IsProduction() bool {
	return strings.EqualFold(e.Env, "production")
}

// PolicyConfig holds the role-assignment policy inputs.
// AdminEmail empty means no signup is ever classified as ADMIN.
type PolicyConfig struct {
	AdminEmail string `env:"SHOP_ADMIN_EMAIL" env-default:""`
}

// JwtConfig holds session token configuration
type JwtConfig struct {
	Secret             string `env:"SHOP_JWT_SECRET" env-default:"very-secure-jwt-secret"`
	CookieHttpOnly     bool   `env:"SHOP_COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure       bool   `env:"SHOP_COOKIE_SECURE" env-default:"false"`
	AccessTokenMinutes int    `env:"SHOP_ACCESS_TOKEN_MINUTES" env-default:"15"`
}

// RateLimitConfig holds the per-client limits applied to anonymous auth routes
type RateLimitConfig struct {
	Capacity   int     `env:"SHOP_RATE_LIMIT_CAPACITY" env-default:"10"`
	RefillRate float64 `env:"SHOP_RATE_LIMIT_REFILL_RATE" env-default:"1"`
}
