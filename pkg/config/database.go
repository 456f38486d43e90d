package config

import "fmt"

// DatabaseConfig holds PostgreSQL database configuration
// This is shared across all services to avoid duplication
type DatabaseConfig struct {
	Host     string `env:"SHOP_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"SHOP_PG_PORT" env-default:"5432"`
	Database string `env:"SHOP_PG_DATABASE" env-default:"shop_db"`
	User     string `env:"SHOP_PG_USER" env-default:"shop"`
	Password string `env:"SHOP_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"SHOP_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToMigrateURL converts the config to a URL for the golang-migrate pgx driver
func (d DatabaseConfig) ToMigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}
