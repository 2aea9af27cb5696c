package config

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"github.com/datalens/catalogd/internal/db"
)

// Server holds the HTTP server settings.
type Server struct {
	Addr           string
	AllowedOrigins []string
	ViewIdleTTL    time.Duration
	MigrationsPath string
}

// Config is the full service configuration.
type Config struct {
	Server   Server
	Database db.Config
}

// DefaultServer returns the default HTTP server settings.
func DefaultServer() Server {
	return Server{
		Addr:           ":8080",
		AllowedOrigins: []string{"http://localhost:3000"},
		ViewIdleTTL:    30 * time.Minute,
		MigrationsPath: "./migrations",
	}
}

// Load reads config.yaml from the given path, with environment overrides
// (CATALOGD_DATABASE_HOST and so on). A missing file is not an error; the
// defaults plus environment apply.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Server:   DefaultServer(),
		Database: db.DefaultConfig(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("CATALOGD")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")

	if err := v.ReadInConfig(); err != nil {
		log.Println("[CONFIG] no config.yaml found, using defaults and env vars")
	} else {
		log.Println("[CONFIG] loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.view_idle_ttl") {
		cfg.Server.ViewIdleTTL = v.GetDuration("server.view_idle_ttl")
	}
	if v.IsSet("server.migrations_path") {
		cfg.Server.MigrationsPath = v.GetString("server.migrations_path")
	}

	return cfg, nil
}
