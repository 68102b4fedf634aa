package config

import (
	"fmt"

	"github.com/JaceG/dealbreaker-backend/internal/db"
	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	MigrationsPath string
}

// DefaultServerConfig returns the server defaults used when no config.yaml or
// environment overrides are present.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000"},
		MigrationsPath: "./migrations",
	}
}

// Load reads config.yaml from configPath, falling back to defaults plus
// environment overrides (DB_* for the database section, SERVER_* for the
// server section).
func Load(configPath string) (db.Config, ServerConfig, error) {
	dbCfg := db.DefaultConfig()
	srvCfg := DefaultServerConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()

	v.SetEnvPrefix("DB")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	v.SetEnvPrefix("SERVER")
	v.BindEnv("server.port")
	v.BindEnv("server.migrations_path")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		dbCfg.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		dbCfg.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		dbCfg.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		dbCfg.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		dbCfg.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		dbCfg.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.port") {
		srvCfg.Port = v.GetInt("server.port")
	}
	if v.IsSet("server.allowed_origins") {
		srvCfg.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.migrations_path") {
		srvCfg.MigrationsPath = v.GetString("server.migrations_path")
	}

	return dbCfg, srvCfg, nil
}
