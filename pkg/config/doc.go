// Package config loads typed application configuration from environment
// variables, wrapping github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing.
//
// Each configuration type is parsed at most once per process; later calls
// for the same type return the cached copy, so independent components can
// load their own config structs without re-reading the environment.
//
//	type ServerConfig struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
//
// LoadEnv reads one or more .env files before parsing; without it, Load
// falls back to a best-effort read of ./.env on first use. ResetCache
// clears cached values, which tests use between cases.
package config
