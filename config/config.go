// Package config resolves server configuration from CLI arguments,
// environment variables, and an optional .env file, in that order of
// precedence (CLI wins, per spec.md §6).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     int
	Bind     string
	LogLevel string

	MaxClients int
	MaxRooms   int

	PingInterval   time.Duration
	PongTimeout    time.Duration
	MaxMissedPongs int
	LongDisconnect time.Duration

	// MaxViolations is threaded through rather than hard-coded so tests
	// can tolerate a malformed frame or two; spec.md §9 requires the
	// shipped default to stay at 1.
	MaxViolations int
}

const (
	DefaultPort = 12345
	DefaultBind = "0.0.0.0"
)

// Default returns the documented defaults (spec.md §1, §4.6, §9),
// before the port/bind overrides of LoadFromArgs are applied. The log
// level is the one exception: CHECKERS_LOG_LEVEL is read here.
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		Bind:           DefaultBind,
		LogLevel:       envStr("CHECKERS_LOG_LEVEL", "info"),
		MaxClients:     100,
		MaxRooms:       50,
		PingInterval:   5 * time.Second,
		PongTimeout:    3 * time.Second,
		MaxMissedPongs: 3,
		LongDisconnect: 80 * time.Second,
		MaxViolations:  1,
	}
}

// LoadFromArgs applies `.env`, then environment, then CLI argument
// overrides for port/bind address, matching spec.md §6's
// "server [port] [bind_address]" contract. A zero-length args slice
// (no arguments past the program name) keeps the defaults.
//
// Returns (cfg, showHelp). showHelp is true when -h/--help was passed;
// callers should print usage and exit 0 without starting the server.
func LoadFromArgs(args []string) (*Config, bool) {
	_ = godotenv.Load() // optional; missing .env is not an error

	cfg := Default()
	cfg.Port = envInt("CHECKERS_PORT", cfg.Port)
	cfg.Bind = envStr("CHECKERS_BIND", cfg.Bind)

	for _, a := range args {
		if a == "-h" || a == "--help" {
			return cfg, true
		}
	}

	if len(args) >= 1 {
		if p, err := strconv.Atoi(args[0]); err == nil && p >= 1 && p <= 65535 {
			cfg.Port = p
		} else {
			cfg.Port = DefaultPort
		}
	}
	if len(args) >= 2 && args[1] != "" {
		cfg.Bind = args[1]
	}

	return cfg, false
}

// Usage is printed for -h/--help.
func Usage() string {
	return fmt.Sprintf("Usage: server [port] [bind_address]\n\n"+
		"  port          TCP port to listen on (1-65535, default %d)\n"+
		"  bind_address  Address to bind to (default %s)\n",
		DefaultPort, DefaultBind)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
