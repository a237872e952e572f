// Package config loads relay settings from the environment.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server, relay and metrics settings.
type Config struct {
	Server struct {
		Host             string
		Port             string
		LogLevel         string
		HandshakeTimeout time.Duration
	}
	Relay struct {
		PollInterval   time.Duration
		WriteTimeout   time.Duration
		MaxMessageSize int64
	}
	Metrics struct {
		Enabled bool
		Path    string
	}
}

// Addr returns the listen address built from host and port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// Load reads the configuration from the environment, falling back to defaults.
func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.handshake_timeout", "10s")

	v.SetDefault("relay.poll_interval", "100ms")
	v.SetDefault("relay.write_timeout", "0s")
	v.SetDefault("relay.max_message_size", 64<<20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Map envs
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")
	v.BindEnv("server.handshake_timeout", "HANDSHAKE_TIMEOUT")

	v.BindEnv("relay.poll_interval", "RELAY_POLL_INTERVAL")
	v.BindEnv("relay.write_timeout", "RELAY_WRITE_TIMEOUT")
	v.BindEnv("relay.max_message_size", "RELAY_MAX_MESSAGE_SIZE")

	v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	v.BindEnv("metrics.path", "METRICS_PATH")

	var c Config
	c.Server.Host = v.GetString("server.host")
	c.Server.Port = toString(v.Get("server.port"))
	c.Server.LogLevel = v.GetString("server.log_level")
	c.Server.HandshakeTimeout = v.GetDuration("server.handshake_timeout")

	c.Relay.PollInterval = v.GetDuration("relay.poll_interval")
	c.Relay.WriteTimeout = v.GetDuration("relay.write_timeout")
	c.Relay.MaxMessageSize = v.GetInt64("relay.max_message_size")

	c.Metrics.Enabled = v.GetBool("metrics.enabled")
	c.Metrics.Path = v.GetString("metrics.path")

	return c
}

func toString(v any) string { return fmt.Sprint(v) }
