package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear relevant envs
	for _, key := range []string{
		"HOST", "PORT", "LOG_LEVEL", "HANDSHAKE_TIMEOUT",
		"RELAY_POLL_INTERVAL", "RELAY_WRITE_TIMEOUT", "RELAY_MAX_MESSAGE_SIZE",
		"METRICS_ENABLED", "METRICS_PATH",
	} {
		t.Setenv(key, "")
	}

	c := Load()

	if c.Server.Host != "0.0.0.0" {
		t.Fatalf("expected default host 0.0.0.0, got %q", c.Server.Host)
	}
	if c.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", c.Server.Port)
	}
	if c.Server.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", c.Server.LogLevel)
	}
	if c.Server.HandshakeTimeout != 10*time.Second {
		t.Fatalf("expected default handshake timeout 10s, got %v", c.Server.HandshakeTimeout)
	}
	if c.Relay.PollInterval != 100*time.Millisecond {
		t.Fatalf("expected default poll interval 100ms, got %v", c.Relay.PollInterval)
	}
	if c.Relay.WriteTimeout != 0 {
		t.Fatalf("expected no default write timeout, got %v", c.Relay.WriteTimeout)
	}
	if c.Relay.MaxMessageSize != 64<<20 {
		t.Fatalf("expected default max message size 64MiB, got %d", c.Relay.MaxMessageSize)
	}
	if !c.Metrics.Enabled {
		t.Fatal("expected metrics enabled by default")
	}
	if c.Metrics.Path != "/metrics" {
		t.Fatalf("expected default metrics path /metrics, got %q", c.Metrics.Path)
	}
	if got := c.Addr(); got != "0.0.0.0:8080" {
		t.Fatalf("expected addr 0.0.0.0:8080, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HANDSHAKE_TIMEOUT", "3s")
	t.Setenv("RELAY_POLL_INTERVAL", "25ms")
	t.Setenv("RELAY_WRITE_TIMEOUT", "5s")
	t.Setenv("RELAY_MAX_MESSAGE_SIZE", "1024")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_PATH", "/stats")

	c := Load()

	if c.Addr() != "127.0.0.1:9000" {
		t.Fatalf("expected addr 127.0.0.1:9000, got %q", c.Addr())
	}
	if c.Server.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %q", c.Server.LogLevel)
	}
	if c.Server.HandshakeTimeout != 3*time.Second {
		t.Fatalf("expected handshake timeout 3s, got %v", c.Server.HandshakeTimeout)
	}
	if c.Relay.PollInterval != 25*time.Millisecond {
		t.Fatalf("expected poll interval 25ms, got %v", c.Relay.PollInterval)
	}
	if c.Relay.WriteTimeout != 5*time.Second {
		t.Fatalf("expected write timeout 5s, got %v", c.Relay.WriteTimeout)
	}
	if c.Relay.MaxMessageSize != 1024 {
		t.Fatalf("expected max message size 1024, got %d", c.Relay.MaxMessageSize)
	}
	if c.Metrics.Enabled {
		t.Fatal("expected metrics disabled")
	}
	if c.Metrics.Path != "/stats" {
		t.Fatalf("expected metrics path /stats, got %q", c.Metrics.Path)
	}
}
