package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/observe/pkg/metrics"
)

// Config holds the property server configuration.
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// ReadBufferSize is the WebSocket read buffer size in bytes.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	WriteBufferSize int

	// SendQueueSize is the per-client buffer of pending property updates.
	// A slow client whose buffer fills up misses intermediate updates.
	SendQueueSize int

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers (default 5s).
	ReadHeaderTimeout time.Duration

	// MaxBodyBytes limits PUT request bodies (default 1 MiB).
	MaxBodyBytes int64

	// CheckOrigin validates WebSocket upgrade origins.
	// Nil uses the gorilla/websocket same-origin default.
	CheckOrigin func(r *http.Request) bool

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger

	// Metrics receives instrumentation. Nil disables recording; the
	// /metrics endpoint is served either way.
	Metrics *metrics.Collector
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		SendQueueSize:     64,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxBodyBytes:      1 << 20,
	}
}

// mergeConfig fills unset fields of config from the defaults.
func mergeConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	defaults := DefaultConfig()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if config.ReadBufferSize == 0 {
		config.ReadBufferSize = defaults.ReadBufferSize
	}
	if config.WriteBufferSize == 0 {
		config.WriteBufferSize = defaults.WriteBufferSize
	}
	if config.SendQueueSize == 0 {
		config.SendQueueSize = defaults.SendQueueSize
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.ReadHeaderTimeout == 0 {
		config.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return config
}
