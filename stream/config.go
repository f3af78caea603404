package stream

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Base URL of the backend websocket endpoint, e.g.
	// wss://lnbits.example.com/api/v1/ws
	WebsocketURL         string        `envconfig:"TAHUB_WS_URL" required:"true"`
	ReconnectDelay       time.Duration `envconfig:"STREAM_RECONNECT_DELAY" default:"5s"`
	MaxReconnectAttempts int           `envconfig:"STREAM_MAX_RECONNECT_ATTEMPTS" default:"5"`
	PollInterval         time.Duration `envconfig:"STREAM_POLL_INTERVAL" default:"10s"`
	HandshakeTimeout     time.Duration `envconfig:"STREAM_HANDSHAKE_TIMEOUT" default:"10s"`
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}

	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
