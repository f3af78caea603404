package tahub

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Base URL of the wallet backend API, e.g.
	// https://lnbits.example.com/taproot_assets/api/v1/taproot
	BackendURL  string `envconfig:"TAHUB_BACKEND_URL" required:"true"`
	APIKey      string `envconfig:"TAHUB_API_KEY" required:"true"`
	UserID      string `envconfig:"TAHUB_USER_ID" required:"true"`
	HTTPTimeout int    `envconfig:"TAHUB_HTTP_TIMEOUT" default:"40"` // seconds
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}

	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
