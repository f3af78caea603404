package wallet

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogFilePath         string `envconfig:"LOG_FILE_PATH"`
	SentryDSN           string `envconfig:"SENTRY_DSN"`
	DefaultFeeLimitSats int64  `envconfig:"DEFAULT_FEE_LIMIT_SATS" default:"10"`
	LnurlFeeLimitSats   int64  `envconfig:"LNURL_FEE_LIMIT_SATS" default:"100"`
	DefaultInvoiceTTL   int64  `envconfig:"DEFAULT_INVOICE_TTL" default:"3600"` // seconds
	QRCodeSize          int    `envconfig:"QR_CODE_SIZE" default:"256"`
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}

	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
