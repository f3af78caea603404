package tahub

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/getAlby/tapwallet/models"
)

// TahubClientWrapper is the REST surface of the Taproot Assets wallet
// backend. No retries happen at this layer; reconnect and polling cadence
// are owned by the stream manager.
type TahubClientWrapper interface {
	ListAssets(ctx context.Context) ([]models.Asset, error)
	AssetBalances(ctx context.Context) ([]models.AssetBalance, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	UpdateInvoiceStatus(ctx context.Context, id, status string) (*models.Invoice, error)
	ParseInvoice(ctx context.Context, paymentRequest string) (*models.ParsedInvoice, error)
	CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error)
	PayInvoice(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error)
	PayInternal(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error)
	AssetRate(ctx context.Context, assetID string, amount int64) (*models.AssetRate, error)
	LnurlInfo(ctx context.Context, lnurl string) (*models.LnurlInfo, error)
	LnurlPay(ctx context.Context, req *models.LnurlPayRequest) (*models.PayResult, error)
}

// InitClient builds the REST client and verifies the credentials with one
// asset list call.
func InitClient(c *Config, logger zerolog.Logger, ctx context.Context) (TahubClientWrapper, error) {
	client := NewClient(ClientOptions{
		BackendURL:  c.BackendURL,
		APIKey:      c.APIKey,
		HTTPTimeout: c.HTTPTimeout,
	}, logger)

	assets, err := client.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("assets", len(assets)).Msg("connected to wallet backend")

	return client, nil
}
