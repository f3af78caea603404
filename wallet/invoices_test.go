package wallet

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/lib/responses"
	"github.com/getAlby/tapwallet/models"
	"github.com/getAlby/tapwallet/store"
	"github.com/getAlby/tapwallet/tahub"
)

func newTestService(client *tahub.MockClient) *Service {
	cfg := &Config{
		DefaultFeeLimitSats: 10,
		LnurlFeeLimitSats:   100,
		DefaultInvoiceTTL:   3600,
		QRCodeSize:          256,
	}
	return NewService(cfg, client, store.New(zerolog.Nop()), nil, zerolog.Nop())
}

func channelAsset(assetID string, capacity, localBalance, userBalance int64) models.Asset {
	return models.Asset{
		ID:      "row-" + assetID,
		AssetID: assetID,
		Name:    "USDT",
		Type:    common.AssetTypeNormal,
		ChannelInfo: &models.ChannelInfo{
			Capacity:     capacity,
			LocalBalance: localBalance,
			PeerPubkey:   "peerpubkey",
			Active:       true,
		},
		UserBalance: userBalance,
	}
}

func TestIsInvoiceAmountValid(t *testing.T) {
	svc := newTestService(&tahub.MockClient{})
	asset := channelAsset("asset1", 1000, 400, 0)

	assert.True(t, svc.IsInvoiceAmountValid(&asset, 600))
	assert.False(t, svc.IsInvoiceAmountValid(&asset, 601))
	assert.False(t, svc.IsInvoiceAmountValid(&asset, 0))
	assert.False(t, svc.IsInvoiceAmountValid(nil, 100))
}

func TestCreateInvoiceRejectsAmountOverCeiling(t *testing.T) {
	called := false
	client := &tahub.MockClient{
		CreateInvoiceFunc: func(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error) {
			called = true
			return nil, nil
		},
	}
	svc := newTestService(client)
	svc.Store.SetAssets([]models.Asset{channelAsset("asset1", 1000, 400, 0)})

	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		AssetID: "asset1",
		Amount:  601,
	})

	assert.ErrorIs(t, err, responses.ErrAmountExceedsCeiling)
	assert.False(t, called)
}

func TestCreateInvoiceSeedsPendingInvoice(t *testing.T) {
	client := &tahub.MockClient{
		CreateInvoiceFunc: func(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error) {
			return &models.CreatedInvoice{
				PaymentHash:    "hash1",
				PaymentRequest: "lnbc1...",
				AssetID:        req.AssetID,
				AssetAmount:    req.Amount,
				SatoshiAmount:  354,
				CheckingID:     "chk1",
			}, nil
		},
	}
	svc := newTestService(client)
	svc.Store.SetAssets([]models.Asset{channelAsset("asset1", 1000, 400, 0)})

	invoice, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		AssetID:     "asset1",
		Amount:      600,
		Description: "coffee",
	})
	require.NoError(t, err)

	assert.Equal(t, common.InvoiceStatusPending, invoice.Status)
	assert.Equal(t, "chk1", invoice.ID)
	require.NotNil(t, invoice.ExpiresAt)

	stored := svc.Store.Invoices()
	require.Len(t, stored, 1)
	assert.Equal(t, "hash1", stored[0].PaymentHash)
}

func TestCreateInvoiceFillsPeerPubkeyFromChannel(t *testing.T) {
	var got *models.CreateInvoiceRequest
	client := &tahub.MockClient{
		CreateInvoiceFunc: func(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error) {
			got = req
			return &models.CreatedInvoice{CheckingID: "chk1"}, nil
		},
	}
	svc := newTestService(client)
	svc.Store.SetAssets([]models.Asset{channelAsset("asset1", 1000, 400, 0)})

	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{AssetID: "asset1", Amount: 100})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "peerpubkey", got.PeerPubkey)
	assert.Equal(t, int64(3600), got.Expiry)
}

func TestInvoiceQR(t *testing.T) {
	svc := newTestService(&tahub.MockClient{})

	png, err := svc.InvoiceQR("lnbc1pvjluezsp5zyg...")
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
