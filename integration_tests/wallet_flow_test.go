package integration_tests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/models"
	"github.com/getAlby/tapwallet/store"
	"github.com/getAlby/tapwallet/stream"
	"github.com/getAlby/tapwallet/tahub"
	"github.com/getAlby/tapwallet/wallet"
)

const testUserID = "user-e2e"

func channelAssets() []models.Asset {
	return []models.Asset{
		{
			ID:          "asset-entry-1",
			Name:        "beans",
			AssetID:     "beanshash",
			Type:        common.AssetTypeNormal,
			UserBalance: 400,
			ChannelInfo: &models.ChannelInfo{
				ChannelPoint:  "abc123:0",
				Capacity:      1000,
				LocalBalance:  400,
				RemoteBalance: 600,
				PeerPubkey:    "peerpubkey1",
				ChannelID:     "12345",
				Active:        true,
			},
		},
	}
}

type fixture struct {
	backend *MockBackend
	store   *store.Store
	manager *stream.Manager
	service *wallet.Service
}

func setup(t *testing.T) *fixture {
	backend := NewMockBackend(channelAssets())

	logger := zerolog.Nop()
	client := tahub.NewClient(tahub.ClientOptions{
		BackendURL: backend.RestURL(),
		APIKey:     "test-key",
	}, logger)

	st := store.New(logger)
	manager := stream.NewManager(&stream.Config{
		WebsocketURL:         backend.WebsocketURL(),
		ReconnectDelay:       50 * time.Millisecond,
		MaxReconnectAttempts: 2,
		PollInterval:         50 * time.Millisecond,
		HandshakeTimeout:     2 * time.Second,
	}, client, st, testUserID, logger)

	service := wallet.NewService(&wallet.Config{
		DefaultFeeLimitSats: 10,
		LnurlFeeLimitSats:   100,
		DefaultInvoiceTTL:   3600,
		QRCodeSize:          256,
	}, client, st, manager, logger)

	t.Cleanup(func() {
		manager.Close()
		backend.Close()
	})
	return &fixture{backend: backend, store: st, manager: manager, service: service}
}

func TestInvoiceLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.manager.Refresh(ctx)
	require.Len(t, f.store.Assets(), 1)

	f.manager.Connect(ctx)
	require.Eventually(t, func() bool {
		return f.manager.Status().Connected()
	}, 2*time.Second, 10*time.Millisecond)

	invoice, err := f.service.CreateInvoice(ctx, &models.CreateInvoiceRequest{
		AssetID:     "beanshash",
		Amount:      600,
		Description: "a latte",
	})
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusPending, invoice.Status)
	require.NotEmpty(t, invoice.PaymentHash)

	change := f.store.Change(invoice.ID)
	require.NotNil(t, change)
	assert.True(t, change.New)
	f.store.ClearMarkers()

	paid := f.backend.MarkInvoicePaid(invoice.PaymentHash)
	require.NotNil(t, paid)
	data, err := json.Marshal(paid)
	require.NoError(t, err)
	f.backend.Push(common.ChannelKindInvoices, testUserID, stream.Envelope{
		Type: common.UpdateTypeInvoice,
		Data: data,
	})

	require.Eventually(t, func() bool {
		for _, inv := range f.store.Invoices() {
			if inv.PaymentHash == invoice.PaymentHash && inv.IsPaid() {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	change = f.store.Change(invoice.ID)
	require.NotNil(t, change)
	assert.True(t, change.StatusChanged)
	assert.Equal(t, common.InvoiceStatusPending, change.PreviousStatus)
}

func TestPayFlowThroughBackend(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.manager.Refresh(ctx)

	result, err := f.service.Pay(ctx, wallet.PayRequest{
		PaymentRequest: "lnbc-someone-elses-invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, common.PayStatusSuccess, result.Status)
	assert.False(t, result.InternalPayment)

	payments := f.store.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t, common.PaymentStatusCompleted, payments[0].Status)
	assert.Equal(t, "lnbc-someone-elses-invoice", payments[0].PaymentRequest)
}

func TestInternalPaymentFallback(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.manager.Refresh(ctx)

	f.backend.PayHandler = func(req *models.PayInvoiceRequest) *models.PayResult {
		return &models.PayResult{
			Status: common.PayStatusFailed,
			Error:  "this invoice belongs to a user on this node",
		}
	}

	result, err := f.service.Pay(ctx, wallet.PayRequest{
		PaymentRequest: "lnbc-own-invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, common.PayStatusSuccess, result.Status)
	assert.True(t, result.InternalPayment)

	payments := f.store.Payments()
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Internal)
}

func TestReconnectFallsBackToPollingAgainstRealBackend(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.manager.Connect(ctx)
	require.Eventually(t, func() bool {
		return f.manager.Status().Connected()
	}, 2*time.Second, 10*time.Millisecond)

	// drop the backend entirely so every retry fails
	f.backend.Close()

	require.Eventually(t, func() bool {
		return f.manager.Status().Polling
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 2, f.manager.Status().ReconnectAttempts)
}
