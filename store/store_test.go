package store

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/models"
)

func newTestStore() *Store {
	return New(zerolog.Nop())
}

func TestUpsertInvoiceIsIdempotent(t *testing.T) {
	s := newTestStore()
	invoice := models.Invoice{
		ID:          "inv1",
		PaymentHash: "hash1",
		AssetID:     "asset1",
		AssetAmount: 10,
		Status:      common.InvoiceStatusPending,
		CreatedAt:   time.Now(),
	}

	s.UpsertInvoice(invoice)
	once := s.Invoices()

	s.UpsertInvoice(invoice)
	twice := s.Invoices()

	assert.Equal(t, once, twice)
	assert.Len(t, twice, 1)
}

func TestUpsertInvoiceUnknownIdPrependsAndMarksNew(t *testing.T) {
	s := newTestStore()
	s.UpsertInvoice(models.Invoice{ID: "old", Status: common.InvoiceStatusPending})
	s.UpsertInvoice(models.Invoice{ID: "new", Status: common.InvoiceStatusPending})

	invoices := s.Invoices()
	require.Len(t, invoices, 2)
	assert.Equal(t, "new", invoices[0].ID)

	change := s.Change("new")
	require.NotNil(t, change)
	assert.True(t, change.New)
	assert.False(t, change.StatusChanged)
}

func TestUpsertInvoiceUnchangedStatusSetsNoMarker(t *testing.T) {
	s := newTestStore()
	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPending})
	s.ClearMarkers()

	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPending, Description: "coffee"})

	assert.Nil(t, s.Change("inv1"))
	assert.Equal(t, "coffee", s.Invoices()[0].Description)
}

func TestUpsertInvoiceChangedStatusKeepsPriorValue(t *testing.T) {
	s := newTestStore()
	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPending})
	s.ClearMarkers()

	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPaid})

	change := s.Change("inv1")
	require.NotNil(t, change)
	assert.True(t, change.StatusChanged)
	assert.Equal(t, common.InvoiceStatusPending, change.PreviousStatus)
	assert.Equal(t, common.InvoiceStatusPaid, s.Invoices()[0].Status)
}

func TestUpsertInvoiceMergeKeepsOmittedFields(t *testing.T) {
	s := newTestStore()
	s.UpsertInvoice(models.Invoice{
		ID:             "inv1",
		PaymentRequest: "lnbc1...",
		AssetID:        "asset1",
		AssetAmount:    42,
		Status:         common.InvoiceStatusPending,
	})

	// a push update only carries the status change
	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPaid})

	merged := s.Invoices()[0]
	assert.Equal(t, "lnbc1...", merged.PaymentRequest)
	assert.Equal(t, int64(42), merged.AssetAmount)
	assert.Equal(t, common.InvoiceStatusPaid, merged.Status)
}

func TestUpsertPaymentSynthesizesId(t *testing.T) {
	s := newTestStore()
	s.UpsertPayment(models.Payment{AssetID: "asset1", Status: common.PaymentStatusCompleted})

	payments := s.Payments()
	require.Len(t, payments, 1)
	assert.NotEmpty(t, payments[0].ID)
}

func TestSetAssetsPreservesUserBalance(t *testing.T) {
	s := newTestStore()
	s.SetAssets([]models.Asset{{ID: "a1", AssetID: "asset1", Name: "USDT", UserBalance: 500}})

	// a balances push without the locally computed field
	s.SetAssets([]models.Asset{{ID: "a1", AssetID: "asset1", Name: "USDT"}})

	assets := s.Assets()
	require.Len(t, assets, 1)
	assert.Equal(t, int64(500), assets[0].UserBalance)
}

func TestAssetNameLookup(t *testing.T) {
	s := newTestStore()
	s.SetAssets([]models.Asset{{ID: "a1", AssetID: "asset1", Name: "USDT"}})

	name, ok := s.AssetName("asset1")
	assert.True(t, ok)
	assert.Equal(t, "USDT", name)

	_, ok = s.AssetName("unknown")
	assert.False(t, ok)
}

func TestCombinedTransactionsSortedByRecency(t *testing.T) {
	s := newTestStore()
	now := time.Now()
	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPending, CreatedAt: now.Add(-time.Hour)})
	s.UpsertPayment(models.Payment{ID: "pay1", Status: common.PaymentStatusCompleted, CreatedAt: now})

	txs := s.CombinedTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, "pay1", txs[0].ID)
	assert.Equal(t, common.TransactionDirectionOutgoing, txs[0].Direction)
	assert.Equal(t, "inv1", txs[1].ID)
	assert.Equal(t, common.TransactionDirectionIncoming, txs[1].Direction)
}

func TestFilteredTransactionsConjunction(t *testing.T) {
	s := newTestStore()
	day := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s.UpsertInvoice(models.Invoice{ID: "inv1", Description: "Coffee beans", Status: common.InvoiceStatusPaid, CreatedAt: day})
	s.UpsertInvoice(models.Invoice{ID: "inv2", Description: "coffee maker", Status: common.InvoiceStatusPaid, CreatedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)})
	s.UpsertPayment(models.Payment{ID: "pay1", Description: "coffee refund", Status: common.PaymentStatusCompleted, CreatedAt: day})
	s.UpsertInvoice(models.Invoice{ID: "inv3", Description: "tea", Status: common.InvoiceStatusPaid, CreatedAt: day})

	txs := s.FilteredTransactions(models.TransactionFilter{
		Direction:  common.TransactionDirectionIncoming,
		SearchText: "coffee",
		From:       "2024-01-01",
		To:         "2024-01-31",
	})
	require.Len(t, txs, 1)
	assert.Equal(t, "inv1", txs[0].ID)
}

func TestFilteredTransactionsEmptyFilterIsIdentity(t *testing.T) {
	s := newTestStore()
	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPending})
	s.UpsertPayment(models.Payment{ID: "pay1", Status: common.PaymentStatusCompleted})

	assert.Equal(t, s.CombinedTransactions(), s.FilteredTransactions(models.TransactionFilter{}))
}

func TestSubscribePublishesUpserts(t *testing.T) {
	s := newTestStore()
	events := make(chan Event, 4)
	id := s.Subscribe(events)
	defer s.Unsubscribe(id)

	s.UpsertInvoice(models.Invoice{ID: "inv1", Status: common.InvoiceStatusPending})

	select {
	case event := <-events:
		assert.Equal(t, "invoices", event.Kind)
		assert.Equal(t, "inv1", event.ID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestApplyBalancesUpdatesEveryChannelEntry(t *testing.T) {
	s := newTestStore()
	s.SetAssets([]models.Asset{
		{ID: "row1", AssetID: "asset1", Name: "beans", UserBalance: 5},
		{ID: "row2", AssetID: "asset1", Name: "beans"},
		{ID: "row3", AssetID: "asset2", Name: "tea"},
	})

	s.ApplyBalances([]models.AssetBalance{
		{AssetID: "asset1", Balance: 42},
	})

	assets := s.Assets()
	require.Len(t, assets, 3)
	assert.Equal(t, int64(42), assets[0].UserBalance)
	assert.Equal(t, int64(42), assets[1].UserBalance)
	assert.Equal(t, int64(0), assets[2].UserBalance)
}
