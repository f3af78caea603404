package store

import (
	"sort"
	"sync"

	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog"

	"github.com/getAlby/tapwallet/models"
)

// Store is the in-memory reconciliation point for everything the client
// knows. Push messages and REST responses both land here through idempotent
// id-keyed upserts; reads derive projections from current state. A restart
// discards all state and a fresh full fetch rebuilds it.
type Store struct {
	mu       sync.RWMutex
	assets   []models.Asset
	invoices []models.Invoice
	payments []models.Payment
	changes  map[string]*models.ChangeDescriptor

	pubsub *Pubsub
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Store {
	return &Store{
		changes: make(map[string]*models.ChangeDescriptor),
		pubsub:  NewPubsub(),
		logger:  logger,
	}
}

func (s *Store) Subscribe(ch chan Event) string {
	return s.pubsub.Subscribe(ch)
}

func (s *Store) Unsubscribe(id string) {
	s.pubsub.Unsubscribe(id)
}

// SetAssets replaces the asset list with the incoming one, merging per-entry
// fields the update omits. A locally known user balance survives an update
// that carries none.
func (s *Store) SetAssets(incoming []models.Asset) {
	s.mu.Lock()
	existing := make(map[string]models.Asset, len(s.assets))
	for _, a := range s.assets {
		existing[assetKey(a)] = a
	}
	merged := make([]models.Asset, 0, len(incoming))
	for _, in := range incoming {
		if prev, ok := existing[assetKey(in)]; ok {
			if in.Name == "" {
				in.Name = prev.Name
			}
			if in.Type == "" {
				in.Type = prev.Type
			}
			if in.UserBalance == 0 {
				in.UserBalance = prev.UserBalance
			}
			if in.ChannelInfo == nil {
				in.ChannelInfo = prev.ChannelInfo
			}
		}
		merged = append(merged, in)
	}
	s.assets = merged
	s.mu.Unlock()

	s.pubsub.Publish(Event{Kind: "assets"})
}

// ApplyBalances folds per-wallet balance rows into the asset list. Every
// channel entry of an asset carries the same user balance.
func (s *Store) ApplyBalances(balances []models.AssetBalance) {
	if len(balances) == 0 {
		return
	}
	byAsset := make(map[string]int64, len(balances))
	for _, b := range balances {
		byAsset[b.AssetID] = b.Balance
	}

	s.mu.Lock()
	for i := range s.assets {
		if balance, ok := byAsset[s.assets[i].AssetID]; ok {
			s.assets[i].UserBalance = balance
		}
	}
	s.mu.Unlock()

	s.pubsub.Publish(Event{Kind: "assets"})
}

func (s *Store) Assets() []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// AssetName resolves an asset id to its display name from the current asset
// list. Refresh happens through SetAssets; there is no hidden global cache.
func (s *Store) AssetName(assetID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if a.AssetID == assetID && a.Name != "" {
			return a.Name, true
		}
	}
	return "", false
}

// UpsertInvoice merges an incoming invoice into the collection by id.
// A new id is prepended and marked new; a known id is shallow-merged, and a
// status transition stashes the prior status in the change descriptor.
func (s *Store) UpsertInvoice(in models.Invoice) {
	if in.ID == "" {
		in.ID = in.PaymentHash
	}
	if in.ID == "" {
		s.logger.Warn().Msg("dropping invoice update without id or payment hash")
		return
	}

	s.mu.Lock()
	idx := -1
	for i := range s.invoices {
		if s.invoices[i].ID == in.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.invoices = append([]models.Invoice{in}, s.invoices...)
		s.changes[in.ID] = &models.ChangeDescriptor{New: true}
	} else {
		prev := s.invoices[idx]
		s.invoices[idx] = mergeInvoice(prev, in)
		if in.Status != "" && in.Status != prev.Status {
			s.changes[in.ID] = &models.ChangeDescriptor{
				StatusChanged:  true,
				PreviousStatus: prev.Status,
			}
		}
	}
	s.mu.Unlock()

	s.pubsub.Publish(Event{Kind: "invoices", ID: in.ID})
}

// UpsertPayment merges an incoming payment by id, synthesizing an id from
// the payment hash or a random token when the backend sent none.
func (s *Store) UpsertPayment(in models.Payment) {
	if in.ID == "" {
		in.ID = in.PaymentHash
	}
	if in.ID == "" {
		in.ID = random.String(16, random.Hex)
	}

	s.mu.Lock()
	idx := -1
	for i := range s.payments {
		if s.payments[i].ID == in.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.payments = append([]models.Payment{in}, s.payments...)
		s.changes[in.ID] = &models.ChangeDescriptor{New: true}
	} else {
		prev := s.payments[idx]
		s.payments[idx] = mergePayment(prev, in)
		if in.Status != "" && in.Status != prev.Status {
			s.changes[in.ID] = &models.ChangeDescriptor{
				StatusChanged:  true,
				PreviousStatus: prev.Status,
			}
		}
	}
	s.mu.Unlock()

	s.pubsub.Publish(Event{Kind: "payments", ID: in.ID})
}

// SetInvoices reconciles a full REST response: every entry is upserted, so
// push-delivered state the poll response does not know about survives.
func (s *Store) SetInvoices(invoices []models.Invoice) {
	for _, inv := range invoices {
		s.UpsertInvoice(inv)
	}
}

func (s *Store) SetPayments(payments []models.Payment) {
	for _, p := range payments {
		s.UpsertPayment(p)
	}
}

func (s *Store) Invoices() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, len(s.invoices))
	copy(out, s.invoices)
	return out
}

func (s *Store) Payments() []models.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Payment, len(s.payments))
	copy(out, s.payments)
	return out
}

// Change returns the pending change descriptor for an entity id, if any.
func (s *Store) Change(id string) *models.ChangeDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changes[id]
}

// ClearMarkers retires all change descriptors. The presentation layer calls
// this once it has rendered the transition cues.
func (s *Store) ClearMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = make(map[string]*models.ChangeDescriptor)
}

// CombinedTransactions projects invoices and payments into one sequence
// sorted newest first, annotated with any pending change descriptors.
func (s *Store) CombinedTransactions() []models.Transaction {
	s.mu.RLock()
	txs := make([]models.Transaction, 0, len(s.invoices)+len(s.payments))
	for _, inv := range s.invoices {
		tx := models.FromInvoice(inv)
		tx.Change = s.changes[inv.ID]
		txs = append(txs, tx)
	}
	for _, p := range s.payments {
		tx := models.FromPayment(p)
		tx.Change = s.changes[p.ID]
		txs = append(txs, tx)
	}
	s.mu.RUnlock()

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs
}

// FilteredTransactions applies the filter conjunction to the combined view.
// A zero filter is the identity.
func (s *Store) FilteredTransactions(filter models.TransactionFilter) []models.Transaction {
	txs := s.CombinedTransactions()
	if filter.IsZero() {
		return txs
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func assetKey(a models.Asset) string {
	if a.ID != "" {
		return a.ID
	}
	key := a.AssetID
	if a.ChannelInfo != nil {
		key += "/" + a.ChannelInfo.ChannelPoint
	}
	return key
}

func mergeInvoice(prev, in models.Invoice) models.Invoice {
	out := prev
	if in.PaymentHash != "" {
		out.PaymentHash = in.PaymentHash
	}
	if in.PaymentRequest != "" {
		out.PaymentRequest = in.PaymentRequest
	}
	if in.AssetID != "" {
		out.AssetID = in.AssetID
	}
	if in.AssetAmount != 0 {
		out.AssetAmount = in.AssetAmount
	}
	if in.SatoshiAmount != 0 {
		out.SatoshiAmount = in.SatoshiAmount
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.Status != "" {
		out.Status = in.Status
	}
	if in.UserID != "" {
		out.UserID = in.UserID
	}
	if in.WalletID != "" {
		out.WalletID = in.WalletID
	}
	if !in.CreatedAt.IsZero() {
		out.CreatedAt = in.CreatedAt
	}
	if in.ExpiresAt != nil {
		out.ExpiresAt = in.ExpiresAt
	}
	if in.PaidAt != nil {
		out.PaidAt = in.PaidAt
	}
	return out
}

func mergePayment(prev, in models.Payment) models.Payment {
	out := prev
	if in.PaymentHash != "" {
		out.PaymentHash = in.PaymentHash
	}
	if in.PaymentRequest != "" {
		out.PaymentRequest = in.PaymentRequest
	}
	if in.AssetID != "" {
		out.AssetID = in.AssetID
	}
	if in.AssetAmount != 0 {
		out.AssetAmount = in.AssetAmount
	}
	if in.FeeSats != 0 {
		out.FeeSats = in.FeeSats
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.Status != "" {
		out.Status = in.Status
	}
	if in.UserID != "" {
		out.UserID = in.UserID
	}
	if in.WalletID != "" {
		out.WalletID = in.WalletID
	}
	if !in.CreatedAt.IsZero() {
		out.CreatedAt = in.CreatedAt
	}
	if in.Preimage != "" {
		out.Preimage = in.Preimage
	}
	if in.Internal {
		out.Internal = true
	}
	return out
}
