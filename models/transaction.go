package models

import (
	"strings"
	"time"

	"github.com/getAlby/tapwallet/common"
)

// ChangeDescriptor records what a store merge did to an entity. It is
// presentation metadata for one UI cycle: never serialized, never part of
// entity equality.
type ChangeDescriptor struct {
	New            bool
	StatusChanged  bool
	PreviousStatus string
}

// Transaction : read-only projection joining invoices (incoming) and
// payments (outgoing) into one recency-sorted sequence.
type Transaction struct {
	ID          string            `json:"id"`
	Direction   string            `json:"direction"`
	PaymentHash string            `json:"payment_hash"`
	AssetID     string            `json:"asset_id"`
	AssetAmount int64             `json:"asset_amount"`
	FeeSats     int64             `json:"fee_sats,omitempty"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Internal    bool              `json:"internal,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Change      *ChangeDescriptor `json:"-"`
}

// FromInvoice builds the incoming projection of an invoice.
func FromInvoice(inv Invoice) Transaction {
	return Transaction{
		ID:          inv.ID,
		Direction:   common.TransactionDirectionIncoming,
		PaymentHash: inv.PaymentHash,
		AssetID:     inv.AssetID,
		AssetAmount: inv.AssetAmount,
		Description: inv.Description,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt,
	}
}

// FromPayment builds the outgoing projection of a payment.
func FromPayment(p Payment) Transaction {
	return Transaction{
		ID:          p.ID,
		Direction:   common.TransactionDirectionOutgoing,
		PaymentHash: p.PaymentHash,
		AssetID:     p.AssetID,
		AssetAmount: p.AssetAmount,
		FeeSats:     p.FeeSats,
		Description: p.Description,
		Status:      p.Status,
		Internal:    p.Internal,
		CreatedAt:   p.CreatedAt,
	}
}

// TransactionFilter : conjunction of optional transaction criteria.
// Zero value matches everything. From/To are inclusive calendar days in
// "2006-01-02" form, compared in UTC.
type TransactionFilter struct {
	Direction  string `json:"direction,omitempty"`
	Status     string `json:"status,omitempty"`
	SearchText string `json:"search_text,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
}

func (f TransactionFilter) IsZero() bool {
	return f == TransactionFilter{}
}

// Matches reports whether tx satisfies every active criterion.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Direction != "" && tx.Direction != f.Direction {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.SearchText != "" {
		needle := strings.ToLower(f.SearchText)
		if !strings.Contains(strings.ToLower(tx.Description), needle) &&
			!strings.Contains(strings.ToLower(tx.PaymentHash), needle) {
			return false
		}
	}
	if f.From != "" {
		from, err := time.ParseInLocation("2006-01-02", f.From, time.UTC)
		if err != nil || tx.CreatedAt.Before(from) {
			return false
		}
	}
	if f.To != "" {
		to, err := time.ParseInLocation("2006-01-02", f.To, time.UTC)
		if err != nil || !tx.CreatedAt.Before(to.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}
