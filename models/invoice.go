package models

import (
	"time"

	"github.com/getAlby/tapwallet/common"
)

// Invoice : Taproot Asset invoice as served by the wallet backend.
type Invoice struct {
	ID             string     `json:"id"`
	PaymentHash    string     `json:"payment_hash"`
	PaymentRequest string     `json:"payment_request"`
	AssetID        string     `json:"asset_id"`
	AssetAmount    int64      `json:"asset_amount"`
	SatoshiAmount  int64      `json:"satoshi_amount"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	UserID         string     `json:"user_id,omitempty"`
	WalletID       string     `json:"wallet_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
}

func (i *Invoice) IsPaid() bool {
	return i.Status == common.InvoiceStatusPaid
}

// CreateInvoiceRequest : payload for POST /invoices.
type CreateInvoiceRequest struct {
	AssetID     string `json:"asset_id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description,omitempty"`
	Expiry      int64  `json:"expiry,omitempty" validate:"gte=0"`
	PeerPubkey  string `json:"peer_pubkey,omitempty"`
}

// CreatedInvoice : response of POST /invoices.
type CreatedInvoice struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	AssetID        string `json:"asset_id"`
	AssetAmount    int64  `json:"asset_amount"`
	SatoshiAmount  int64  `json:"satoshi_amount"`
	CheckingID     string `json:"checking_id"`
}

// ParsedInvoice : result of the server side parse of a payment string.
// IsLnurl short-circuits the bolt11 fields: an LNURL carries no amount or
// payment hash until the out of band negotiation completed.
type ParsedInvoice struct {
	IsLnurl        bool   `json:"is_lnurl"`
	PaymentRequest string `json:"payment_request,omitempty"`
	PaymentHash    string `json:"payment_hash,omitempty"`
	Amount         int64  `json:"amount"`
	AssetID        string `json:"asset_id,omitempty"`
	Description    string `json:"description,omitempty"`
	Destination    string `json:"destination,omitempty"`
	Timestamp      int64  `json:"timestamp,omitempty"`
	Expiry         int64  `json:"expiry,omitempty"`
}
