package models

import (
	"time"

	"github.com/getAlby/tapwallet/common"
)

// Payment : outgoing Taproot Asset payment.
// ID is the payment hash when one is known, otherwise a synthesized id
// assigned by the store on first sight.
type Payment struct {
	ID             string    `json:"id"`
	PaymentHash    string    `json:"payment_hash"`
	PaymentRequest string    `json:"payment_request,omitempty"`
	AssetID        string    `json:"asset_id"`
	AssetAmount    int64     `json:"asset_amount"`
	FeeSats        int64     `json:"fee_sats"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	UserID         string    `json:"user_id,omitempty"`
	WalletID       string    `json:"wallet_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Preimage       string    `json:"preimage,omitempty"`
	Internal       bool      `json:"internal,omitempty"`
}

func (p *Payment) IsCompleted() bool {
	return p.Status == common.PaymentStatusCompleted
}

// PayInvoiceRequest : payload for POST /pay.
type PayInvoiceRequest struct {
	PaymentRequest string `json:"payment_request" validate:"required"`
	FeeLimitSats   int64  `json:"fee_limit_sats,omitempty" validate:"gte=0"`
	AssetID        string `json:"asset_id,omitempty"`
	PeerPubkey     string `json:"peer_pubkey,omitempty"`
}

// PayResult : response of POST /pay and POST /lnurl/pay.
type PayResult struct {
	Status          string `json:"status"`
	PaymentHash     string `json:"payment_hash"`
	AssetID         string `json:"asset_id,omitempty"`
	AssetAmount     int64  `json:"asset_amount"`
	FeeMsat         int64  `json:"fee_msat,omitempty"`
	Preimage        string `json:"preimage,omitempty"`
	Description     string `json:"description,omitempty"`
	InternalPayment bool   `json:"internal_payment,omitempty"`
	Error           string `json:"error,omitempty"`
}

func (r *PayResult) Failed() bool {
	return r.Status == common.PayStatusFailed
}
