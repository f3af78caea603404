package models

import "time"

// ChannelInfo : Lightning channel metadata associated with an asset.
// PeerPubkey is needed when creating an invoice against a specific channel.
type ChannelInfo struct {
	ChannelPoint  string `json:"channel_point"`
	Capacity      int64  `json:"capacity"`
	LocalBalance  int64  `json:"local_balance"`
	RemoteBalance int64  `json:"remote_balance"`
	PeerPubkey    string `json:"peer_pubkey"`
	ChannelID     string `json:"channel_id"`
	Active        bool   `json:"active"`
}

// Asset : Taproot Asset Model
//
// `AssetID` is not unique across entries! Assets held over several channels
// appear once per channel, each carrying its own ChannelInfo.
type Asset struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AssetID      string       `json:"asset_id"`
	Type         string       `json:"type"`
	Amount       string       `json:"amount"`
	GenesisPoint string       `json:"genesis_point,omitempty"`
	MetaHash     string       `json:"meta_hash,omitempty"`
	Version      string       `json:"version,omitempty"`
	IsSpent      bool         `json:"is_spent,omitempty"`
	ScriptKey    string       `json:"script_key,omitempty"`
	ChannelInfo  *ChannelInfo `json:"channel_info,omitempty"`
	UserBalance  int64        `json:"user_balance"`
	UpdatedAt    time.Time    `json:"updated_at,omitempty"`
}

// ReceivableCeiling returns the largest asset amount an invoice against this
// asset can request: the remote capacity still available on its channel.
func (a *Asset) ReceivableCeiling() int64 {
	if a.ChannelInfo == nil {
		return 0
	}
	ceiling := a.ChannelInfo.Capacity - a.ChannelInfo.LocalBalance
	if ceiling < 0 {
		return 0
	}
	return ceiling
}

// AssetBalance : per-wallet balance row from the asset-balances endpoint.
type AssetBalance struct {
	ID              string    `json:"id"`
	WalletID        string    `json:"wallet_id"`
	AssetID         string    `json:"asset_id"`
	Balance         int64     `json:"balance"`
	LastPaymentHash string    `json:"last_payment_hash,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}
