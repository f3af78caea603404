package models

// LnurlInfo : capability descriptor of an LNURL pay link, as returned by
// POST /lnurl/info. Amounts are millisatoshis per LUD-06.
type LnurlInfo struct {
	AcceptsAssets    bool     `json:"accepts_assets"`
	AcceptedAssetIDs []string `json:"accepted_asset_ids,omitempty"`
	MinSendable      int64    `json:"min_sendable"`
	MaxSendable      int64    `json:"max_sendable"`
	CommentAllowed   int      `json:"comment_allowed"`
	Description      string   `json:"description,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// AcceptsAsset reports whether the link takes payment in the given asset.
func (l *LnurlInfo) AcceptsAsset(assetID string) bool {
	if !l.AcceptsAssets {
		return false
	}
	for _, id := range l.AcceptedAssetIDs {
		if id == assetID {
			return true
		}
	}
	return false
}

// LnurlPayRequest : payload for POST /lnurl/pay.
type LnurlPayRequest struct {
	Lnurl        string `json:"lnurl" validate:"required"`
	AmountMsat   int64  `json:"amount_msat" validate:"required,gt=0"`
	AssetID      string `json:"asset_id,omitempty"`
	Comment      string `json:"comment,omitempty"`
	FeeLimitSats int64  `json:"fee_limit_sats,omitempty" validate:"gte=0"`
}

// AssetRate : RFQ quote for an asset, sats per unit.
type AssetRate struct {
	AssetID     string  `json:"asset_id"`
	Amount      int64   `json:"amount"`
	RatePerUnit float64 `json:"rate_per_unit"`
	TotalSats   int64   `json:"total_sats"`
}
