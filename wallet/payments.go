package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/lib/responses"
	"github.com/getAlby/tapwallet/models"
)

// PayRequest is the input of the pay flow. AmountMsat and Comment only
// apply when the payment string turns out to be an LNURL pay link.
type PayRequest struct {
	PaymentRequest string
	AssetID        string
	AmountMsat     int64
	Comment        string
	FeeLimitSats   int64
}

// Pay runs the pay flow: parse the payment string server-side, pick a
// funding asset with sufficient balance, submit, and fall back to the
// internal payment path when the backend reports the destination lives on
// this same host. LNURL strings are detected locally and routed through the
// LNURL variant before any pay call.
func (svc *Service) Pay(ctx context.Context, req PayRequest) (*models.PayResult, error) {
	trimmed := strings.TrimSpace(req.PaymentRequest)
	if trimmed == "" {
		svc.Notifier.Error(responses.ErrEmptyPaymentRequest.Error())
		return nil, responses.ErrEmptyPaymentRequest
	}
	if IsLnurl(trimmed) {
		return svc.PayLnurl(ctx, LnurlPayParams{
			Lnurl:        trimmed,
			AmountMsat:   req.AmountMsat,
			AssetID:      req.AssetID,
			Comment:      req.Comment,
			FeeLimitSats: req.FeeLimitSats,
		})
	}

	parsed, err := svc.Client.ParseInvoice(ctx, trimmed)
	if err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}

	asset, err := svc.selectFundingAsset(req.AssetID, parsed.AssetID, parsed.Amount)
	if err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}

	feeLimit := req.FeeLimitSats
	if feeLimit == 0 {
		feeLimit = svc.Config.DefaultFeeLimitSats
	}
	payReq := &models.PayInvoiceRequest{
		PaymentRequest: trimmed,
		FeeLimitSats:   feeLimit,
		AssetID:        asset.AssetID,
	}
	if asset.ChannelInfo != nil {
		payReq.PeerPubkey = asset.ChannelInfo.PeerPubkey
	}

	result, err := svc.submitPayment(ctx, payReq)
	if err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}

	svc.recordPayment(result, trimmed)
	svc.Notifier.Info(fmt.Sprintf("paid %d %s", result.AssetAmount, svc.assetName(result.AssetID)))
	return result, nil
}

// submitPayment issues the pay call and retries once through the internal
// payment path when the failure marks the destination as internal.
func (svc *Service) submitPayment(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error) {
	result, err := svc.Client.PayInvoice(ctx, req)
	if err == nil && result.Failed() {
		err = &responses.PaymentFailedError{Message: result.Error}
	}
	if err == nil {
		return result, nil
	}
	if !responses.IsInternalPayment(err) {
		return nil, err
	}

	svc.Logger.Info().Msg("destination is on this host, retrying as internal payment")
	result, err = svc.Client.PayInternal(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, &responses.PaymentFailedError{Message: result.Error}
	}
	result.InternalPayment = true
	return result, nil
}

// selectFundingAsset picks the asset the payment is funded from. An
// explicit choice wins; otherwise the invoice's asset, otherwise the first
// asset whose user balance covers the amount.
func (svc *Service) selectFundingAsset(chosenID, invoiceAssetID string, amount int64) (*models.Asset, error) {
	assets := svc.Store.Assets()
	if len(assets) == 0 {
		return nil, responses.ErrNoWallet
	}

	if chosenID == "" {
		chosenID = invoiceAssetID
	}
	if chosenID != "" {
		for _, asset := range assets {
			if asset.AssetID == chosenID {
				if asset.UserBalance < amount {
					return nil, responses.ErrNoMatchingAsset
				}
				found := asset
				return &found, nil
			}
		}
		return nil, responses.ErrNoMatchingAsset
	}

	for _, asset := range assets {
		if asset.UserBalance >= amount {
			found := asset
			return &found, nil
		}
	}
	return nil, responses.ErrNoMatchingAsset
}

// recordPayment folds a successful pay response into the store without
// waiting for the push channel to echo it back.
func (svc *Service) recordPayment(result *models.PayResult, paymentRequest string) {
	svc.Store.UpsertPayment(models.Payment{
		ID:             result.PaymentHash,
		PaymentHash:    result.PaymentHash,
		PaymentRequest: paymentRequest,
		AssetID:        result.AssetID,
		AssetAmount:    result.AssetAmount,
		FeeSats:        result.FeeMsat / 1000,
		Description:    result.Description,
		Status:         common.PaymentStatusCompleted,
		CreatedAt:      time.Now(),
		Preimage:       result.Preimage,
		Internal:       result.InternalPayment,
	})
}
