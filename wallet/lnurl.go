package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/getAlby/tapwallet/lib/responses"
	"github.com/getAlby/tapwallet/models"
)

// IsLnurl reports whether a payment string is an LNURL pay link rather
// than a bolt11 invoice.
func IsLnurl(paymentRequest string) bool {
	s := strings.ToUpper(strings.TrimSpace(paymentRequest))
	s = strings.TrimPrefix(s, "LIGHTNING:")
	return strings.HasPrefix(s, "LNURL")
}

type LnurlPayParams struct {
	Lnurl        string
	AmountMsat   int64
	AssetID      string
	Comment      string
	FeeLimitSats int64
}

// PayLnurl runs the LNURL variant of the pay flow: query the link's
// capability descriptor first, refuse links that do not accept assets,
// auto-select the first wallet asset the link accepts, then pay through
// the backend. No pay call is issued when the descriptor refuses assets or
// the amount is out of bounds.
func (svc *Service) PayLnurl(ctx context.Context, params LnurlPayParams) (*models.PayResult, error) {
	info, err := svc.Client.LnurlInfo(ctx, params.Lnurl)
	if err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}
	if info.Error != "" {
		err := &responses.PaymentFailedError{Message: info.Error}
		svc.Notifier.Error(err.Error())
		return nil, err
	}
	if !info.AcceptsAssets {
		svc.Notifier.Error(responses.ErrLnurlAssetsNotAllowed.Error())
		return nil, responses.ErrLnurlAssetsNotAllowed
	}

	assetID := params.AssetID
	if assetID == "" {
		assetID = svc.firstAcceptedAsset(info)
	}
	if assetID == "" || !info.AcceptsAsset(assetID) {
		svc.Notifier.Error(responses.ErrNoMatchingAsset.Error())
		return nil, responses.ErrNoMatchingAsset
	}

	if params.AmountMsat < info.MinSendable || params.AmountMsat > info.MaxSendable {
		svc.Notifier.Error(responses.ErrAmountOutOfBounds.Error())
		return nil, responses.ErrAmountOutOfBounds
	}

	comment := params.Comment
	if len(comment) > info.CommentAllowed {
		comment = comment[:info.CommentAllowed]
	}

	feeLimit := params.FeeLimitSats
	if feeLimit == 0 {
		feeLimit = svc.Config.LnurlFeeLimitSats
	}

	result, err := svc.Client.LnurlPay(ctx, &models.LnurlPayRequest{
		Lnurl:        params.Lnurl,
		AmountMsat:   params.AmountMsat,
		AssetID:      assetID,
		Comment:      comment,
		FeeLimitSats: feeLimit,
	})
	if err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}
	if result.Failed() {
		err := &responses.PaymentFailedError{Message: result.Error}
		svc.Notifier.Error(err.Error())
		return nil, err
	}

	svc.recordPayment(result, params.Lnurl)
	svc.Notifier.Info(fmt.Sprintf("paid %d %s via LNURL", result.AssetAmount, svc.assetName(result.AssetID)))
	return result, nil
}

// firstAcceptedAsset returns the first asset in the wallet the link
// accepts, in wallet order.
func (svc *Service) firstAcceptedAsset(info *models.LnurlInfo) string {
	for _, asset := range svc.Store.Assets() {
		if info.AcceptsAsset(asset.AssetID) {
			return asset.AssetID
		}
	}
	return ""
}
