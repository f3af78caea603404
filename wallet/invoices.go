package wallet

import (
	"context"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/lib/responses"
	"github.com/getAlby/tapwallet/models"
)

// IsInvoiceAmountValid reports whether an invoice for amount units can be
// received over the asset's channel. The ceiling is the remote capacity:
// channel capacity minus what we already hold locally.
func (svc *Service) IsInvoiceAmountValid(asset *models.Asset, amount int64) bool {
	if asset == nil || amount <= 0 {
		return false
	}
	return amount <= asset.ReceivableCeiling()
}

// CreateInvoice runs the create-invoice flow: validate the request against
// the selected asset's receivable ceiling, submit it, and seed the store
// with the pending invoice so the paid push has something to settle into.
func (svc *Service) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := svc.Validator.Struct(req); err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}

	asset := svc.findAsset(req.AssetID)
	if asset == nil {
		svc.Notifier.Error(responses.ErrNoWallet.Error())
		return nil, responses.ErrNoWallet
	}
	if !svc.IsInvoiceAmountValid(asset, req.Amount) {
		svc.Notifier.Error(responses.ErrAmountExceedsCeiling.Error())
		return nil, responses.ErrAmountExceedsCeiling
	}
	if req.Expiry == 0 {
		req.Expiry = svc.Config.DefaultInvoiceTTL
	}
	if req.PeerPubkey == "" && asset.ChannelInfo != nil {
		req.PeerPubkey = asset.ChannelInfo.PeerPubkey
	}

	created, err := svc.Client.CreateInvoice(ctx, req)
	if err != nil {
		svc.Notifier.Error(err.Error())
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(req.Expiry) * time.Second)
	invoice := &models.Invoice{
		ID:             created.CheckingID,
		PaymentHash:    created.PaymentHash,
		PaymentRequest: created.PaymentRequest,
		AssetID:        created.AssetID,
		AssetAmount:    created.AssetAmount,
		SatoshiAmount:  created.SatoshiAmount,
		Description:    req.Description,
		Status:         common.InvoiceStatusPending,
		CreatedAt:      now,
		ExpiresAt:      &expiresAt,
	}
	svc.Store.UpsertInvoice(*invoice)

	svc.Notifier.Info(fmt.Sprintf("invoice created for %d %s", created.AssetAmount, svc.assetName(created.AssetID)))
	return invoice, nil
}

// InvoiceQR renders the payment request as a PNG for display.
func (svc *Service) InvoiceQR(paymentRequest string) ([]byte, error) {
	return qrcode.Encode(paymentRequest, qrcode.Medium, svc.Config.QRCodeSize)
}

func (svc *Service) findAsset(assetID string) *models.Asset {
	for _, asset := range svc.Store.Assets() {
		if asset.AssetID == assetID {
			found := asset
			return &found
		}
	}
	return nil
}

func (svc *Service) assetName(assetID string) string {
	if name, ok := svc.Store.AssetName(assetID); ok {
		return name
	}
	return assetID
}
