package tahub

import (
	"context"

	"github.com/getAlby/tapwallet/models"
)

// MockClient is a TahubClientWrapper for tests. Unset function fields
// return empty values.
type MockClient struct {
	ListAssetsFunc          func(ctx context.Context) ([]models.Asset, error)
	AssetBalancesFunc       func(ctx context.Context) ([]models.AssetBalance, error)
	ListInvoicesFunc        func(ctx context.Context) ([]models.Invoice, error)
	ListPaymentsFunc        func(ctx context.Context) ([]models.Payment, error)
	GetInvoiceFunc          func(ctx context.Context, id string) (*models.Invoice, error)
	GetPaymentFunc          func(ctx context.Context, id string) (*models.Payment, error)
	UpdateInvoiceStatusFunc func(ctx context.Context, id, status string) (*models.Invoice, error)
	ParseInvoiceFunc        func(ctx context.Context, paymentRequest string) (*models.ParsedInvoice, error)
	CreateInvoiceFunc       func(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error)
	PayInvoiceFunc          func(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error)
	PayInternalFunc         func(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error)
	AssetRateFunc           func(ctx context.Context, assetID string, amount int64) (*models.AssetRate, error)
	LnurlInfoFunc           func(ctx context.Context, lnurl string) (*models.LnurlInfo, error)
	LnurlPayFunc            func(ctx context.Context, req *models.LnurlPayRequest) (*models.PayResult, error)
}

var _ TahubClientWrapper = (*MockClient)(nil)

func (m *MockClient) ListAssets(ctx context.Context) ([]models.Asset, error) {
	if m.ListAssetsFunc != nil {
		return m.ListAssetsFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) AssetBalances(ctx context.Context) ([]models.AssetBalance, error) {
	if m.AssetBalancesFunc != nil {
		return m.AssetBalancesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	if m.ListInvoicesFunc != nil {
		return m.ListInvoicesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) ListPayments(ctx context.Context) ([]models.Payment, error) {
	if m.ListPaymentsFunc != nil {
		return m.ListPaymentsFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	if m.GetInvoiceFunc != nil {
		return m.GetInvoiceFunc(ctx, id)
	}
	return &models.Invoice{ID: id}, nil
}

func (m *MockClient) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, id)
	}
	return &models.Payment{ID: id}, nil
}

func (m *MockClient) UpdateInvoiceStatus(ctx context.Context, id, status string) (*models.Invoice, error) {
	if m.UpdateInvoiceStatusFunc != nil {
		return m.UpdateInvoiceStatusFunc(ctx, id, status)
	}
	return &models.Invoice{ID: id, Status: status}, nil
}

func (m *MockClient) ParseInvoice(ctx context.Context, paymentRequest string) (*models.ParsedInvoice, error) {
	if m.ParseInvoiceFunc != nil {
		return m.ParseInvoiceFunc(ctx, paymentRequest)
	}
	return &models.ParsedInvoice{PaymentRequest: paymentRequest}, nil
}

func (m *MockClient) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error) {
	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, req)
	}
	return &models.CreatedInvoice{AssetID: req.AssetID, AssetAmount: req.Amount}, nil
}

func (m *MockClient) PayInvoice(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error) {
	if m.PayInvoiceFunc != nil {
		return m.PayInvoiceFunc(ctx, req)
	}
	return &models.PayResult{Status: "success"}, nil
}

func (m *MockClient) PayInternal(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error) {
	if m.PayInternalFunc != nil {
		return m.PayInternalFunc(ctx, req)
	}
	return &models.PayResult{Status: "success", InternalPayment: true}, nil
}

func (m *MockClient) AssetRate(ctx context.Context, assetID string, amount int64) (*models.AssetRate, error) {
	if m.AssetRateFunc != nil {
		return m.AssetRateFunc(ctx, assetID, amount)
	}
	return &models.AssetRate{AssetID: assetID, Amount: amount}, nil
}

func (m *MockClient) LnurlInfo(ctx context.Context, lnurl string) (*models.LnurlInfo, error) {
	if m.LnurlInfoFunc != nil {
		return m.LnurlInfoFunc(ctx, lnurl)
	}
	return &models.LnurlInfo{}, nil
}

func (m *MockClient) LnurlPay(ctx context.Context, req *models.LnurlPayRequest) (*models.PayResult, error) {
	if m.LnurlPayFunc != nil {
		return m.LnurlPayFunc(ctx, req)
	}
	return &models.PayResult{Status: "success"}, nil
}
