package tahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/getAlby/tapwallet/lib/responses"
	"github.com/getAlby/tapwallet/models"
)

type ClientOptions struct {
	BackendURL  string
	APIKey      string
	HTTPTimeout int
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(options ClientOptions, logger zerolog.Logger) *Client {
	timeout := time.Duration(options.HTTPTimeout) * time.Second
	if options.HTTPTimeout <= 0 {
		timeout = 40 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(options.BackendURL, "/"),
		apiKey:  options.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) ListAssets(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	err := c.call(ctx, http.MethodGet, "listassets", nil, nil, &assets)
	return assets, err
}

func (c *Client) AssetBalances(ctx context.Context) ([]models.AssetBalance, error) {
	var balances []models.AssetBalance
	err := c.call(ctx, http.MethodGet, "asset-balances", nil, nil, &balances)
	return balances, err
}

func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := c.call(ctx, http.MethodGet, "invoices", cacheBuster(), nil, &invoices)
	return invoices, err
}

func (c *Client) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := c.call(ctx, http.MethodGet, "payments", cacheBuster(), nil, &payments)
	return payments, err
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := c.call(ctx, http.MethodGet, "invoices/"+url.PathEscape(id), nil, nil, invoice)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment := &models.Payment{}
	err := c.call(ctx, http.MethodGet, "payments/"+url.PathEscape(id), nil, nil, payment)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (c *Client) UpdateInvoiceStatus(ctx context.Context, id, status string) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := url.Values{"status": {status}}
	err := c.call(ctx, http.MethodPatch, "invoices/"+url.PathEscape(id), query, nil, invoice)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (c *Client) ParseInvoice(ctx context.Context, paymentRequest string) (*models.ParsedInvoice, error) {
	parsed := &models.ParsedInvoice{}
	query := url.Values{"payment_request": {paymentRequest}}
	err := c.call(ctx, http.MethodGet, "parse-invoice", query, nil, parsed)
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func (c *Client) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.CreatedInvoice, error) {
	created := &models.CreatedInvoice{}
	err := c.call(ctx, http.MethodPost, "invoice", nil, req, created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) PayInvoice(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error) {
	result := &models.PayResult{}
	err := c.call(ctx, http.MethodPost, "pay", nil, req, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) PayInternal(ctx context.Context, req *models.PayInvoiceRequest) (*models.PayResult, error) {
	result := &models.PayResult{}
	err := c.call(ctx, http.MethodPost, "internal-payment", nil, req, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) AssetRate(ctx context.Context, assetID string, amount int64) (*models.AssetRate, error) {
	rate := &models.AssetRate{}
	query := url.Values{"amount": {strconv.FormatInt(amount, 10)}}
	err := c.call(ctx, http.MethodGet, "rates/"+url.PathEscape(assetID), query, nil, rate)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (c *Client) LnurlInfo(ctx context.Context, lnurl string) (*models.LnurlInfo, error) {
	info := &models.LnurlInfo{}
	body := map[string]string{"lnurl": lnurl}
	err := c.call(ctx, http.MethodPost, "lnurl/info", nil, body, info)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) LnurlPay(ctx context.Context, req *models.LnurlPayRequest) (*models.PayResult, error) {
	result := &models.PayResult{}
	err := c.call(ctx, http.MethodPost, "lnurl/pay", nil, req, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// call issues one authenticated request and decodes the JSON body into out.
// Non-2xx responses become a *responses.BackendError carrying the backend's
// detail message.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		payload = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.backendError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) backendError(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &responses.BackendError{StatusCode: resp.StatusCode}
	}

	var detail struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(raw, &detail); err == nil {
		switch {
		case detail.Detail != "":
			message = detail.Detail
		case detail.Error != "":
			message = detail.Error
		case detail.Message != "":
			message = detail.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	c.logger.Warn().Int("status", resp.StatusCode).Str("detail", message).Msg("backend request failed")
	return &responses.BackendError{StatusCode: resp.StatusCode, Message: message}
}

// cacheBuster mirrors the `_=<ts>` query param the browser client sends on
// list calls to defeat intermediary caches.
func cacheBuster() url.Values {
	return url.Values{"_": {strconv.FormatInt(time.Now().UnixMilli(), 10)}}
}
