package integration_tests

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"
	"github.com/ziflex/lecho/v3"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/lib"
	"github.com/getAlby/tapwallet/models"
	"github.com/getAlby/tapwallet/stream"
)

// MockBackend is an in-process stand-in for the Taproot Assets wallet
// backend: the REST surface the transport client consumes plus the push
// channel websocket endpoint.
type MockBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	assets   []models.Asset
	invoices []models.Invoice
	payments []models.Payment
	conns    map[string][]*websocket.Conn

	// PayHandler decides the outcome of POST /pay. The default succeeds.
	PayHandler func(req *models.PayInvoiceRequest) *models.PayResult
	// LnurlInfoResponse is returned by POST /lnurl/info.
	LnurlInfoResponse models.LnurlInfo

	upgrader websocket.Upgrader
}

func NewMockBackend(assets []models.Asset) *MockBackend {
	backend := &MockBackend{
		assets: assets,
		conns:  make(map[string][]*websocket.Conn),
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = lecho.New(os.Stdout)
	e.Validator = &lib.CustomValidator{Validator: validator.New()}

	e.GET("/listassets", backend.listAssets)
	e.GET("/asset-balances", backend.assetBalances)
	e.GET("/invoices", backend.listInvoices)
	e.GET("/invoices/:id", backend.getInvoice)
	e.PATCH("/invoices/:id", backend.updateInvoiceStatus)
	e.GET("/payments", backend.listPayments)
	e.GET("/payments/:id", backend.getPayment)
	e.GET("/rates/:asset_id", backend.assetRate)
	e.GET("/parse-invoice", backend.parseInvoice)
	e.POST("/invoice", backend.createInvoice)
	e.POST("/pay", backend.pay)
	e.POST("/internal-payment", backend.payInternal)
	e.POST("/lnurl/info", backend.lnurlInfo)
	e.POST("/lnurl/pay", backend.lnurlPay)
	e.GET("/ws/:item", backend.websocketChannel)

	backend.Server = httptest.NewServer(e)
	return backend
}

func (b *MockBackend) Close() {
	b.mu.Lock()
	for _, conns := range b.conns {
		for _, conn := range conns {
			conn.Close()
		}
	}
	b.mu.Unlock()
	b.Server.Close()
}

// RestURL is the base URL for the transport client.
func (b *MockBackend) RestURL() string {
	return b.Server.URL
}

// WebsocketURL is the base URL for the stream manager.
func (b *MockBackend) WebsocketURL() string {
	return "ws" + strings.TrimPrefix(b.Server.URL, "http") + "/ws"
}

func (b *MockBackend) listAssets(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, b.assets)
}

func (b *MockBackend) assetBalances(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	balances := make([]models.AssetBalance, 0, len(b.assets))
	for _, asset := range b.assets {
		balances = append(balances, models.AssetBalance{
			ID:      random.String(8, random.Hex),
			AssetID: asset.AssetID,
			Balance: asset.UserBalance,
		})
	}
	return c.JSON(http.StatusOK, balances)
}

func (b *MockBackend) listInvoices(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, b.invoices)
}

func (b *MockBackend) listPayments(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, b.payments)
}

func (b *MockBackend) getInvoice(c echo.Context) error {
	id := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.invoices {
		if b.invoices[i].ID == id || b.invoices[i].PaymentHash == id {
			return c.JSON(http.StatusOK, b.invoices[i])
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"detail": "invoice not found"})
}

func (b *MockBackend) updateInvoiceStatus(c echo.Context) error {
	id := c.Param("id")
	status := c.QueryParam("status")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.invoices {
		if b.invoices[i].ID == id || b.invoices[i].PaymentHash == id {
			b.invoices[i].Status = status
			return c.JSON(http.StatusOK, b.invoices[i])
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"detail": "invoice not found"})
}

func (b *MockBackend) getPayment(c echo.Context) error {
	id := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.payments {
		if b.payments[i].ID == id || b.payments[i].PaymentHash == id {
			return c.JSON(http.StatusOK, b.payments[i])
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"detail": "payment not found"})
}

func (b *MockBackend) assetRate(c echo.Context) error {
	assetID := c.Param("asset_id")
	amount, _ := strconv.ParseInt(c.QueryParam("amount"), 10, 64)
	return c.JSON(http.StatusOK, models.AssetRate{
		AssetID:     assetID,
		Amount:      amount,
		RatePerUnit: 1,
		TotalSats:   amount,
	})
}

func (b *MockBackend) parseInvoice(c echo.Context) error {
	paymentRequest := c.QueryParam("payment_request")
	if paymentRequest == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "payment_request is required"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, invoice := range b.invoices {
		if invoice.PaymentRequest == paymentRequest {
			return c.JSON(http.StatusOK, models.ParsedInvoice{
				PaymentRequest: paymentRequest,
				PaymentHash:    invoice.PaymentHash,
				Amount:         invoice.AssetAmount,
				AssetID:        invoice.AssetID,
				Description:    invoice.Description,
			})
		}
	}
	return c.JSON(http.StatusOK, models.ParsedInvoice{
		PaymentRequest: paymentRequest,
		PaymentHash:    random.String(16, random.Hex),
		Amount:         21,
	})
}

func (b *MockBackend) createInvoice(c echo.Context) error {
	req := &models.CreateInvoiceRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}

	hash := random.String(16, random.Hex)
	invoice := models.Invoice{
		ID:             random.String(8, random.Hex),
		PaymentHash:    hash,
		PaymentRequest: "lnbc-mock-" + hash,
		AssetID:        req.AssetID,
		AssetAmount:    req.Amount,
		SatoshiAmount:  354,
		Description:    req.Description,
		Status:         common.InvoiceStatusPending,
		CreatedAt:      time.Now(),
	}
	b.mu.Lock()
	b.invoices = append(b.invoices, invoice)
	b.mu.Unlock()

	return c.JSON(http.StatusOK, models.CreatedInvoice{
		PaymentHash:    invoice.PaymentHash,
		PaymentRequest: invoice.PaymentRequest,
		AssetID:        invoice.AssetID,
		AssetAmount:    invoice.AssetAmount,
		SatoshiAmount:  invoice.SatoshiAmount,
		CheckingID:     invoice.ID,
	})
}

func (b *MockBackend) pay(c echo.Context) error {
	req := &models.PayInvoiceRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}

	result := &models.PayResult{
		Status:      common.PayStatusSuccess,
		PaymentHash: random.String(16, random.Hex),
		AssetID:     req.AssetID,
		AssetAmount: 21,
	}
	if b.PayHandler != nil {
		result = b.PayHandler(req)
	}
	if result.Status == common.PayStatusSuccess {
		b.recordPayment(result, req.PaymentRequest)
	}
	return c.JSON(http.StatusOK, result)
}

func (b *MockBackend) payInternal(c echo.Context) error {
	req := &models.PayInvoiceRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}
	result := &models.PayResult{
		Status:          common.PayStatusSuccess,
		PaymentHash:     random.String(16, random.Hex),
		AssetID:         req.AssetID,
		AssetAmount:     21,
		InternalPayment: true,
	}
	b.recordPayment(result, req.PaymentRequest)
	return c.JSON(http.StatusOK, result)
}

func (b *MockBackend) recordPayment(result *models.PayResult, paymentRequest string) {
	b.mu.Lock()
	b.payments = append(b.payments, models.Payment{
		ID:             result.PaymentHash,
		PaymentHash:    result.PaymentHash,
		PaymentRequest: paymentRequest,
		AssetID:        result.AssetID,
		AssetAmount:    result.AssetAmount,
		FeeSats:        result.FeeMsat / 1000,
		Status:         common.PaymentStatusCompleted,
		CreatedAt:      time.Now(),
		Internal:       result.InternalPayment,
	})
	b.mu.Unlock()
}

func (b *MockBackend) lnurlInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, b.LnurlInfoResponse)
}

func (b *MockBackend) lnurlPay(c echo.Context) error {
	req := &models.LnurlPayRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}
	result := &models.PayResult{
		Status:      common.PayStatusSuccess,
		PaymentHash: random.String(16, random.Hex),
		AssetID:     req.AssetID,
		AssetAmount: req.AmountMsat / 1000,
	}
	b.recordPayment(result, req.Lnurl)
	return c.JSON(http.StatusOK, result)
}

func (b *MockBackend) websocketChannel(c echo.Context) error {
	conn, err := b.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	item := c.Param("item")
	b.mu.Lock()
	b.conns[item] = append(b.conns[item], conn)
	b.mu.Unlock()

	// drain until the client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Push delivers an envelope on one channel kind for a user.
func (b *MockBackend) Push(kind, userID string, envelope stream.Envelope) {
	item := "taproot-assets-" + kind + "-" + userID
	b.mu.Lock()
	conns := b.conns[item]
	b.mu.Unlock()
	for _, conn := range conns {
		conn.WriteJSON(envelope)
	}
}

// MarkInvoicePaid settles a stored invoice and returns the updated copy.
func (b *MockBackend) MarkInvoicePaid(paymentHash string) *models.Invoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.invoices {
		if b.invoices[i].PaymentHash == paymentHash {
			now := time.Now()
			b.invoices[i].Status = common.InvoiceStatusPaid
			b.invoices[i].PaidAt = &now
			paid := b.invoices[i]
			return &paid
		}
	}
	return nil
}
