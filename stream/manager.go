package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/models"
	"github.com/getAlby/tapwallet/store"
	"github.com/getAlby/tapwallet/tahub"
)

// State of a single push channel.
type State string

const (
	StateDisconnected  State = "disconnected"
	StateConnecting    State = "connecting"
	StateConnected     State = "connected"
	StateReconnectWait State = "reconnect_wait"
)

var channelKinds = []string{
	common.ChannelKindInvoices,
	common.ChannelKindPayments,
	common.ChannelKindBalances,
}

// Envelope is the tagged message every push channel carries.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ConnectionStatus is a snapshot of the manager's state machine.
type ConnectionStatus struct {
	Channels          map[string]State
	ReconnectAttempts int
	Polling           bool
}

// Connected reports whether every channel is up.
func (s ConnectionStatus) Connected() bool {
	for _, kind := range channelKinds {
		if s.Channels[kind] != StateConnected {
			return false
		}
	}
	return true
}

// Manager owns the three push channels (invoices, payments, balances) for
// one user. Channels reconnect together: when all of them are down one
// shared retry is scheduled at a fixed delay, and once the retry budget is
// spent the manager falls back to polling the REST surface until Connect is
// called again. Incoming envelopes are dispatched into the store; a paid
// invoice or completed payment triggers an immediate out-of-band refresh so
// balances do not wait for the next cycle.
type Manager struct {
	cfg    *Config
	client tahub.TahubClientWrapper
	store  *store.Store
	userID string
	logger zerolog.Logger
	dialer *websocket.Dialer

	mu             sync.Mutex
	ctx            context.Context
	conns          map[string]*websocket.Conn
	states         map[string]State
	attempts       int
	retryBackoff   backoff.BackOff
	reconnectTimer *time.Timer
	pollStop       chan struct{}
	closed         bool
}

func NewManager(cfg *Config, client tahub.TahubClientWrapper, st *store.Store, userID string, logger zerolog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		client: client,
		store:  st,
		userID: userID,
		logger: logger.With().Str("component", "stream").Logger(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		conns:  make(map[string]*websocket.Conn),
		states: make(map[string]State),
	}
	for _, kind := range channelKinds {
		m.states[kind] = StateDisconnected
	}
	m.resetBackoff()
	return m
}

func (m *Manager) resetBackoff() {
	m.retryBackoff = backoff.WithMaxRetries(
		backoff.NewConstantBackOff(m.cfg.ReconnectDelay),
		uint64(m.cfg.MaxReconnectAttempts),
	)
	m.retryBackoff.Reset()
}

// Connect opens all three channels and resets the retry budget. Calling it
// while fallback polling is active stops the polling loop.
func (m *Manager) Connect(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.ctx = ctx
	m.attempts = 0
	m.resetBackoff()
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.stopPollingLocked()
	m.mu.Unlock()

	m.connectAll(ctx)
}

func (m *Manager) connectAll(ctx context.Context) {
	for _, kind := range channelKinds {
		m.openChannel(ctx, kind)
	}
	m.mu.Lock()
	if m.allConnectedLocked() {
		// fully restored, fallback polling has no work left
		m.stopPollingLocked()
	}
	m.mu.Unlock()
}

func (m *Manager) channelURL(kind string) string {
	return fmt.Sprintf("%s/taproot-assets-%s-%s", m.cfg.WebsocketURL, kind, m.userID)
}

func (m *Manager) openChannel(ctx context.Context, kind string) {
	m.mu.Lock()
	if m.closed || m.states[kind] == StateConnected || m.states[kind] == StateConnecting {
		m.mu.Unlock()
		return
	}
	m.states[kind] = StateConnecting
	m.mu.Unlock()

	conn, _, err := m.dialer.DialContext(ctx, m.channelURL(kind), nil)
	if err != nil {
		m.logger.Warn().Str("channel", kind).Err(err).Msg("channel dial failed")
		m.channelDown(kind, nil)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.conns[kind] = conn
	m.states[kind] = StateConnected
	m.mu.Unlock()

	m.logger.Info().Str("channel", kind).Msg("channel connected")
	go m.readLoop(ctx, kind, conn)
}

func (m *Manager) readLoop(ctx context.Context, kind string, conn *websocket.Conn) {
	for {
		var envelope Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			m.logger.Warn().Str("channel", kind).Err(err).Msg("channel closed")
			m.channelDown(kind, conn)
			return
		}
		m.dispatch(ctx, envelope)
	}
}

// channelDown tears one channel down and, when every channel is down,
// schedules the shared reconnect attempt.
func (m *Manager) channelDown(kind string, conn *websocket.Conn) {
	m.mu.Lock()
	if conn != nil && m.conns[kind] == conn {
		conn.Close()
		delete(m.conns, kind)
	}
	m.states[kind] = StateDisconnected
	if m.closed || !m.allDownLocked() {
		m.mu.Unlock()
		return
	}
	m.scheduleReconnectLocked()
	m.mu.Unlock()
}

func (m *Manager) allDownLocked() bool {
	for _, kind := range channelKinds {
		if m.states[kind] != StateDisconnected {
			return false
		}
	}
	return true
}

func (m *Manager) allConnectedLocked() bool {
	for _, kind := range channelKinds {
		if m.states[kind] != StateConnected {
			return false
		}
	}
	return true
}

// scheduleReconnectLocked arms exactly one pending retry. Once the backoff
// budget reports Stop the manager switches to fallback polling instead.
func (m *Manager) scheduleReconnectLocked() {
	if m.reconnectTimer != nil {
		return
	}
	delay := m.retryBackoff.NextBackOff()
	if delay == backoff.Stop {
		m.logger.Warn().Int("attempts", m.attempts).Msg("reconnect budget spent, falling back to polling")
		m.startPollingLocked()
		return
	}
	m.attempts++
	for _, kind := range channelKinds {
		m.states[kind] = StateReconnectWait
	}
	ctx := m.ctx
	m.logger.Info().Int("attempt", m.attempts).Dur("delay", delay).Msg("reconnect scheduled")
	m.reconnectTimer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		m.reconnectTimer = nil
		if m.closed {
			m.mu.Unlock()
			return
		}
		for _, kind := range channelKinds {
			if m.states[kind] == StateReconnectWait {
				m.states[kind] = StateDisconnected
			}
		}
		m.mu.Unlock()
		m.connectAll(ctx)
		m.mu.Lock()
		if m.allDownLocked() && !m.closed {
			m.scheduleReconnectLocked()
		}
		m.mu.Unlock()
	})
}

// startPollingLocked begins the fixed-interval REST refresh loop. It is a
// no-op when a loop is already running, so the fallback flag flips exactly
// once per spent budget.
func (m *Manager) startPollingLocked() {
	if m.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	m.pollStop = stop
	ctx := m.ctx

	go func() {
		ticker := time.NewTicker(m.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Refresh(ctx)
			}
		}
	}()
}

func (m *Manager) stopPollingLocked() {
	if m.pollStop == nil {
		return
	}
	close(m.pollStop)
	m.pollStop = nil
}

// Refresh re-fetches assets and transactions through the transport client
// and reconciles them into the store.
func (m *Manager) Refresh(ctx context.Context) {
	assets, err := m.client.ListAssets(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("asset refresh failed")
	} else {
		m.store.SetAssets(assets)
	}
	balances, err := m.client.AssetBalances(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("balance refresh failed")
	} else {
		m.store.ApplyBalances(balances)
	}
	invoices, err := m.client.ListInvoices(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("invoice refresh failed")
	} else {
		m.store.SetInvoices(invoices)
	}
	payments, err := m.client.ListPayments(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("payment refresh failed")
	} else {
		m.store.SetPayments(payments)
	}
}

func (m *Manager) dispatch(ctx context.Context, envelope Envelope) {
	switch envelope.Type {
	case common.UpdateTypeInvoice:
		var invoice models.Invoice
		if err := json.Unmarshal(envelope.Data, &invoice); err != nil {
			m.logger.Warn().Err(err).Msg("bad invoice update payload")
			return
		}
		m.store.UpsertInvoice(invoice)
		if invoice.Status == common.InvoiceStatusPaid {
			// settled funds move balances, refresh out of band
			go m.Refresh(ctx)
		}
	case common.UpdateTypePayment:
		var payment models.Payment
		if err := json.Unmarshal(envelope.Data, &payment); err != nil {
			m.logger.Warn().Err(err).Msg("bad payment update payload")
			return
		}
		m.store.UpsertPayment(payment)
		if payment.Status == common.PaymentStatusCompleted {
			go m.Refresh(ctx)
		}
	case common.UpdateTypeAssets:
		var assets []models.Asset
		if err := json.Unmarshal(envelope.Data, &assets); err != nil {
			m.logger.Warn().Err(err).Msg("bad assets update payload")
			return
		}
		m.store.SetAssets(assets)
	default:
		m.logger.Debug().Str("type", envelope.Type).Msg("ignoring unknown update type")
	}
}

// Status returns a snapshot of the connection state machine.
func (m *Manager) Status() ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	channels := make(map[string]State, len(m.states))
	for kind, state := range m.states {
		channels[kind] = state
	}
	return ConnectionStatus{
		Channels:          channels,
		ReconnectAttempts: m.attempts,
		Polling:           m.pollStop != nil,
	}
}

// Close tears down every channel and cancels the reconnect and polling
// timers. The manager cannot be reused afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.stopPollingLocked()
	conns := m.conns
	m.conns = make(map[string]*websocket.Conn)
	for _, kind := range channelKinds {
		m.states[kind] = StateDisconnected
	}
	m.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
