// Package session provides the session manager that ties live views, wallet
// connects and toasts together.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/junlend/web/internal/app/bootstrap"
	"github.com/junlend/web/internal/app/filter"
	"github.com/junlend/web/internal/app/rotation"
	"github.com/junlend/web/internal/app/session/registry"
	"github.com/junlend/web/internal/app/session/state"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/domain/label"
	"github.com/junlend/web/internal/domain/visitor"
	"github.com/junlend/web/internal/domain/wallet"
	"github.com/junlend/web/internal/infra/config"
)

var (
	ErrNotServing      = errors.New("instance is not serving")
	ErrNotAccepting    = errors.New("wallet connects are not accepted")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrAlreadyStopping = errors.New("session already stopping")
)

// Manager manages live views and visitor actions.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config
	labels label.Set
	period time.Duration

	// Components
	stateMgr     *state.Manager
	viewReg      *registry.ViewRegistry
	filterChain  *filter.Chain
	toasts       *toast.Manager
	bootstrapper *bootstrap.Bootstrapper

	newTicker rotation.TickerFunc

	// Mounted views, closed on Stop
	mounts map[string]*Mount

	done chan struct{}
}

// Option customizes a Manager.
type Option func(*Manager)

// WithTicker sets the ticker source used by mounted rotators.
func WithTicker(f rotation.TickerFunc) Option {
	return func(m *Manager) {
		m.newTicker = f
	}
}

// NewManager creates a new session manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	labels, err := label.New(cfg.Rotation.Labels...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build rotation labels")
	}

	m := &Manager{
		config:   cfg,
		labels:   labels,
		period:   cfg.RotationPeriod(),
		stateMgr: state.New(uuid.New().String()),
		viewReg:  registry.NewViewRegistry(),
		toasts: toast.NewManager(toast.Config{
			Limit:       cfg.Toast.Limit,
			TTL:         cfg.ToastTTL(),
			MaxVisitors: cfg.Toast.MaxVisitors,
		}),
		bootstrapper: bootstrap.New(bootstrap.Config{
			StorageKey: cfg.Wallet.StorageKey,
			ChainIDs:   cfg.ChainIDs(),
			Reconnect:  !cfg.Wallet.DisableReconnect,
		}),
		filterChain: filter.NewChain(),
		newTicker:   rotation.NewTimeTicker,
		mounts:      make(map[string]*Mount),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.setupFilters(); err != nil {
		return nil, err
	}

	return m, nil
}

// setupFilters initializes the filter chain.
func (m *Manager) setupFilters() error {
	cfg := m.config

	// AddressFormatFilter is always on: accepted addresses are written to the session cookie.
	m.filterChain.Add(&filter.AddressFormatFilter{})

	// SupportedChainFilter (on unless disabled)
	if cfg.IsFilterEnabledOr("supported_chain_filter", true) {
		m.filterChain.Add(filter.NewSupportedChainFilter(cfg.ChainIDs()))
	}

	// ConnectorAllowlistFilter
	if cfg.IsFilterEnabled("connector_allowlist_filter") {
		f := filter.NewConnectorAllowlistFilter()
		if err := f.ValidateConfig(cfg.GetFilterSettings("connector_allowlist_filter")); err != nil {
			return errors.Wrap(err, "failed to validate connector allowlist filter config")
		}
		m.filterChain.Add(f)
	}

	for _, f := range m.filterChain.Filters() {
		zlog.Debug().Msgf("filter enabled: name=%s codes=%v", f.Name(), f.ReturnCodes())
	}
	return nil
}

// Start moves the instance to serving.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateMgr.GetPhase() != state.PhaseStarting {
		return ErrAlreadyStarted
	}
	m.stateMgr.SetPhase(state.PhaseServing)
	m.stateMgr.StartAccepting()
	zlog.Info().Msgf("phase changed: phase=SERVING instance_id=%s labels=%d period=%v",
		m.stateMgr.GetInstanceID(), m.labels.Len(), m.period)
	return nil
}

// Stop drains the instance: no new views mount, every mounted view is closed.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	phase := m.stateMgr.GetPhase()
	if phase == state.PhaseDraining || phase == state.PhaseStopped {
		m.mu.Unlock()
		return ErrAlreadyStopping
	}
	m.stateMgr.StopAccepting()
	m.stateMgr.SetPhase(state.PhaseDraining)
	mounts := make([]*Mount, 0, len(m.mounts))
	for _, mt := range m.mounts {
		mounts = append(mounts, mt)
	}
	m.mu.Unlock()

	zlog.Info().Msgf("phase changed: phase=DRAINING views=%d", len(mounts))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for _, mt := range mounts {
			mt.Close()
		}
	}()

	var err error
	select {
	case <-closed:
	case <-ctx.Done():
		err = errors.Wrap(ctx.Err(), "timed out closing live views")
	}

	m.stateMgr.SetPhase(state.PhaseStopped)
	m.toasts.Close()
	close(m.done)
	zlog.Info().Msgf("phase changed: phase=STOPPED instance_id=%s", m.stateMgr.GetInstanceID())
	return err
}

// Done returns a channel closed once the instance stopped.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Labels returns the rotation labels.
func (m *Manager) Labels() label.Set {
	return m.labels
}

// Period returns the rotation period.
func (m *Manager) Period() time.Duration {
	return m.period
}

// Config returns the configuration.
func (m *Manager) Config() *config.Config {
	return m.config
}

// Bootstrapper returns the wallet session bootstrapper.
func (m *Manager) Bootstrapper() *bootstrap.Bootstrapper {
	return m.bootstrapper
}

// Toasts returns the toast manager.
func (m *Manager) Toasts() *toast.Manager {
	return m.toasts
}

// ConnectResult is the outcome of a wallet connect request.
type ConnectResult struct {
	Accepted   bool
	Code       string
	Message    string
	Connection wallet.Connection
	Toast      toast.Toast
}

// Connect validates a wallet connect request and queues the outcome toast.
func (m *Manager) Connect(ctx context.Context, req filter.ConnectRequest) (*ConnectResult, error) {
	if !m.stateMgr.CanAcceptRequests() {
		return nil, ErrNotAccepting
	}

	result := m.filterChain.Execute(ctx, req)
	zlog.Info().Msgf("wallet connect: visitor=%s chain=%d connector=%s result=%t code=%s",
		req.VisitorID, req.ChainID, req.ConnectorID, result.Accepted, result.Code)

	if !result.Accepted {
		msg := m.config.GetMessage(result.Code)
		t := m.toasts.Push(req.VisitorID, toast.KindError, msg)
		return &ConnectResult{Code: result.Code, Message: msg, Toast: t}, nil
	}

	address, err := wallet.NormalizeAddress(req.Address)
	if err != nil {
		return nil, errors.Wrap(err, "accepted address failed to normalize")
	}
	uid := req.ConnectorID
	if uid == "" {
		uid = uuid.New().String()
	}
	conn := wallet.Connection{
		Accounts: []string{address},
		ChainID:  req.ChainID,
		Connector: wallet.Connector{
			ID:   req.ConnectorID,
			Name: req.ConnectorID,
			Type: req.ConnectorType,
			UID:  uid,
		},
	}

	msg := m.config.GetMessage("connected")
	t := m.toasts.Push(req.VisitorID, toast.KindSuccess, msg)
	return &ConnectResult{Accepted: true, Code: "connected", Message: msg, Connection: conn, Toast: t}, nil
}

// Disconnect queues the disconnect toast for a visitor.
func (m *Manager) Disconnect(visitorID string) toast.Toast {
	zlog.Info().Msgf("wallet disconnect: visitor=%s", visitorID)
	return m.toasts.Push(visitorID, toast.KindInfo, m.config.GetMessage("disconnected"))
}

// BroadcastToast sends a toast to every mounted view.
func (m *Manager) BroadcastToast(kind toast.Kind, message string) (toast.Toast, int) {
	return m.toasts.Broadcast(kind, message)
}

// Status represents the current instance status.
type Status struct {
	InstanceID     string
	Phase          state.Phase
	Accepting      state.AcceptingState
	Uptime         time.Duration
	ViewCount      int
	VisitorCount   int
	QueuedVisitors int
	Labels         []string
	Period         time.Duration
}

// GetStatus returns the current instance status.
func (m *Manager) GetStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Status{
		InstanceID:     m.stateMgr.GetInstanceID(),
		Phase:          m.stateMgr.GetPhase(),
		Accepting:      m.stateMgr.GetAcceptingState(),
		Uptime:         m.stateMgr.Uptime(time.Now()),
		ViewCount:      m.viewReg.Count(),
		VisitorCount:   m.viewReg.VisitorCount(),
		QueuedVisitors: m.toasts.QueuedVisitors(),
		Labels:         m.labels.Labels(),
		Period:         m.period,
	}
}

// ListViews returns all mounted views.
func (m *Manager) ListViews() []visitor.View {
	return m.viewReg.All()
}
