package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matiascortez/vestia-backend/internal/cart"
	"github.com/matiascortez/vestia-backend/internal/payments"
	"github.com/matiascortez/vestia-backend/internal/shipping"
	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/types"
)

type quoter interface {
	Quote(ctx context.Context, postalCode, province string, declaredValue decimal.Decimal) shipping.Quote
}

type paymentGateway interface {
	CreatePreference(ctx context.Context, input payments.PreferenceInput) (*payments.PreferenceResult, error)
	ProcessPayment(ctx context.Context, input payments.PreferenceInput, form payments.FormData) (*payments.PaymentResult, error)
}

// PayResult is the terminal outcome of the pay action. Redirect mode fills
// Redirect; embedded mode fills Payment.
type PayResult struct {
	Mode     PaymentMode                `json:"mode"`
	Redirect *payments.PreferenceResult `json:"redirect,omitempty"`
	Payment  *payments.PaymentResult    `json:"payment,omitempty"`
	View     View                       `json:"session"`
}

// Manager owns the live checkout sessions. Sessions are ephemeral and
// in-memory; they expire on TTL and die with the process.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	carts   cart.Store
	quoter  quoter
	gateway paymentGateway
	cfg     config.CheckoutConfig
	logg    *logger.Logger

	unsubscribe func()
	now         func() time.Time
}

func NewManager(carts cart.Store, q quoter, gateway paymentGateway, cfg config.CheckoutConfig, logg *logger.Logger) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		carts:    carts,
		quoter:   q,
		gateway:  gateway,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}
	if carts != nil {
		m.unsubscribe = carts.Subscribe(m.cartChanged)
	}
	return m
}

// Close detaches the manager from the cart store.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) mode() PaymentMode {
	if m.cfg.IsEmbedded() {
		return ModeEmbedded
	}
	return ModeRedirect
}

// Start opens a checkout session over the given cart session.
func (m *Manager) Start(ctx context.Context, cartSessionID string) (View, error) {
	session := newSession(uuid.NewString(), cartSessionID, m.cfg.IncludeReviewStep, m.now().Add(m.cfg.SessionTTL))

	items := m.carts.Items(ctx, cartSessionID)

	session.mu.Lock()
	session.recomputeLocked(items)
	view := session.viewLocked()
	session.mu.Unlock()

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return view, nil
}

// Get returns the current session snapshot.
func (m *Manager) Get(ctx context.Context, sessionID string) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	m.refresh(ctx, session)

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.viewLocked(), nil
}

// SetBuyer updates the buyer step's fields. A confirmed buyer step and
// everything after it lose their confirmation.
func (m *Manager) SetBuyer(ctx context.Context, sessionID string, buyer types.BuyerInfo) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	m.refresh(ctx, session)

	session.mu.Lock()
	defer session.mu.Unlock()
	session.buyer = buyer
	session.invalidateFromLocked(StepBuyer)
	return session.viewLocked(), nil
}

// SetAddress updates the delivery step and refreshes the shipping quote for
// the new destination. The declared value is the current cart subtotal.
func (m *Manager) SetAddress(ctx context.Context, sessionID string, address types.ShippingAddress) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	m.refresh(ctx, session)

	session.mu.Lock()
	session.address = address
	session.invalidateFromLocked(StepDelivery)
	declared := session.subtotal
	items := session.items
	session.mu.Unlock()

	var quote *shipping.Quote
	if m.quoter != nil {
		q := m.quoter.Quote(ctx, address.PostalCode, address.Province, declared)
		quote = &q
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.quote = quote
	session.recomputeLocked(items)
	return session.viewLocked(), nil
}

// Confirm locks the step's fields in. The step must be next in order and its
// validity predicate must hold.
func (m *Manager) Confirm(ctx context.Context, sessionID string, step Step) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	m.refresh(ctx, session)

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.status != StatusActive {
		return View{}, errors.New(errors.CodeStateConflict, "checkout is not active")
	}
	if step == StepPayment {
		return View{}, errors.New(errors.CodeValidation, "payment is not a confirmable step")
	}
	if session.stepIndex(step) < 0 {
		return View{}, errors.New(errors.CodeValidation, "unknown checkout step")
	}
	if !session.priorConfirmedLocked(step) {
		return View{}, errors.New(errors.CodeStateConflict, "earlier steps are not confirmed")
	}
	if !session.stepValid(step) {
		return View{}, errors.New(errors.CodeValidation, "step fields are incomplete")
	}
	session.confirmed[step] = true
	return session.viewLocked(), nil
}

// Edit reopens a confirmed step, dropping confirmation on it and on every
// later step.
func (m *Manager) Edit(ctx context.Context, sessionID string, step Step) (View, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return View{}, err
	}
	m.refresh(ctx, session)

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.inFlight {
		return View{}, errors.New(errors.CodeStateConflict, "payment submission in flight")
	}
	if session.stepIndex(step) < 0 {
		return View{}, errors.New(errors.CodeValidation, "unknown checkout step")
	}
	session.invalidateFromLocked(step)
	return session.viewLocked(), nil
}

// Pay runs the terminal payment action. It is guarded three ways: all prior
// steps confirmed, total positive, and no submission already in flight. The
// in-flight flag stays set until the gateway answers, so a second call in
// that window is rejected instead of double-charging.
func (m *Manager) Pay(ctx context.Context, sessionID string, form payments.FormData) (*PayResult, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}
	m.refresh(ctx, session)

	session.mu.Lock()
	if session.inFlight {
		session.mu.Unlock()
		return nil, errors.New(errors.CodeStateConflict, "payment submission in flight")
	}
	if !session.canPayLocked() {
		session.mu.Unlock()
		return nil, errors.New(errors.CodeStateConflict, "checkout is not ready for payment")
	}
	session.inFlight = true
	input := m.draftLocked(session)
	session.mu.Unlock()

	mode := m.mode()
	result := &PayResult{Mode: mode}
	var payErr error

	switch mode {
	case ModeEmbedded:
		result.Payment, payErr = m.gateway.ProcessPayment(ctx, input, form)
	default:
		result.Redirect, payErr = m.gateway.CreatePreference(ctx, input)
	}

	session.mu.Lock()
	session.inFlight = false
	switch {
	case payErr != nil:
		session.status = StatusFailed
		if typed := errors.As(payErr); typed != nil {
			session.outcome = typed.Message()
		}
	case mode == ModeRedirect:
		session.status = StatusRedirected
	case result.Payment.Approved():
		session.status = StatusSucceeded
		session.outcome = result.Payment.Message
	default:
		session.status = StatusFailed
		session.outcome = result.Payment.Message
	}
	status := session.status
	result.View = session.viewLocked()
	session.mu.Unlock()

	if payErr != nil {
		return nil, payErr
	}
	if status == StatusSucceeded {
		m.carts.Clear(ctx, session.CartSessionID)
		if m.logg != nil {
			m.logg.Info(m.logg.WithCartSession(ctx, session.CartSessionID), "payment approved, cart cleared")
		}
	}
	return result, nil
}

// draftLocked snapshots the order for the gateway. Caller holds session.mu.
func (m *Manager) draftLocked(session *Session) payments.PreferenceInput {
	lines := make([]payments.LineItem, 0, len(session.items))
	for _, item := range session.items {
		lines = append(lines, payments.LineItem{
			ID:        item.Key(),
			Title:     item.Title,
			Quantity:  item.Qty,
			UnitPrice: item.Price,
		})
	}
	input := payments.PreferenceInput{
		Items:        lines,
		Buyer:        session.buyer,
		Address:      session.address,
		ShippingCost: session.shippingCostLocked(),
		Total:        session.total,
	}
	if session.quote != nil && session.quote.Success {
		input.ShippingService = session.quote.Service
		input.ShippingDays = session.quote.DeliveryDays
	}
	return input
}

func (m *Manager) session(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "checkout session not found")
	}
	if m.now().After(session.expiresAt) {
		delete(m.sessions, sessionID)
		return nil, errors.New(errors.CodeNotFound, "checkout session expired")
	}
	session.expiresAt = m.now().Add(m.cfg.SessionTTL)
	return session, nil
}

// refresh re-reads the cart so totals track the latest contents even when no
// change notification fired (e.g. a different process mutated the store).
func (m *Manager) refresh(ctx context.Context, session *Session) {
	items := m.carts.Items(ctx, session.CartSessionID)
	session.mu.Lock()
	session.recomputeLocked(items)
	session.mu.Unlock()
}

// cartChanged is the cart store subscription callback. Totals recompute for
// every session bound to the changed cart.
func (m *Manager) cartChanged(cartSessionID string) {
	m.mu.Lock()
	affected := make([]*Session, 0, 1)
	for _, session := range m.sessions {
		if session.CartSessionID == cartSessionID {
			affected = append(affected, session)
		}
	}
	m.mu.Unlock()

	ctx := context.Background()
	for _, session := range affected {
		items := m.carts.Items(ctx, cartSessionID)
		session.mu.Lock()
		session.recomputeLocked(items)
		session.mu.Unlock()
	}
}
