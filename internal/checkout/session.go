package checkout

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matiascortez/vestia-backend/internal/cart"
	"github.com/matiascortez/vestia-backend/internal/shipping"
	"github.com/matiascortez/vestia-backend/pkg/types"
)

// Step is one stage of the checkout flow. Steps are strictly ordered; a step
// is reachable only once every earlier step is confirmed.
type Step string

const (
	StepBuyer    Step = "buyer"
	StepDelivery Step = "delivery"
	StepReview   Step = "review"
	StepPayment  Step = "payment"
)

// Status is the session's display state.
type Status string

const (
	StatusActive     Status = "active"
	StatusCartEmpty  Status = "cart_empty"
	StatusRedirected Status = "redirected"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// PaymentMode selects which gateway operation the terminal pay action uses.
type PaymentMode string

const (
	ModeRedirect PaymentMode = "redirect"
	ModeEmbedded PaymentMode = "embedded"
)

// Session is one shopper's in-flight checkout. All fields are guarded by mu;
// the manager recomputes totals whenever the cart or the quote changes.
type Session struct {
	mu sync.Mutex

	ID            string
	CartSessionID string

	buyer   types.BuyerInfo
	address types.ShippingAddress
	quote   *shipping.Quote

	steps     []Step
	confirmed map[Step]bool

	items    []cart.Item
	subtotal decimal.Decimal
	total    decimal.Decimal

	status    Status
	outcome   string
	inFlight  bool
	expiresAt time.Time
}

// StepView is one step as rendered to the client.
type StepView struct {
	Step      Step `json:"step"`
	Confirmed bool `json:"confirmed"`
	Valid     bool `json:"valid"`
	Current   bool `json:"current"`
}

// View is a consistent snapshot of the session.
type View struct {
	ID           string                `json:"id"`
	Status       Status                `json:"status"`
	Steps        []StepView            `json:"steps,omitempty"`
	Buyer        types.BuyerInfo       `json:"buyer"`
	Address      types.ShippingAddress `json:"address"`
	Quote        *shipping.Quote       `json:"quote,omitempty"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	ShippingCost decimal.Decimal       `json:"shippingCost"`
	Total        decimal.Decimal       `json:"total"`
	CanPay       bool                  `json:"canPay"`
	Outcome      string                `json:"outcome,omitempty"`
}

func newSession(id, cartSessionID string, includeReview bool, expiresAt time.Time) *Session {
	steps := []Step{StepBuyer, StepDelivery}
	if includeReview {
		steps = append(steps, StepReview)
	}
	steps = append(steps, StepPayment)

	return &Session{
		ID:            id,
		CartSessionID: cartSessionID,
		steps:         steps,
		confirmed:     make(map[Step]bool),
		subtotal:      decimal.Zero,
		total:         decimal.Zero,
		status:        StatusActive,
		expiresAt:     expiresAt,
	}
}

// stepValid is the step's validity predicate over its own fields. Review has
// no fields of its own; it only gates on the earlier steps being confirmed.
func (s *Session) stepValid(step Step) bool {
	switch step {
	case StepBuyer:
		return s.buyer.Valid()
	case StepDelivery:
		return s.address.Valid()
	case StepReview:
		return true
	case StepPayment:
		return s.canPayLocked()
	default:
		return false
	}
}

func (s *Session) stepIndex(step Step) int {
	for i, candidate := range s.steps {
		if candidate == step {
			return i
		}
	}
	return -1
}

// priorConfirmedLocked reports whether every step before the given one is
// confirmed.
func (s *Session) priorConfirmedLocked(step Step) bool {
	idx := s.stepIndex(step)
	if idx < 0 {
		return false
	}
	for _, earlier := range s.steps[:idx] {
		if !s.confirmed[earlier] {
			return false
		}
	}
	return true
}

// invalidateFromLocked drops confirmation on the step and everything after
// it. Editing buyer info un-confirms delivery and review.
func (s *Session) invalidateFromLocked(step Step) {
	idx := s.stepIndex(step)
	if idx < 0 {
		return
	}
	for _, later := range s.steps[idx:] {
		delete(s.confirmed, later)
	}
}

func (s *Session) shippingCostLocked() decimal.Decimal {
	if s.quote != nil && s.quote.Success {
		return s.quote.Cost
	}
	return decimal.Zero
}

func (s *Session) recomputeLocked(items []cart.Item) {
	s.items = items
	s.subtotal = cart.Subtotal(items)
	s.total = s.subtotal.Add(s.shippingCostLocked())
	if len(items) == 0 && s.status == StatusActive {
		s.status = StatusCartEmpty
	}
	if len(items) > 0 && s.status == StatusCartEmpty {
		s.status = StatusActive
	}
}

func (s *Session) canPayLocked() bool {
	if s.status != StatusActive || s.inFlight {
		return false
	}
	if !s.total.IsPositive() || len(s.items) == 0 {
		return false
	}
	return s.priorConfirmedLocked(StepPayment)
}

func (s *Session) currentStepLocked() Step {
	for _, step := range s.steps {
		if !s.confirmed[step] {
			return step
		}
	}
	return s.steps[len(s.steps)-1]
}

func (s *Session) viewLocked() View {
	view := View{
		ID:           s.ID,
		Status:       s.status,
		Buyer:        s.buyer,
		Address:      s.address,
		Quote:        s.quote,
		Subtotal:     s.subtotal,
		ShippingCost: s.shippingCostLocked(),
		Total:        s.total,
		CanPay:       s.canPayLocked(),
		Outcome:      s.outcome,
	}
	if s.status == StatusCartEmpty {
		// No step navigation with an empty bag.
		return view
	}
	current := s.currentStepLocked()
	for _, step := range s.steps {
		view.Steps = append(view.Steps, StepView{
			Step:      step,
			Confirmed: s.confirmed[step],
			Valid:     s.stepValid(step),
			Current:   step == current,
		})
	}
	return view
}
