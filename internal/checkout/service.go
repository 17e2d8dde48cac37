package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-api/internal/cart"
	"github.com/noah-isme/checkout-api/internal/events"
	"github.com/noah-isme/checkout-api/internal/lock"
	"github.com/noah-isme/checkout-api/internal/obs"
	"github.com/noah-isme/checkout-api/internal/order"
	"github.com/noah-isme/checkout-api/internal/pricing"
	"github.com/noah-isme/checkout-api/internal/shipping"
)

const (
	defaultSubmitTimeout = 30 * time.Second
	defaultSubmitLockTTL = 45 * time.Second
)

// Service orchestrates checkout sessions: it owns their lifecycle in the
// store, prices them, walks them through the steps and hands the finalized
// form to the order collaborator exactly once.
type Service struct {
	Store     Store
	Carts     cart.Client
	Catalog   *shipping.Catalog
	Submitter order.Submitter
	Locks     lock.Locker
	Events    *events.Bus

	TaxBps        int
	Currency      string
	SubmitTimeout time.Duration
	SubmitLockTTL time.Duration

	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Start opens a new session against a frozen snapshot of the given cart.
// Billing defaults to mirroring the shipping address.
func (s *Service) Start(ctx context.Context, cartID string) (Session, error) {
	snap, err := s.Carts.Snapshot(ctx, cartID)
	if err != nil {
		return Session{}, err
	}
	if err := snap.Validate(); err != nil {
		return Session{}, err
	}
	currency := snap.Currency
	if currency == "" {
		currency = s.Currency
	}
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		Step:      StepInformation,
		Form:      Form{Billing: BillingAddress{SameAsShipping: true}},
		Cart:      snap,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess, err = s.reprice(sess)
	if err != nil {
		return Session{}, err
	}
	if err := s.Store.Put(ctx, sess); err != nil {
		return Session{}, err
	}
	if obs.SessionsStartedTotal != nil {
		obs.SessionsStartedTotal.Inc()
	}
	s.emit(ctx, events.TopicSessionStarted, sess.ID, map[string]any{"cartId": snap.ID})
	return sess, nil
}

// Get loads a session, recomputing the pricing breakdown when it was
// invalidated by an earlier mutation.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Pricing == nil {
		sess, err = s.reprice(sess)
		if err != nil {
			return Session{}, err
		}
		if err := s.Store.Put(ctx, sess); err != nil {
			return Session{}, err
		}
	}
	return sess, nil
}

// Update applies form mutations to a session and persists the result. Events
// are applied in order; the first failure aborts without persisting.
func (s *Service) Update(ctx context.Context, id string, evs ...Event) (Session, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	for _, ev := range evs {
		sess, err = Apply(sess, ev)
		if err != nil {
			return Session{}, err
		}
	}
	if sess.Pricing == nil {
		sess, err = s.reprice(sess)
		if err != nil {
			return Session{}, err
		}
	}
	sess.UpdatedAt = s.now()
	if err := s.Store.Put(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SelectShippingMethod validates the method against the catalog, records it
// and reprices the session.
func (s *Service) SelectShippingMethod(ctx context.Context, id, methodID string) (Session, error) {
	if _, err := s.Catalog.Lookup(methodID); err != nil {
		return Session{}, err
	}
	return s.Update(ctx, id, SelectShippingMethod{MethodID: methodID})
}

// Advance moves the session one step forward after its validation gate.
func (s *Service) Advance(ctx context.Context, id string) (Session, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	from := sess.Step
	next, err := Apply(sess, Advance{})
	if err != nil {
		recordAdvance(from, "rejected")
		return Session{}, err
	}
	if next.Pricing == nil {
		next, err = s.reprice(next)
		if err != nil {
			return Session{}, err
		}
	}
	next.UpdatedAt = s.now()
	if err := s.Store.Put(ctx, next); err != nil {
		return Session{}, err
	}
	recordAdvance(from, "ok")
	return next, nil
}

// Retreat moves the session one step back, keeping all collected fields.
func (s *Service) Retreat(ctx context.Context, id string) (Session, error) {
	return s.Update(ctx, id, Retreat{})
}

// Abandon deletes the session. An in-flight submission notices the deletion
// when it reloads the session and discards its result.
func (s *Service) Abandon(ctx context.Context, id string) error {
	if _, err := s.Store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.emit(ctx, events.TopicSessionAbandoned, id, nil)
	return nil
}

// Submit hands the finalized form to the order collaborator. The session must
// be at review with terms accepted. A per-session lock plus the submitting
// flag guarantee at most one outstanding order call; the call itself is
// detached from the request context so a dropped client connection cannot
// strand the session mid-submit.
func (s *Service) Submit(ctx context.Context, id string) (Session, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	switch {
	case sess.Step == StepSubmitted:
		return sess, ErrSessionComplete
	case sess.Submitting:
		return sess, ErrSubmitInFlight
	case sess.Step != StepReview:
		return sess, ErrNotAtReview
	case !sess.Form.AcceptsTerms:
		return sess, ErrTermsNotAccepted
	}

	release, ok, err := s.Locks.TryAcquire(ctx, "checkout:submit:"+id, s.submitLockTTL())
	if err != nil {
		return Session{}, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !ok {
		return sess, ErrSubmitInFlight
	}
	defer release()

	if sess.Pricing == nil {
		sess, err = s.reprice(sess)
		if err != nil {
			return Session{}, err
		}
	}
	req, err := s.buildOrderRequest(sess)
	if err != nil {
		return Session{}, err
	}

	sess.Submitting = true
	sess.UpdatedAt = s.now()
	if err := s.Store.Put(ctx, sess); err != nil {
		return Session{}, err
	}

	// Detached from the inbound request: a client disconnect must not cancel
	// an order call that may already have side effects downstream.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout())
	defer cancel()

	started := time.Now()
	res, submitErr := s.Submitter.Submit(callCtx, req)
	elapsed := float64(time.Since(started).Milliseconds())

	// The submit deadline bounds the order call only. Bookkeeping afterwards
	// must still run once that deadline has expired, or a timed-out session
	// would stay frozen with the submitting flag set.
	postCtx := context.WithoutCancel(callCtx)
	current, loadErr := s.Store.Get(postCtx, id)
	if errors.Is(loadErr, ErrNotFound) {
		// Abandoned while the call was outstanding: discard the outcome.
		recordSubmit("abandoned", elapsed)
		zerolog.Ctx(ctx).Warn().Str("session_id", id).Msg("submission result discarded for abandoned session")
		return Session{}, ErrAbandoned
	}
	if loadErr != nil {
		return Session{}, loadErr
	}

	current.Submitting = false
	current.UpdatedAt = s.now()
	if submitErr != nil {
		if putErr := s.Store.Put(postCtx, current); putErr != nil {
			return Session{}, errors.Join(submitErr, putErr)
		}
		recordSubmit("failure", elapsed)
		var subErr *order.SubmissionError
		if !errors.As(submitErr, &subErr) {
			subErr = order.Failure("order submission failed", submitErr)
		}
		s.emit(ctx, events.TopicSubmissionFailed, id, map[string]any{"reason": subErr.Reason})
		return current, subErr
	}

	current.Step = StepSubmitted
	current.OrderID = res.OrderID
	if err := s.Store.Put(postCtx, current); err != nil {
		// The order exists downstream; keep its id in the log so the stuck
		// session can be reconciled against the order service.
		zerolog.Ctx(ctx).Error().Err(err).
			Str("session_id", id).
			Str("order_id", res.OrderID).
			Msg("persist submitted session")
		return Session{}, err
	}
	recordSubmit("success", elapsed)
	s.emit(ctx, events.TopicOrderSubmitted, id, map[string]any{"orderId": res.OrderID})
	return current, nil
}

func (s *Service) submitTimeout() time.Duration {
	if s.SubmitTimeout > 0 {
		return s.SubmitTimeout
	}
	return defaultSubmitTimeout
}

func (s *Service) submitLockTTL() time.Duration {
	if s.SubmitLockTTL > 0 {
		return s.SubmitLockTTL
	}
	return defaultSubmitLockTTL
}

// reprice recomputes the breakdown from the frozen cart, the selected
// shipping method and the configured tax rate.
func (s *Service) reprice(sess Session) (Session, error) {
	var shipCost pricing.Money
	if sess.Form.ShippingMethodID != "" {
		m, err := s.Catalog.Lookup(sess.Form.ShippingMethodID)
		if err != nil {
			return sess, err
		}
		shipCost = m.Price
	}
	b := pricing.Compute(sess.Cart.PricingItems(), shipCost, s.TaxBps)
	sess.Pricing = &b
	return sess, nil
}

func (s *Service) buildOrderRequest(sess Session) (order.Request, error) {
	if sess.Pricing == nil {
		return order.Request{}, errors.New("checkout: pricing not computed")
	}
	lines := make([]order.Line, 0, len(sess.Cart.Items))
	for _, it := range sess.Cart.Items {
		lines = append(lines, order.Line{
			ItemID:    it.ID,
			Name:      it.Name,
			Qty:       it.Qty,
			UnitPrice: it.UnitPrice,
		})
	}
	return order.Request{
		SessionID:        sess.ID,
		Currency:         sess.Currency,
		Customer:         order.Contact(sess.Form.Customer),
		ShippingAddress:  order.Address(sess.Form.ShippingAddress),
		BillingAddress:   order.Address(sess.Form.EffectiveBilling()),
		PaymentMethod:    sess.Form.Payment.Method,
		ShippingMethodID: sess.Form.ShippingMethodID,
		Instructions:     sess.Form.Instructions,
		Newsletter:       sess.Form.Newsletter,
		Lines:            lines,
		Pricing:          *sess.Pricing,
	}, nil
}

func (s *Service) emit(ctx context.Context, topic, sessionID string, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, sessionID, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("emit checkout event")
	}
}

func recordAdvance(from Step, result string) {
	if obs.StepAdvanceTotal != nil {
		obs.StepAdvanceTotal.WithLabelValues(string(from), result).Inc()
	}
}

func recordSubmit(result string, elapsedMs float64) {
	if obs.SubmitTotal != nil {
		obs.SubmitTotal.WithLabelValues(result).Inc()
	}
	if obs.SubmitLatency != nil {
		obs.SubmitLatency.WithLabelValues(result).Observe(elapsedMs)
	}
}
