package service

import (
	"context"
	"time"

	"froid-storefront/internal/cart"
	"froid-storefront/internal/checkout"
	"froid-storefront/internal/events"
	"froid-storefront/internal/model"

	"github.com/rs/zerolog"
)

// Submission outcomes recorded by SubmissionRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeBusy     = "busy"
)

// SubmissionRecorder counts order submissions.
type SubmissionRecorder interface {
	IncSubmission(actor, outcome string)
}

// OrderBackend is the subset of the backend used to place orders.
type OrderBackend interface {
	Profile(ctx context.Context, token string) (*model.Profile, error)
	CreateGuestOrder(ctx context.Context, draft *model.OrderDraft) (*model.OrderConfirmation, error)
	CreateCustomerOrder(ctx context.Context, token string, draft *model.OrderDraft) (*model.OrderConfirmation, error)
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	carts     *cart.Registry
	backend   OrderBackend
	fees      checkout.FeeSchedule
	policy    checkout.Policy
	gate      *checkout.Gate
	publisher events.Publisher
	recorder  SubmissionRecorder
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts *cart.Registry,
	orders OrderBackend,
	fees checkout.FeeSchedule,
	policy checkout.Policy,
	publisher events.Publisher,
	recorder SubmissionRecorder,
	logger zerolog.Logger,
) CheckoutService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	return &checkoutService{
		carts:     carts,
		backend:   orders,
		fees:      fees,
		policy:    policy,
		gate:      checkout.NewGate(),
		publisher: publisher,
		recorder:  recorder,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

func (s *checkoutService) PaymentMethods() []model.PaymentMethod {
	return s.policy.PaymentMethods()
}

// Prefill falls back to the blank form when the profile is unavailable.
func (s *checkoutService) Prefill(ctx context.Context, actor model.Actor) (checkout.Form, error) {
	form := s.policy.DefaultForm()
	if !actor.IsCustomer() {
		return form, nil
	}

	profile, err := s.backend.Profile(ctx, actor.Token)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", actor.CustomerID).Msg("failed to load profile for prefill")
		if form.Email == "" {
			form.Email = actor.Email
		}
		return form, nil
	}

	prefilled := checkout.Prefill(profile)
	prefilled.PaymentMethod = form.PaymentMethod
	return prefilled, nil
}

func (s *checkoutService) Quote(ctx context.Context, sessionKey string, mode model.DeliveryMode) (checkout.Quote, error) {
	if !mode.Valid() {
		return checkout.Quote{}, &checkout.ValidationError{Fields: map[string]string{
			"deliveryMode": "is not a known delivery mode",
		}}
	}

	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return checkout.Quote{}, err
	}
	quote := s.fees.Quote(store.Totals(), mode)
	quote.Submitting = s.gate.Submitting(sessionKey)
	return quote, nil
}

func (s *checkoutService) Submit(ctx context.Context, sessionKey string, actor model.Actor, form checkout.Form) (*model.OrderConfirmation, error) {
	actorLabel := string(actor.Kind)

	store, err := s.carts.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	release, err := s.gate.Acquire(sessionKey)
	if err != nil {
		s.record(actorLabel, OutcomeBusy)
		return nil, err
	}
	defer release()

	form = form.Normalize()
	if err := s.policy.Check(actor, form); err != nil {
		s.record(actorLabel, OutcomeRejected)
		return nil, err
	}

	snap := store.Snapshot()
	if err := checkout.Validate(snap.Lines, form); err != nil {
		s.record(actorLabel, OutcomeRejected)
		s.logger.Debug().Err(err).Str("cart", sessionKey).Msg("checkout validation failed")
		return nil, err
	}

	draft := s.fees.BuildOrderDraft(snap.Lines, form, actor)

	var conf *model.OrderConfirmation
	if actor.IsCustomer() {
		conf, err = s.backend.CreateCustomerOrder(ctx, actor.Token, draft)
	} else {
		conf, err = s.backend.CreateGuestOrder(ctx, draft)
	}
	if err != nil {
		s.record(actorLabel, OutcomeFailed)
		s.logger.Error().
			Err(err).
			Str("cart", sessionKey).
			Str("actor", actorLabel).
			Int64("total_due", draft.TotalDue).
			Msg("failed to create order")
		return nil, checkout.NewSubmitError(err)
	}

	// The order exists from here on; later failures are logged only.
	// Only the ordered quantities leave the cart, so items added while
	// the backend call was in flight stay.
	if _, err := store.RemoveLines(ctx, snap.Lines); err != nil {
		s.logger.Error().Err(err).Str("cart", sessionKey).Msg("failed to clear cart after order")
	}

	event := events.NewOrderSubmitted(actor, draft, conf, time.Now())
	if err := s.publisher.PublishOrderSubmitted(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn().Err(err).Str("order_number", conf.OrderNumber).Msg("failed to publish order event")
	}

	s.record(actorLabel, OutcomeSuccess)
	s.logger.Info().
		Int64("order_id", conf.OrderID).
		Str("order_number", conf.OrderNumber).
		Str("actor", actorLabel).
		Int("line_count", len(draft.Lines)).
		Int64("total_due", draft.TotalDue).
		Msg("order created successfully")

	return conf, nil
}

func (s *checkoutService) record(actor, outcome string) {
	if s.recorder != nil {
		s.recorder.IncSubmission(actor, outcome)
	}
}
