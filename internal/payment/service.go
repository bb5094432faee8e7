package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/payum-server/payum_server/internal/notification"
)

// Service manages the payment lifecycle.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a payment service instance.
func NewService(repo Repository, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// CreateInput captures data required to create a payment.
type CreateInput struct {
	Number       string
	GatewayName  string
	TotalAmount  int64
	CurrencyCode string
	ClientEmail  string
	ClientID     string
	Description  string
	Details      map[string]any
}

// UpdateInput lists the fields to change; nil fields keep their value.
type UpdateInput struct {
	Number       *string
	GatewayName  *string
	TotalAmount  *int64
	CurrencyCode *string
	ClientEmail  *string
	ClientID     *string
	Description  *string
	Details      map[string]any
}

// Create stores a new payment in the new status. The number defaults to the id.
func (s *Service) Create(ctx context.Context, input CreateInput) (Payment, error) {
	now := s.now().UTC()
	p := Payment{
		ID:           uuid.NewString(),
		Number:       input.Number,
		Status:       StatusNew,
		GatewayName:  input.GatewayName,
		TotalAmount:  input.TotalAmount,
		CurrencyCode: input.CurrencyCode,
		ClientEmail:  input.ClientEmail,
		ClientID:     input.ClientID,
		Description:  input.Description,
		Details:      input.Details,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Number == "" {
		p.Number = p.ID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Payment{}, err
	}
	s.notify(ctx, notification.KindPaymentCreated, p)
	return p, nil
}

// Get retrieves a payment.
func (s *Service) Get(ctx context.Context, id string) (Payment, error) {
	return s.repo.Get(ctx, id)
}

// Update applies the set fields of input to the payment.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}

	set(&p.Number, input.Number)
	set(&p.GatewayName, input.GatewayName)
	set(&p.CurrencyCode, input.CurrencyCode)
	set(&p.ClientEmail, input.ClientEmail)
	set(&p.ClientID, input.ClientID)
	set(&p.Description, input.Description)
	if input.TotalAmount != nil {
		p.TotalAmount = *input.TotalAmount
	}
	if input.Details != nil {
		p.Details = input.Details
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return Payment{}, err
	}
	s.notify(ctx, notification.KindPaymentUpdated, p)
	return p, nil
}

// Delete removes a payment.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, notification.KindPaymentDeleted, p)
	return nil
}

// All lists payments in creation order.
func (s *Service) All(ctx context.Context) ([]Payment, error) {
	return s.repo.List(ctx)
}

func (s *Service) notify(ctx context.Context, kind string, p Payment) {
	if s.notifier == nil {
		return
	}
	msg := notification.Message{Kind: kind, Destination: p.ClientEmail, Subject: p.ID}
	if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("payment notification failed", slog.String("kind", kind), slog.String("payment_id", p.ID), slog.Any("error", err))
	}
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
