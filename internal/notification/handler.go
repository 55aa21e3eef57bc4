package notification

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/events"
)

// Handler processes events for sending notifications
type Handler struct {
	emailService *email.Service
	operatorAddr string
	logger       zerolog.Logger
}

// NewHandler creates a new notification handler. operatorAddr receives
// alert mail for events that require manual reconciliation.
func NewHandler(emailSvc *email.Service, operatorAddr string, logger zerolog.Logger) *Handler {
	return &Handler{
		emailService: emailSvc,
		operatorAddr: operatorAddr,
		logger:       logger,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var envelope events.Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		h.logger.Error().Err(err).Msg("failed to unmarshal event envelope")
		return err
	}

	switch envelope.Type {
	case events.TypeOrderConfirmed:
		return h.handleOrderConfirmed(envelope)
	case events.TypeInventoryRaceFailure, events.TypePaymentCapturedUnrecorded:
		return h.handleOperatorAlert(envelope)
	default:
		return nil
	}
}

func (h *Handler) handleOrderConfirmed(envelope events.Envelope) error {
	var e events.OrderConfirmed
	if err := json.Unmarshal(envelope.Data, &e); err != nil {
		h.logger.Error().Err(err).Str("event_id", envelope.ID).Msg("failed to unmarshal order.confirmed payload")
		return err
	}

	if e.Email == "" {
		h.logger.Warn().Str("order_id", e.OrderID).Msg("no shopper email on order, skipping confirmation mail")
		return nil
	}

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		emailItems[i] = email.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err := h.emailService.SendOrderConfirmation(e.Email, e.OrderID, e.Total, emailItems); err != nil {
		h.logger.Error().Err(err).Str("order_id", e.OrderID).Str("to", e.Email).Msg("failed to send confirmation email")
		return err
	}

	h.logger.Info().Str("order_id", e.OrderID).Str("to", e.Email).Msg("order confirmation email sent")
	return nil
}

func (h *Handler) handleOperatorAlert(envelope events.Envelope) error {
	if h.operatorAddr == "" {
		h.logger.Warn().Str("event_type", envelope.Type).Str("event_id", envelope.ID).
			Msg("no operator address configured, alert dropped")
		return nil
	}

	if err := h.emailService.SendOperatorAlert(h.operatorAddr, envelope.Type, envelope.ID, envelope.Data); err != nil {
		h.logger.Error().Err(err).Str("event_type", envelope.Type).Str("event_id", envelope.ID).
			Msg("failed to send operator alert")
		return err
	}

	h.logger.Info().Str("event_type", envelope.Type).Str("event_id", envelope.ID).Msg("operator alert sent")
	return nil
}
