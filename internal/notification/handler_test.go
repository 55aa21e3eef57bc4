package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/events"
)

func newTestHandler() *Handler {
	// The SMTP service is never reached by these cases.
	return NewHandler(email.NewService("localhost", "1025", "noreply@example.com"), "", zerolog.Nop())
}

func envelope(t *testing.T, eventType string, payload any) []byte {
	t.Helper()
	evt, err := events.New(eventType, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return raw
}

func TestHandler_UnknownEventTypeIgnored(t *testing.T) {
	h := newTestHandler()

	raw := envelope(t, "something.else", map[string]string{"k": "v"})

	assert.NoError(t, h.HandleEvent(context.Background(), nil, raw))
}

func TestHandler_MalformedEnvelope(t *testing.T) {
	h := newTestHandler()

	err := h.HandleEvent(context.Background(), nil, []byte("not json"))

	assert.Error(t, err)
}

func TestHandler_OrderConfirmed_NoEmailSkipsSend(t *testing.T) {
	h := newTestHandler()

	raw := envelope(t, events.TypeOrderConfirmed, events.OrderConfirmed{
		OrderID: "ord-1",
		Total:   9000,
	})

	assert.NoError(t, h.HandleEvent(context.Background(), nil, raw))
}

func TestHandler_OperatorAlert_NoAddressDropsQuietly(t *testing.T) {
	h := newTestHandler()

	raw := envelope(t, events.TypePaymentCapturedUnrecorded, events.PaymentCapturedUnrecorded{
		CheckoutID: "co-1",
		FailedStep: "order_header",
	})

	assert.NoError(t, h.HandleEvent(context.Background(), nil, raw))
}
