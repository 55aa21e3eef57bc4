package payment

import (
	"context"
	"encoding/json"
	"fmt"
)

// CardGateway talks to the card-network backend. Authorize creates a
// provisional intent server-side before the shopper enters card details;
// Confirm finalizes the intent against a tokenized card and returns a
// terminal status.
type CardGateway struct {
	client *gatewayClient
}

func NewCardGateway(baseURL, apiKey string) *CardGateway {
	return &CardGateway{client: newGatewayClient("card-gateway", baseURL, apiKey)}
}

type cardIntentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Charge string `json:"charge,omitempty"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Card struct {
		Brand string `json:"brand"`
		Last4 string `json:"last4"`
	} `json:"card"`
}

func (g *CardGateway) Authorize(ctx context.Context, amount int64, currency string, meta Metadata) (*Authorization, error) {
	body := map[string]any{
		"amount":   amount,
		"currency": currency,
		"metadata": map[string]string{
			"checkout_id": meta.CheckoutID,
			"user_id":     meta.UserID,
		},
	}
	data, err := g.client.post(ctx, "/v1/payment_intents", meta.CheckoutID, body)
	if err != nil {
		return nil, err
	}

	var resp cardIntentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode intent response: %w", err)
	}

	return &Authorization{
		ID:         resp.ID,
		Status:     StatusRequiresAction, // awaiting card details
		Amount:     amount,
		Currency:   currency,
		GatewayRef: resp.ID,
	}, nil
}

func (g *CardGateway) Confirm(ctx context.Context, auth *Authorization, details ConfirmDetails) (*Confirmation, error) {
	body := map[string]any{"card_token": details.CardToken}
	data, err := g.client.post(ctx, "/v1/payment_intents/"+auth.ID+"/confirm", "", body)
	if err != nil {
		return nil, err
	}

	var resp cardIntentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode confirm response: %w", err)
	}

	conf := &Confirmation{
		GatewayRef: resp.Charge,
		Descriptor: Card{Brand: resp.Card.Brand, Last4: resp.Card.Last4},
	}
	switch resp.Status {
	case "succeeded":
		conf.Status = StatusSucceeded
	case "requires_action":
		conf.Status = StatusRequiresAction
	default:
		conf.Status = StatusFailed
		conf.Reason = resp.Error.Message
		if conf.Reason == "" {
			conf.Reason = "card declined"
		}
	}
	return conf, nil
}
