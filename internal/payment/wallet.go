package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// WalletGateway talks to the wallet-redirect backend. Authorize creates an
// order with the remote provider; the shopper approves it out-of-band
// (redirect or popup) and Confirm captures it afterwards. A shopper backing
// out during the redirect is a distinct terminal outcome, not an error.
type WalletGateway struct {
	client     *gatewayClient
	walletType string
}

func NewWalletGateway(baseURL, apiKey, walletType string) *WalletGateway {
	return &WalletGateway{
		client:     newGatewayClient("wallet-gateway", baseURL, apiKey),
		walletType: walletType,
	}
}

type walletOrderResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Capture struct {
		ID string `json:"id"`
	} `json:"capture"`
	Reason string `json:"reason,omitempty"`
}

func (g *WalletGateway) Authorize(ctx context.Context, amount int64, currency string, meta Metadata) (*Authorization, error) {
	body := map[string]any{
		"amount":       amount,
		"currency":     strings.ToUpper(currency),
		"reference_id": meta.CheckoutID,
	}
	data, err := g.client.post(ctx, "/v2/checkout/orders", meta.CheckoutID, body)
	if err != nil {
		return nil, err
	}

	var resp walletOrderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode wallet order response: %w", err)
	}

	return &Authorization{
		ID:         resp.ID,
		Status:     StatusRequiresAction, // awaiting out-of-band approval
		Amount:     amount,
		Currency:   currency,
		GatewayRef: resp.ID,
	}, nil
}

func (g *WalletGateway) Confirm(ctx context.Context, auth *Authorization, details ConfirmDetails) (*Confirmation, error) {
	body := map[string]any{"approval_id": details.ApprovalID}
	data, err := g.client.post(ctx, "/v2/checkout/orders/"+auth.ID+"/capture", "", body)
	if err != nil {
		return nil, err
	}

	var resp walletOrderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	conf := &Confirmation{
		GatewayRef: resp.Capture.ID,
		Descriptor: Wallet{Type: g.walletType},
	}
	switch resp.Status {
	case "COMPLETED":
		conf.Status = StatusSucceeded
	case "PENDING_APPROVAL":
		conf.Status = StatusRequiresAction
	case "CANCELLED", "VOIDED":
		conf.Status = StatusCanceled
		conf.Reason = "payment canceled by shopper"
	default:
		conf.Status = StatusFailed
		conf.Reason = resp.Reason
		if conf.Reason == "" {
			conf.Reason = "wallet payment declined"
		}
	}
	return conf, nil
}
