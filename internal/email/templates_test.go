package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{4500, "45.00"},
		{123456, "1,234.56"},
		{1234567890, "12,345,678.90"},
		{-4500, "-45.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.minor))
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody("ord-1", 10080, []OrderItem{
		{Name: "Hoodie", Quantity: 2, UnitPrice: 4500},
	})

	assert.Contains(t, body, "ord-1")
	assert.Contains(t, body, "Hoodie")
	assert.Contains(t, body, "45.00")  // unit price
	assert.Contains(t, body, "90.00")  // line total
	assert.Contains(t, body, "100.80") // grand total
}

func TestBuildOperatorAlertBody(t *testing.T) {
	body := BuildOperatorAlertBody("payment.captured_unrecorded", "evt-1", []byte(`{"checkout_id":"co-1"}`))

	assert.Contains(t, body, "payment.captured_unrecorded")
	assert.Contains(t, body, "evt-1")
	assert.Contains(t, body, `"checkout_id":"co-1"`)
}
