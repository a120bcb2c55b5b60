package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	for raw, want := range map[string]PaymentMethod{
		"CASH":         PaymentCash,
		"pix":          PaymentPix,
		"  Debit_Card": PaymentDebitCard,
		"credit_card ": PaymentCreditCard,
	} {
		got, err := ParsePaymentMethod(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	for _, raw := range []string{"", "BARTER", "CARD", "cash money"} {
		_, err := ParsePaymentMethod(raw)
		assert.Error(t, err, raw)
	}
}
