package model

import (
	"fmt"
	"strings"
)

// PaymentMethod is a label describing how the customer paid. It is not a
// gateway integration; no money moves through this system.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentPix        PaymentMethod = "PIX"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

// ParsePaymentMethod normalizes and validates a client-supplied payment
// method label.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))) {
	case PaymentCash:
		return PaymentCash, nil
	case PaymentPix:
		return PaymentPix, nil
	case PaymentDebitCard:
		return PaymentDebitCard, nil
	case PaymentCreditCard:
		return PaymentCreditCard, nil
	}
	return "", fmt.Errorf("unknown payment method %q", raw)
}
