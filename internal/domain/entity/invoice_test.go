package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPaymentMethod(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"cash", "Cash", PaymentMethodCash},
		{"cash in sentence", "Paid in CASH on delivery", PaymentMethodCash},
		{"cheque", "Cheque No 4412", PaymentMethodCheque},
		{"chq abbreviation", "CHQ 4412", PaymentMethodCheque},
		{"bank transfer", "Paid by Bank Transfer", PaymentMethodBankTransfer},
		{"transfer only", "wire transfer", PaymentMethodBankTransfer},
		{"credit card", "credit card", PaymentMethodCard},
		{"mpesa", "Mpesa till 123456", PaymentMethodMpesa},
		{"credit", "on credit 30 days", PaymentMethodOnCredit},
		{"delivery", "pay on delivery", PaymentMethodOnDelivery},
		{"cod", "COD", PaymentMethodOnDelivery},
		{"empty defaults", "", PaymentMethodOnDelivery},
		{"unknown defaults", "barter", PaymentMethodOnDelivery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPaymentMethod(tt.text))
		})
	}
}
