// Package payment models a payment intent and renders the confirmation text
// returned by the make_payment capability. Nothing here moves money.
package payment

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a request names no currency.
const DefaultCurrency = "USD"

// Request is a transient payment intent built from the agent's tool call.
// Amounts are kept as decimals so that 12.5 renders as "12.5" and 50 as "50".
type Request struct {
	Recipient string
	Amount    decimal.Decimal
	Currency  string

	// amountText overrides Amount when rendering. It is set for NaN and
	// infinities, which have no decimal form.
	amountText string
}

// NewRequest builds a Request, defaulting an empty currency to DefaultCurrency.
// No validation is applied: zero or negative amounts, unknown currency codes
// and empty recipients are carried through as given. NaN and infinite
// amounts render as "nan", "inf" and "-inf" with a zero Amount. Negative zero
// renders as "0".
func NewRequest(recipient string, amount float64, currency string) Request {
	if currency == "" {
		currency = DefaultCurrency
	}
	req := Request{
		Recipient: recipient,
		Currency:  currency,
	}
	if text, ok := nonFiniteText(amount); ok {
		req.amountText = text
		return req
	}
	req.Amount = decimal.NewFromFloat(amount)
	return req
}

func nonFiniteText(amount float64) (string, bool) {
	switch {
	case math.IsNaN(amount):
		return "nan", true
	case math.IsInf(amount, 1):
		return "inf", true
	case math.IsInf(amount, -1):
		return "-inf", true
	}
	return "", false
}

// AmountString renders the amount as it appears in the confirmation.
func (r Request) AmountString() string {
	if r.amountText != "" {
		return r.amountText
	}
	return r.Amount.String()
}

// Confirmation returns the capability's format contract:
// "Initiated payment of {amount} {currency} to {recipient}."
func (r Request) Confirmation() string {
	return fmt.Sprintf("Initiated payment of %s %s to %s.", r.AmountString(), r.Currency, r.Recipient)
}

// MakePayment is the capability itself: a pure formatting stub.
func MakePayment(recipient string, amount float64, currency string) string {
	return NewRequest(recipient, amount, currency).Confirmation()
}
