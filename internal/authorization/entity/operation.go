package entity

import (
	"errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var ErrAttributeMissing = errors.New("authorization: operation attribute is missing")

const (
	// OperationLogin is a plain login step-up.
	OperationLogin = "login"
	// OperationAuthorizePayment authorizes a single payment.
	OperationAuthorizePayment = "authorize_payment"
)

const (
	ParameterIDAmount  = "operation.amount"
	ParameterIDAccount = "operation.account"
)

type ParameterType string

const (
	ParameterAmount   ParameterType = "AMOUNT"
	ParameterKeyValue ParameterType = "KEY_VALUE"
	ParameterNote     ParameterType = "NOTE"
	ParameterMessage  ParameterType = "MESSAGE"
)

func (t ParameterType) Valid() bool {
	switch t {
	case ParameterAmount, ParameterKeyValue, ParameterNote, ParameterMessage:
		return true
	default:
		return false
	}
}

// Parameter is one typed form data field. Only the fields matching Type are set.
type Parameter struct {
	Type     ParameterType
	ID       string
	Amount   *decimal.Decimal
	Currency string
	Value    string
	Note     string
	Message  string
}

type FormData struct {
	Title      string
	Greeting   string
	Summary    string
	Parameters []Parameter
}

// Find returns the first parameter with the given type and id.
func (f FormData) Find(t ParameterType, id string) (Parameter, bool) {
	return lo.Find(f.Parameters, func(p Parameter) bool {
		return p.Type == t && p.ID == id
	})
}

// AmountAttribute is an amount with its currency.
type AmountAttribute struct {
	Amount   decimal.Decimal
	Currency string
}

// PlainAmount renders the amount without exponent, keeping its scale ("100.00" stays "100.00").
func (a AmountAttribute) PlainAmount() string {
	if exp := a.Amount.Exponent(); exp < 0 {
		return a.Amount.StringFixed(-exp)
	}
	return a.Amount.String()
}

// Amount returns the AMOUNT parameter with the given id.
func (f FormData) Amount(id string) (AmountAttribute, error) {
	p, ok := f.Find(ParameterAmount, id)
	if !ok || p.Amount == nil {
		return AmountAttribute{}, ErrAttributeMissing
	}
	return AmountAttribute{Amount: *p.Amount, Currency: p.Currency}, nil
}

// KeyValue returns the value of the KEY_VALUE parameter with the given id.
func (f FormData) KeyValue(id string) (string, error) {
	p, ok := f.Find(ParameterKeyValue, id)
	if !ok {
		return "", ErrAttributeMissing
	}
	return p.Value, nil
}

// OperationContext is the upstream view of one transaction. It is read-only here.
type OperationContext struct {
	ID       string
	Name     string
	Data     string
	FormData FormData
}
