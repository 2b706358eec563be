package usecase

import (
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
)

// operationValues are the fields read out of an operation context.
type operationValues struct {
	amount  entity.AmountAttribute
	account string
}

// operationKind binds an operation name to how its code and message are built.
// Adding an operation is one entry in operationKinds plus a "<name>.smsText"
// message in every catalog.
type operationKind struct {
	// check reports request-level problems with the form data.
	check func(oc entity.OperationContext) []validator.FieldError
	// extract reads the values the code and message depend on.
	extract func(oc entity.OperationContext) (operationValues, error)
	// codeItems are the ordered digest inputs.
	codeItems func(oc entity.OperationContext, v operationValues) []string
	// messageArgs are the template arguments. The code is appended last.
	messageArgs func(v operationValues) []string
}

var operationKinds = map[string]operationKind{
	entity.OperationLogin: {
		check: func(entity.OperationContext) []validator.FieldError { return nil },
		extract: func(entity.OperationContext) (operationValues, error) {
			return operationValues{}, nil
		},
		codeItems: func(oc entity.OperationContext, _ operationValues) []string {
			return []string{oc.Name}
		},
		messageArgs: func(operationValues) []string { return nil },
	},
	entity.OperationAuthorizePayment: {
		check:   checkPayment,
		extract: extractPayment,
		codeItems: func(_ entity.OperationContext, v operationValues) []string {
			return []string{v.amount.PlainAmount(), v.amount.Currency, v.account}
		},
		messageArgs: func(v operationValues) []string {
			return []string{v.amount.PlainAmount(), v.amount.Currency, v.account}
		},
	},
}

func lookupOperation(name string) (operationKind, error) {
	kind, ok := operationKinds[name]
	if !ok {
		return operationKind{}, goerror.NewOperationContext("Unsupported operation: " + name)
	}
	return kind, nil
}

func extractPayment(oc entity.OperationContext) (operationValues, error) {
	amount, err := oc.FormData.Amount(entity.ParameterIDAmount)
	if err != nil || amount.Currency == "" {
		return operationValues{}, goerror.NewOperationContext("Missing amount in operation context")
	}

	account, err := oc.FormData.KeyValue(entity.ParameterIDAccount)
	if err != nil || account == "" {
		return operationValues{}, goerror.NewOperationContext("Missing account in operation context")
	}

	return operationValues{amount: amount, account: account}, nil
}

func checkPayment(oc entity.OperationContext) []validator.FieldError {
	const field = "operation_context"
	var out []validator.FieldError

	amount, err := oc.FormData.Amount(entity.ParameterIDAmount)
	switch {
	case err != nil:
		out = append(out, validator.FieldError{Field: field, Key: "smsAuthorization.amount.empty"})
	default:
		if !amount.Amount.IsPositive() {
			out = append(out, validator.FieldError{Field: field, Key: "smsAuthorization.amount.invalid"})
		}
		if amount.Currency == "" {
			out = append(out, validator.FieldError{Field: field, Key: "smsAuthorization.currency.empty"})
		}
	}

	if account, err := oc.FormData.KeyValue(entity.ParameterIDAccount); err != nil || account == "" {
		out = append(out, validator.FieldError{Field: field, Key: "smsAuthorization.account.empty"})
	}

	return out
}
