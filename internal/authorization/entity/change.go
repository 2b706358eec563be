package entity

type FormDataChangeType string

const (
	FormDataChangeBankAccountChoice FormDataChangeType = "BANK_ACCOUNT_CHOICE"
	FormDataChangeAuthMethodChoice  FormDataChangeType = "AUTH_METHOD_CHOICE"
)

// FormDataChange is a user choice made on the operation form.
type FormDataChange struct {
	Type             FormDataChangeType
	BankAccountID    string
	ChosenAuthMethod string
}

type OperationChange string

const (
	OperationChangeDone     OperationChange = "DONE"
	OperationChangeCanceled OperationChange = "CANCELED"
	OperationChangeFailed   OperationChange = "FAILED"
)

func (c OperationChange) Valid() bool {
	switch c {
	case OperationChangeDone, OperationChangeCanceled, OperationChangeFailed:
		return true
	default:
		return false
	}
}
