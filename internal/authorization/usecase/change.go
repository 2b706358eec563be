package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
)

type FormDataChangedInput struct {
	UserID           string
	OperationContext entity.OperationContext
	Change           entity.FormDataChange
}

// FormDataChanged records a choice the user made on the operation form.
func (s *Usecase) FormDataChanged(ctx context.Context, in FormDataChangedInput) error {
	ctx, span := s.startSpan(ctx, "FormDataChanged")
	defer span.End()

	switch in.Change.Type {
	case entity.FormDataChangeBankAccountChoice:
		slog.InfoContext(ctx, "bank account chosen",
			"user_id", in.UserID,
			"operation_id", in.OperationContext.ID,
			"bank_account_id", in.Change.BankAccountID,
		)
	case entity.FormDataChangeAuthMethodChoice:
		slog.InfoContext(ctx, "authentication method chosen",
			"user_id", in.UserID,
			"operation_id", in.OperationContext.ID,
			"auth_method", in.Change.ChosenAuthMethod,
		)
	default:
		slog.WarnContext(ctx, "invalid form data change type", "type", in.Change.Type, "operation_id", in.OperationContext.ID)
		return goerror.NewInvalidInput(nil, "type", "formDataChange.type.invalid")
	}

	return nil
}

type OperationChangedInput struct {
	UserID           string
	OperationContext entity.OperationContext
	Change           entity.OperationChange
}

// OperationChanged records a status change of the operation.
func (s *Usecase) OperationChanged(ctx context.Context, in OperationChangedInput) error {
	ctx, span := s.startSpan(ctx, "OperationChanged")
	defer span.End()

	if !in.Change.Valid() {
		slog.WarnContext(ctx, "invalid operation change", "change", in.Change, "operation_id", in.OperationContext.ID)
		return goerror.NewInvalidInput(nil, "operation_change", "operationChange.invalid")
	}

	slog.InfoContext(ctx, "operation changed",
		"user_id", in.UserID,
		"operation_id", in.OperationContext.ID,
		"status", string(in.Change),
	)
	return nil
}
