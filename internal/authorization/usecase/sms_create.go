package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
)

type CreateSMSAuthorizationInput struct {
	UserID           string
	OrganizationID   string
	OperationContext *entity.OperationContext
	Lang             string
}

type CreateSMSAuthorizationOutput struct {
	MessageID string
}

type createSMSRules struct {
	UserID         string `key:"smsAuthorization.userId" validate:"required,max=30"`
	OrganizationID string `key:"smsAuthorization.organizationId" validate:"required,max=256"`
	OperationName  string `key:"smsAuthorization.operationName" validate:"required,max=32"`
}

func (s *Usecase) CreateSMSAuthorization(ctx context.Context, in CreateSMSAuthorizationInput) (*CreateSMSAuthorizationOutput, error) {
	ctx, span := s.startSpan(ctx, "CreateSMSAuthorization")
	defer span.End()

	in.UserID = strings.TrimSpace(in.UserID)
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)

	if err := s.validateCreateSMS(in); err != nil {
		slog.WarnContext(ctx, "create sms authorization request is invalid", "error", err)
		return nil, err
	}

	oc := *in.OperationContext
	kind, err := lookupOperation(oc.Name)
	if err != nil {
		slog.WarnContext(ctx, "unsupported operation", "operation_id", oc.ID, "operation_name", oc.Name)
		return nil, err
	}

	values, err := kind.extract(oc)
	if err != nil {
		slog.WarnContext(ctx, "failed to extract operation values", "operation_id", oc.ID, "error", err)
		return nil, err
	}

	code, err := s.generator.Generate(kind.codeItems(oc, values))
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate authorization code", "operation_id", oc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	lang := strings.TrimSpace(in.Lang)
	if lang == "" {
		lang = s.defaultLang
	}

	args := append(kind.messageArgs(values), code.Value)
	text, err := s.catalog.Message(lang, oc.Name+".smsText", args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to compose sms text", "operation_id", oc.ID, "lang", lang, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	record := entity.SMSAuthorization{
		MessageID:         s.uuid.Generate(),
		OperationID:       oc.ID,
		UserID:            in.UserID,
		OrganizationID:    in.OrganizationID,
		OperationName:     oc.Name,
		AuthorizationCode: code.Value,
		Salt:              code.Salt,
		MessageText:       text,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.expiration),
	}

	if err := s.store.CreateSMSAuthorization(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to store sms authorization", "operation_id", oc.ID, "error", err)
		return nil, goerror.NewRemote(err)
	}

	if err := s.sender.SendAuthorizationSMS(ctx, SMSDelivery{
		MessageID:        record.MessageID,
		UserID:           record.UserID,
		OrganizationID:   record.OrganizationID,
		MessageText:      record.MessageText,
		OperationContext: oc,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver sms authorization", "message_id", record.MessageID, "operation_id", oc.ID, "error", err)
		return nil, goerror.NewBusiness("smsAuthorization.deliveryFailed", goerror.CodeSMSAuthorizationFailed)
	}

	slog.InfoContext(ctx, "sms authorization created", "message_id", record.MessageID, "operation_id", oc.ID, "operation_name", oc.Name)

	return &CreateSMSAuthorizationOutput{MessageID: record.MessageID}, nil
}

func (s *Usecase) validateCreateSMS(in CreateSMSAuthorizationInput) error {
	rules := createSMSRules{UserID: in.UserID, OrganizationID: in.OrganizationID}
	if in.OperationContext != nil {
		rules.OperationName = strings.TrimSpace(in.OperationContext.Name)
	}

	var fields validator.ValidationError
	if err := s.validator.Validate(rules); err != nil {
		if !errors.As(err, &fields) {
			return goerror.NewServer(err)
		}
	}

	// the operation name rule only applies to a present context
	if in.OperationContext == nil {
		fields = dropField(fields, "operation_name")
		fields = append(fields, validator.FieldError{Field: "operation_context", Key: "smsAuthorization.operationContext.missing"})
	} else if kind, ok := operationKinds[in.OperationContext.Name]; ok {
		fields = append(fields, kind.check(*in.OperationContext)...)
	}

	if len(fields) == 0 {
		return nil
	}
	return goerror.NewInvalidFields(fields.Error(), fields.Values())
}

func dropField(fields validator.ValidationError, name string) validator.ValidationError {
	out := fields[:0]
	for _, fe := range fields {
		if fe.Field != name {
			out = append(out, fe)
		}
	}
	return out
}
