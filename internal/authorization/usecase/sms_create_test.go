package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginContext() *entity.OperationContext {
	return &entity.OperationContext{ID: "op-1", Name: entity.OperationLogin}
}

func paymentContext(amount, currency, account string) *entity.OperationContext {
	params := []entity.Parameter{}
	if amount != "" {
		a := decimal.RequireFromString(amount)
		params = append(params, entity.Parameter{Type: entity.ParameterAmount, ID: entity.ParameterIDAmount, Amount: &a, Currency: currency})
	}
	if account != "" {
		params = append(params, entity.Parameter{Type: entity.ParameterKeyValue, ID: entity.ParameterIDAccount, Value: account})
	}
	return &entity.OperationContext{
		ID:       "op-2",
		Name:     entity.OperationAuthorizePayment,
		FormData: entity.FormData{Title: "Payment", Parameters: params},
	}
}

func TestCreateSMSAuthorization_Login(t *testing.T) {
	s := newSuite(t, 5)

	out, err := s.uc.CreateSMSAuthorization(context.Background(), CreateSMSAuthorizationInput{
		UserID:           " 12345678 ",
		OrganizationID:   "RETAIL",
		OperationContext: loginContext(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.MessageID)

	rec := s.store.get(t, out.MessageID)
	assert.Equal(t, "12345678", rec.UserID)
	assert.Equal(t, "RETAIL", rec.OrganizationID)
	assert.Equal(t, "op-1", rec.OperationID)
	assert.Equal(t, entity.OperationLogin, rec.OperationName)
	assert.Len(t, rec.AuthorizationCode, 8)
	assert.Len(t, rec.Salt, 16)
	assert.Zero(t, rec.VerifyRequestCount)
	assert.False(t, rec.Verified)
	assert.Nil(t, rec.VerifiedAt)
	assert.Equal(t, s.clock.Now(), rec.CreatedAt)
	assert.Equal(t, s.clock.Now().Add(5*time.Minute), rec.ExpiresAt)
	assert.Equal(t, "Login authorization code: "+rec.AuthorizationCode, rec.MessageText)

	require.Len(t, s.generator.items, 1)
	assert.Equal(t, []string{"login"}, s.generator.items[0])

	require.Len(t, s.sender.sent, 1)
	assert.Equal(t, out.MessageID, s.sender.sent[0].MessageID)
	assert.Equal(t, rec.MessageText, s.sender.sent[0].MessageText)
	assert.Equal(t, "op-1", s.sender.sent[0].OperationContext.ID)
}

func TestCreateSMSAuthorization_Payment(t *testing.T) {
	s := newSuite(t, 5)
	ctx := context.Background()

	in := CreateSMSAuthorizationInput{
		UserID:           "12345678",
		OrganizationID:   "RETAIL",
		OperationContext: paymentContext("100.00", "CZK", "CZ1234"),
		Lang:             "cs",
	}

	first, err := s.uc.CreateSMSAuthorization(ctx, in)
	require.NoError(t, err)
	second, err := s.uc.CreateSMSAuthorization(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, []string{"100.00", "CZK", "CZ1234"}, s.generator.items[0])

	r1 := s.store.get(t, first.MessageID)
	r2 := s.store.get(t, second.MessageID)
	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.NotEqual(t, r1.Salt, r2.Salt)
	assert.NotEqual(t, r1.AuthorizationCode, r2.AuthorizationCode)
	assert.Equal(t, "Platba 100.00 CZK na účet CZ1234. Autorizační kód: "+r1.AuthorizationCode, r1.MessageText)
}

func TestCreateSMSAuthorization_Validation(t *testing.T) {
	tests := []struct {
		name   string
		in     CreateSMSAuthorizationInput
		msg    string
		fields map[string]string
	}{
		{
			name: "empty identifiers",
			in:   CreateSMSAuthorizationInput{UserID: "  ", OperationContext: loginContext()},
			msg:  "smsAuthorization.userId.empty smsAuthorization.organizationId.empty",
			fields: map[string]string{
				"user_id":         "smsAuthorization.userId.empty",
				"organization_id": "smsAuthorization.organizationId.empty",
			},
		},
		{
			name: "missing operation context",
			in:   CreateSMSAuthorizationInput{UserID: "1", OrganizationID: "RETAIL"},
			msg:  "smsAuthorization.operationContext.missing",
			fields: map[string]string{
				"operation_context": "smsAuthorization.operationContext.missing",
			},
		},
		{
			name: "long values",
			in: CreateSMSAuthorizationInput{
				UserID:           "0123456789012345678901234567890",
				OrganizationID:   "RETAIL",
				OperationContext: &entity.OperationContext{Name: "an_operation_name_that_is_too_long"},
			},
			msg: "smsAuthorization.userId.long smsAuthorization.operationName.long",
		},
		{
			name: "empty operation name",
			in: CreateSMSAuthorizationInput{
				UserID:           "1",
				OrganizationID:   "RETAIL",
				OperationContext: &entity.OperationContext{},
			},
			msg: "smsAuthorization.operationName.empty",
		},
		{
			name: "payment without fields",
			in: CreateSMSAuthorizationInput{
				UserID:           "1",
				OrganizationID:   "RETAIL",
				OperationContext: paymentContext("", "", ""),
			},
			msg: "smsAuthorization.amount.empty smsAuthorization.account.empty",
			fields: map[string]string{
				"operation_context": "smsAuthorization.amount.empty smsAuthorization.account.empty",
			},
		},
		{
			name: "payment with bad amount and currency",
			in: CreateSMSAuthorizationInput{
				UserID:           "1",
				OrganizationID:   "RETAIL",
				OperationContext: paymentContext("-1", "", "CZ1234"),
			},
			msg: "smsAuthorization.amount.invalid smsAuthorization.currency.empty",
		},
		{
			name: "payment with zero amount",
			in: CreateSMSAuthorizationInput{
				UserID:           "1",
				OrganizationID:   "RETAIL",
				OperationContext: paymentContext("0.00", "CZK", "CZ1234"),
			},
			msg: "smsAuthorization.amount.invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSuite(t, 5)

			out, err := s.uc.CreateSMSAuthorization(context.Background(), tt.in)
			assert.Nil(t, out)
			gerr := requireGoError(t, err, goerror.CodeInputInvalid, tt.msg)
			if tt.fields != nil {
				assert.Equal(t, tt.fields, gerr.Fields())
			}
			assert.Empty(t, s.store.records)
			assert.Empty(t, s.sender.sent)
		})
	}
}

func TestCreateSMSAuthorization_UnsupportedOperation(t *testing.T) {
	s := newSuite(t, 5)

	_, err := s.uc.CreateSMSAuthorization(context.Background(), CreateSMSAuthorizationInput{
		UserID:           "1",
		OrganizationID:   "RETAIL",
		OperationContext: &entity.OperationContext{ID: "op-9", Name: "transfer"},
	})
	requireGoError(t, err, goerror.CodeOperationContextInvalid, "Unsupported operation: transfer")
	assert.Empty(t, s.store.records)
}

func TestCreateSMSAuthorization_DeliveryFailed(t *testing.T) {
	s := newSuite(t, 5)
	s.sender.err = errBoom

	out, err := s.uc.CreateSMSAuthorization(context.Background(), CreateSMSAuthorizationInput{
		UserID:           "1",
		OrganizationID:   "RETAIL",
		OperationContext: loginContext(),
	})
	assert.Nil(t, out)
	requireGoError(t, err, goerror.CodeSMSAuthorizationFailed, "smsAuthorization.deliveryFailed")
	assert.Len(t, s.store.records, 1)
}

func TestCreateSMSAuthorization_StoreFailed(t *testing.T) {
	s := newSuite(t, 5)
	s.store.createErr = context.DeadlineExceeded

	_, err := s.uc.CreateSMSAuthorization(context.Background(), CreateSMSAuthorizationInput{
		UserID:           "1",
		OrganizationID:   "RETAIL",
		OperationContext: loginContext(),
	})
	requireGoError(t, err, goerror.CodeRemote, "error.remote")
	assert.Empty(t, s.sender.sent)
}

func TestCreateSMSAuthorization_UnknownLangFallsBack(t *testing.T) {
	s := newSuite(t, 5)

	out, err := s.uc.CreateSMSAuthorization(context.Background(), CreateSMSAuthorizationInput{
		UserID:           "1",
		OrganizationID:   "RETAIL",
		OperationContext: loginContext(),
		Lang:             "xx",
	})
	require.NoError(t, err)

	rec := s.store.get(t, out.MessageID)
	assert.Equal(t, "Login authorization code: "+rec.AuthorizationCode, rec.MessageText)
}
