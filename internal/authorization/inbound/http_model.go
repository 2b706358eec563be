package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shopspring/decimal"
)

type ParameterRequest struct {
	Type     string           `json:"type" example:"AMOUNT"`
	ID       string           `json:"id" example:"operation.amount"`
	Amount   *decimal.Decimal `json:"amount,omitempty" swaggertype:"string" example:"100.00"`
	Currency string           `json:"currency,omitempty" example:"CZK"`
	Value    string           `json:"value,omitempty" example:"CZ6508000000192000145399"`
	Note     string           `json:"note,omitempty"`
	Message  string           `json:"message,omitempty"`
}

type FormDataRequest struct {
	Title      string             `json:"title,omitempty" example:"Confirm payment"`
	Greeting   string             `json:"greeting,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	Parameters []ParameterRequest `json:"parameters,omitempty"`
}

type OperationContextRequest struct {
	ID       string          `json:"id" example:"f6b1d5a0-2f1e-4c1a-9d0f-6a3e1b2c4d5e"`
	Name     string          `json:"name" example:"authorize_payment"`
	Data     string          `json:"data,omitempty" example:"A1*A100CZK*Q238400856/0300**D20190629*NUtility Bill Payment - 05/2019"`
	FormData FormDataRequest `json:"form_data"`
}

func (o *OperationContextRequest) toEntity() *entity.OperationContext {
	if o == nil {
		return nil
	}

	return &entity.OperationContext{
		ID:   o.ID,
		Name: o.Name,
		Data: o.Data,
		FormData: entity.FormData{
			Title:    o.FormData.Title,
			Greeting: o.FormData.Greeting,
			Summary:  o.FormData.Summary,
			Parameters: lo.Map(o.FormData.Parameters, func(p ParameterRequest, _ int) entity.Parameter {
				return entity.Parameter{
					Type:     entity.ParameterType(p.Type),
					ID:       p.ID,
					Amount:   p.Amount,
					Currency: p.Currency,
					Value:    p.Value,
					Note:     p.Note,
					Message:  p.Message,
				}
			}),
		},
	}
}

func (o *OperationContextRequest) toValue() entity.OperationContext {
	if oc := o.toEntity(); oc != nil {
		return *oc
	}
	return entity.OperationContext{}
}

type CreateSMSAuthorizationRequest struct {
	UserID           string                   `json:"user_id" example:"12345678"`
	OrganizationID   string                   `json:"organization_id" example:"RETAIL"`
	OperationContext *OperationContextRequest `json:"operation_context"`
	Lang             string                   `json:"lang,omitempty" example:"en"`
}

type CreateSMSAuthorizationResponse struct {
	MessageID string `json:"message_id" example:"0b5a3e54-7b8e-4a39-9c61-2b1f0e6d1c21"`
}

type VerifySMSAuthorizationRequest struct {
	MessageID         string                   `json:"message_id" example:"0b5a3e54-7b8e-4a39-9c61-2b1f0e6d1c21"`
	AuthorizationCode string                   `json:"authorization_code" example:"12345678"`
	OperationContext  *OperationContextRequest `json:"operation_context,omitempty"`
}

type VerifySMSAuthorizationResponse struct{}

func (VerifySMSAuthorizationResponse) Message() string { return "smsAuthorization.verified" }

type AuthenticateRequest struct {
	Username         string                   `json:"username" example:"jdoe"`
	Password         string                   `json:"password" example:"test"`
	OperationContext *OperationContextRequest `json:"operation_context,omitempty"`
}

type AuthenticateCombinedRequest struct {
	Username          string                   `json:"username" example:"jdoe"`
	Password          string                   `json:"password" example:"test"`
	MessageID         string                   `json:"message_id" example:"0b5a3e54-7b8e-4a39-9c61-2b1f0e6d1c21"`
	AuthorizationCode string                   `json:"authorization_code" example:"12345678"`
	OperationContext  *OperationContextRequest `json:"operation_context,omitempty"`
}

type AuthenticateResponse struct {
	UserID string `json:"user_id" example:"12345678"`
}

type UserInfoRequest struct {
	UserID string `json:"user_id" example:"12345678"`
}

type UserInfoResponse struct {
	ID             string `json:"id" example:"12345678"`
	GivenName      string `json:"given_name" example:"John"`
	FamilyName     string `json:"family_name" example:"Doe"`
	OrganizationID string `json:"organization_id,omitempty" example:"RETAIL"`
}

type FormDataChangeRequest struct {
	Type             string `json:"type" example:"BANK_ACCOUNT_CHOICE"`
	BankAccountID    string `json:"bank_account_id,omitempty" example:"CZ4012400000000005"`
	ChosenAuthMethod string `json:"chosen_auth_method,omitempty" example:"POWERAUTH_TOKEN"`
}

type FormDataChangedRequest struct {
	UserID           string                   `json:"user_id" example:"12345678"`
	OperationContext *OperationContextRequest `json:"operation_context"`
	FormDataChange   FormDataChangeRequest    `json:"form_data_change"`
}

type OperationChangedRequest struct {
	UserID           string                   `json:"user_id" example:"12345678"`
	OperationContext *OperationContextRequest `json:"operation_context"`
	OperationChange  string                   `json:"operation_change" example:"DONE"`
}

type AcknowledgedResponse struct{}

func (AcknowledgedResponse) Message() string { return "notification has been recorded" }
