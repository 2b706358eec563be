package inbound

import (
	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/authorization/usecase"
	"github.com/shandysiswandi/stepup/internal/pkg/router"
)

// HTTPEndpoint exposes the step-up authentication operations over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// CreateSMSAuthorization issues an SMS authorization code for an operation.
// @Summary Create SMS authorization
// @Description Generates an operation-bound code, stores it and sends it to the user by SMS.
// @Tags Authorization, SMS
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSMSAuthorizationRequest true "Issuance payload"
// @Success 200 {object} router.successResponse{data=CreateSMSAuthorizationResponse} "Issued message"
// @Failure 400 {object} router.errorResponse "Invalid input or operation context"
// @Failure 401 {object} router.errorResponse "Delivery failed"
// @Failure 500 {object} router.errorResponse "Store unavailable"
// @Router /api/auth/sms/create [post]
func (h *HTTPEndpoint) CreateSMSAuthorization(r *router.Request) (any, error) {
	var req CreateSMSAuthorizationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CreateSMSAuthorization(r.Context(), usecase.CreateSMSAuthorizationInput{
		UserID:           req.UserID,
		OrganizationID:   req.OrganizationID,
		OperationContext: req.OperationContext.toEntity(),
		Lang:             req.Lang,
	})
	if err != nil {
		return nil, err
	}

	return CreateSMSAuthorizationResponse{MessageID: resp.MessageID}, nil
}

// VerifySMSAuthorization checks a submitted SMS code.
// @Summary Verify SMS authorization
// @Description Consumes one verification attempt and checks the code. Failures carry the attempts left.
// @Tags Authorization, SMS
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifySMSAuthorizationRequest true "Verification payload"
// @Success 200 {object} router.successResponse "Code verified"
// @Failure 401 {object} router.errorResponse "Verification failed" example:{"message":"smsAuthorization.failed","code":"SMS_AUTHORIZATION_FAILED","remaining_attempts":2}
// @Failure 500 {object} router.errorResponse "Store unavailable"
// @Router /api/auth/sms/verify [post]
func (h *HTTPEndpoint) VerifySMSAuthorization(r *router.Request) (any, error) {
	var req VerifySMSAuthorizationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifySMSAuthorization(r.Context(), usecase.VerifySMSAuthorizationInput{
		MessageID:         req.MessageID,
		AuthorizationCode: req.AuthorizationCode,
		OperationContext:  req.OperationContext.toEntity(),
	}); err != nil {
		return nil, err
	}

	return VerifySMSAuthorizationResponse{}, nil
}

// AuthenticateCombined checks a password and an SMS code in one step.
// @Summary Combined password and SMS authentication
// @Description Both factors are evaluated. Any factor failure answers AUTHENTICATION_FAILED.
// @Tags Authorization, Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AuthenticateCombinedRequest true "Combined payload"
// @Success 200 {object} router.successResponse{data=AuthenticateResponse} "Authenticated user"
// @Failure 400 {object} router.errorResponse "Invalid input"
// @Failure 401 {object} router.errorResponse "Authentication failed"
// @Failure 500 {object} router.errorResponse "Store unavailable"
// @Router /api/auth/combined/authenticate [post]
func (h *HTTPEndpoint) AuthenticateCombined(r *router.Request) (any, error) {
	var req AuthenticateCombinedRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AuthenticateCombined(r.Context(), usecase.AuthenticateCombinedInput{
		Username:          req.Username,
		Password:          req.Password,
		MessageID:         req.MessageID,
		AuthorizationCode: req.AuthorizationCode,
		OperationContext:  req.OperationContext.toEntity(),
	})
	if err != nil {
		return nil, err
	}

	return AuthenticateResponse{UserID: resp.UserID}, nil
}

// Authenticate checks the primary credential.
// @Summary Authenticate user
// @Description Validates username and password against the user backend.
// @Tags Authorization, Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AuthenticateRequest true "Credentials"
// @Success 200 {object} router.successResponse{data=AuthenticateResponse} "Authenticated user"
// @Failure 400 {object} router.errorResponse "Invalid input"
// @Failure 401 {object} router.errorResponse "Authentication failed"
// @Router /api/auth/user/authenticate [post]
func (h *HTTPEndpoint) Authenticate(r *router.Request) (any, error) {
	var req AuthenticateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Authenticate(r.Context(), usecase.AuthenticateInput{
		Username:         req.Username,
		Password:         req.Password,
		OperationContext: req.OperationContext.toEntity(),
	})
	if err != nil {
		return nil, err
	}

	return AuthenticateResponse{UserID: resp.UserID}, nil
}

// UserInfo returns the user detail.
// @Summary User detail
// @Tags Authorization, User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserInfoRequest true "User"
// @Success 200 {object} router.successResponse{data=UserInfoResponse} "User detail"
// @Failure 400 {object} router.errorResponse "Unknown user"
// @Router /api/auth/user/info [post]
func (h *HTTPEndpoint) UserInfo(r *router.Request) (any, error) {
	var req UserInfoRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.UserInfo(r.Context(), usecase.UserInfoInput{UserID: req.UserID})
	if err != nil {
		return nil, err
	}

	return UserInfoResponse{
		ID:             resp.ID,
		GivenName:      resp.GivenName,
		FamilyName:     resp.FamilyName,
		OrganizationID: resp.OrganizationID,
	}, nil
}

// FormDataChanged records a choice made on the operation form.
// @Summary Form data change notification
// @Tags Authorization, Operation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FormDataChangedRequest true "Change"
// @Success 200 {object} router.successResponse "Recorded"
// @Failure 400 {object} router.errorResponse "Unknown change type"
// @Router /api/operation/formdata/change [post]
func (h *HTTPEndpoint) FormDataChanged(r *router.Request) (any, error) {
	var req FormDataChangedRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.FormDataChanged(r.Context(), usecase.FormDataChangedInput{
		UserID:           req.UserID,
		OperationContext: req.OperationContext.toValue(),
		Change: entity.FormDataChange{
			Type:             entity.FormDataChangeType(req.FormDataChange.Type),
			BankAccountID:    req.FormDataChange.BankAccountID,
			ChosenAuthMethod: req.FormDataChange.ChosenAuthMethod,
		},
	}); err != nil {
		return nil, err
	}

	return AcknowledgedResponse{}, nil
}

// OperationChanged records a status change of the operation.
// @Summary Operation change notification
// @Tags Authorization, Operation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OperationChangedRequest true "Change"
// @Success 200 {object} router.successResponse "Recorded"
// @Failure 400 {object} router.errorResponse "Unknown change"
// @Router /api/operation/change [post]
func (h *HTTPEndpoint) OperationChanged(r *router.Request) (any, error) {
	var req OperationChangedRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OperationChanged(r.Context(), usecase.OperationChangedInput{
		UserID:           req.UserID,
		OperationContext: req.OperationContext.toValue(),
		Change:           entity.OperationChange(req.OperationChange),
	}); err != nil {
		return nil, err
	}

	return AcknowledgedResponse{}, nil
}
