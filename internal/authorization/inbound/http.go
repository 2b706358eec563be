package inbound

import (
	"context"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/authorization/usecase"
	"github.com/shandysiswandi/stepup/internal/pkg/router"
)

type uc interface {
	CreateSMSAuthorization(ctx context.Context, in usecase.CreateSMSAuthorizationInput) (*usecase.CreateSMSAuthorizationOutput, error)
	VerifySMSAuthorization(ctx context.Context, in usecase.VerifySMSAuthorizationInput) error

	Authenticate(ctx context.Context, in usecase.AuthenticateInput) (*usecase.AuthenticateOutput, error)
	AuthenticateCombined(ctx context.Context, in usecase.AuthenticateCombinedInput) (*usecase.AuthenticateOutput, error)
	UserInfo(ctx context.Context, in usecase.UserInfoInput) (*entity.UserDetail, error)

	FormDataChanged(ctx context.Context, in usecase.FormDataChangedInput) error
	OperationChanged(ctx context.Context, in usecase.OperationChangedInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// SMS OTP
	r.POST("/api/auth/sms/create", end.CreateSMSAuthorization)
	r.POST("/api/auth/sms/verify", end.VerifySMSAuthorization)

	// Primary and combined authentication
	r.POST("/api/auth/combined/authenticate", end.AuthenticateCombined)
	r.POST("/api/auth/user/authenticate", end.Authenticate)
	r.POST("/api/auth/user/info", end.UserInfo)

	// Operation notifications
	r.POST("/api/operation/formdata/change", end.FormDataChanged)
	r.POST("/api/operation/change", end.OperationChanged)
}
