package inbound

import (
	"context"

	"github.com/shandysiswandi/stepup/internal/notification/usecase"
)

type uc interface {
	DeliverSMSAuthorization(ctx context.Context, in usecase.DeliverSMSAuthorizationInput) error
}
