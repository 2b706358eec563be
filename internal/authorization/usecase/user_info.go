package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
)

type UserInfoInput struct {
	UserID string
}

func (s *Usecase) UserInfo(ctx context.Context, in UserInfoInput) (*entity.UserDetail, error) {
	ctx, span := s.startSpan(ctx, "UserInfo")
	defer span.End()

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, goerror.NewInvalidInput(nil, "user_id", "userDetail.userId.empty")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", userID)
		return nil, goerror.NewBusiness("userDetail.userNotFound", goerror.CodeInputInvalid)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get user by id", "user_id", userID, "error", err)
		return nil, goerror.NewRemote(err)
	}

	detail := user.Detail()
	return &detail, nil
}
