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

const msgAuthenticationFailed = "login.authenticationFailed"

var errBadCredentials = errors.New("authorization: bad credentials")

type AuthenticateInput struct {
	Username         string `key:"login.username" validate:"required"`
	Password         string `key:"login.password" validate:"required"`
	OperationContext *entity.OperationContext `validate:"-"`
}

type AuthenticateOutput struct {
	UserID string
}

func (s *Usecase) Authenticate(ctx context.Context, in AuthenticateInput) (*AuthenticateOutput, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validateAuthenticate(in); err != nil {
		return nil, err
	}

	user, err := s.checkCredentials(ctx, in.Username, in.Password)
	if errors.Is(err, errBadCredentials) {
		slog.WarnContext(ctx, "user authentication failed", "username", in.Username, "operation_id", operationID(in.OperationContext))
		return nil, goerror.NewBusiness(msgAuthenticationFailed, goerror.CodeAuthenticationFailed)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user authenticated", "user_id", user.ID, "operation_id", operationID(in.OperationContext))
	return &AuthenticateOutput{UserID: user.ID}, nil
}

type AuthenticateCombinedInput struct {
	Username          string
	Password          string
	MessageID         string
	AuthorizationCode string
	OperationContext  *entity.OperationContext
}

// AuthenticateCombined checks the password and the SMS code submitted together.
// Both factors are evaluated and the code must have been issued to the
// authenticated user. Any failure is reported as login.authenticationFailed,
// carrying the code's remaining attempts.
func (s *Usecase) AuthenticateCombined(ctx context.Context, in AuthenticateCombinedInput) (*AuthenticateOutput, error) {
	ctx, span := s.startSpan(ctx, "AuthenticateCombined")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validateAuthenticate(AuthenticateInput{Username: in.Username, Password: in.Password}); err != nil {
		return nil, err
	}

	user, err := s.checkCredentials(ctx, in.Username, in.Password)
	if err != nil && !errors.Is(err, errBadCredentials) {
		return nil, err
	}

	passwordOK, userID := false, ""
	if err == nil {
		passwordOK, userID = true, user.ID
	}

	if err := s.verifySMS(ctx, in.MessageID, in.AuthorizationCode, true, passwordOK, userID); err != nil {
		slog.WarnContext(ctx, "combined authentication failed",
			"username", in.Username,
			"message_id", in.MessageID,
			"operation_id", operationID(in.OperationContext),
			"error", err,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "combined authentication succeeded", "user_id", user.ID, "message_id", in.MessageID)
	return &AuthenticateOutput{UserID: user.ID}, nil
}

func (s *Usecase) validateAuthenticate(in AuthenticateInput) error {
	err := s.validator.Validate(in)
	if err == nil {
		return nil
	}

	var fields validator.ValidationError
	if !errors.As(err, &fields) {
		return goerror.NewServer(err)
	}

	msg := fields.Error()
	if len(fields) == 0 {
		msg = msgAuthenticationFailed
	}
	return goerror.NewInvalidFields(msg, fields.Values())
}

// checkCredentials returns errBadCredentials for an unknown user or a wrong
// password. Both paths cost one hash comparison.
func (s *Usecase) checkCredentials(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, goerror.ErrNotFound) {
		s.hasher.VerifyMissing(password)
		return nil, errBadCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get user by username", "username", username, "error", err)
		return nil, goerror.NewRemote(err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, errBadCredentials
	}

	return user, nil
}

func operationID(oc *entity.OperationContext) string {
	if oc == nil {
		return ""
	}
	return oc.ID
}
