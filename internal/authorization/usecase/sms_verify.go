package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/stepup/internal/authorization/entity"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/otp"
)

type VerifySMSAuthorizationInput struct {
	MessageID         string
	AuthorizationCode string
	// OperationContext is optional and only logged.
	OperationContext *entity.OperationContext
}

func (s *Usecase) VerifySMSAuthorization(ctx context.Context, in VerifySMSAuthorizationInput) error {
	ctx, span := s.startSpan(ctx, "VerifySMSAuthorization")
	defer span.End()

	logArgs := []any{"message_id", in.MessageID}
	if in.OperationContext != nil {
		logArgs = append(logArgs, "operation_id", in.OperationContext.ID)
	}

	if err := s.verifySMS(ctx, in.MessageID, in.AuthorizationCode, false, true, ""); err != nil {
		slog.WarnContext(ctx, "sms authorization verification failed", append(logArgs, "error", err)...)
		return err
	}

	slog.InfoContext(ctx, "sms authorization verified", logArgs...)
	return nil
}

// verifySMS runs one verification attempt against the stored record.
// In combined mode a rejected password, or a code issued to someone other than
// userID, is treated exactly like a wrong code so the caller cannot tell which
// factor failed; the attempt is consumed either way. An empty userID skips the
// ownership check.
func (s *Usecase) verifySMS(ctx context.Context, messageID, code string, combined, passwordOK bool, userID string) error {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return verificationFailure(entity.NewVerificationError(entity.FailureInvalidMessage))
	}

	code = strings.TrimSpace(code)

	var failure *entity.VerificationError
	_, err := s.store.UpdateSMSAuthorization(ctx, messageID, func(a *entity.SMSAuthorization) error {
		// the store may rerun mutate on a write conflict
		failure = s.evaluate(a, code, combined, passwordOK && owns(a, userID))
		return nil
	})
	if errors.Is(err, goerror.ErrNotFound) {
		return verificationFailure(entity.NewVerificationError(entity.FailureInvalidMessage))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to update sms authorization", "message_id", messageID, "error", err)
		return goerror.NewRemote(err)
	}

	if failure != nil {
		return verificationFailure(failure)
	}
	return nil
}

// evaluate counts the attempt and applies the verification checks in order.
func (s *Usecase) evaluate(a *entity.SMSAuthorization, code string, combined, passwordOK bool) *entity.VerificationError {
	now := s.clock.Now()

	a.VerifyRequestCount++
	remaining := a.RemainingAttempts(s.maxVerifyTries)

	switch {
	case a.AuthorizationCode == "":
		return entity.NewVerificationErrorWithRemaining(entity.FailureInvalidCode, remaining)
	case a.Expired(now):
		return entity.NewVerificationError(entity.FailureExpired)
	case a.Verified && !combined:
		return entity.NewVerificationError(entity.FailureAlreadyVerified)
	case a.VerifyRequestCount > s.maxVerifyTries:
		return entity.NewVerificationError(entity.FailureMaxAttemptsExceeded)
	case !passwordOK || !otp.Equal(a.AuthorizationCode, code):
		if combined {
			return entity.NewVerificationErrorWithRemaining(entity.FailureAuthenticationFailed, remaining)
		}
		return entity.NewVerificationErrorWithRemaining(entity.FailureOtpInvalid, remaining)
	}

	if !a.Verified {
		a.Verified = true
		a.VerifiedAt = &now
	}
	return nil
}

func owns(a *entity.SMSAuthorization, userID string) bool {
	return userID == "" || a.UserID == userID
}

func verificationFailure(e *entity.VerificationError) error {
	code := goerror.CodeSMSAuthorizationFailed
	if e.Reason == entity.FailureAuthenticationFailed {
		code = goerror.CodeAuthenticationFailed
	}

	if e.Remaining != nil {
		return goerror.NewAttemptFailure(e.Reason.MessageKey(), code, *e.Remaining)
	}
	return goerror.NewBusiness(e.Reason.MessageKey(), code)
}
