package services

import (
	"context"
	"time"

	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/identity"

	"go.uber.org/zap"
)

// User-facing messages returned by AccountService
const (
	MsgAuthenticationSuccessful = "Authentication successful"
	MsgAccountDeleted           = "Your account has been successfully deleted"
)

// signInMessages maps sign-in failure kinds to fixed user-facing messages.
var signInMessages = map[identity.ErrorKind]string{
	identity.KindUserNotFound:      "No account found with this email address",
	identity.KindWrongPassword:     "Incorrect password",
	identity.KindInvalidEmail:      "Invalid email address",
	identity.KindUserDisabled:      "This account has been disabled",
	identity.KindTooManyRequests:   "Too many failed attempts. Please try again later",
	identity.KindInvalidCredential: "Invalid email or password",
}

// deleteMessages maps account deletion failure kinds to fixed user-facing messages.
var deleteMessages = map[identity.ErrorKind]string{
	identity.KindRequiresRecentLogin: "For security reasons, please log in again and try deleting your account",
}

// AccountService authenticates users and deletes their accounts through an
// identity provider. It never returns errors: every provider failure is
// reported as a failure-flagged AuthResult.
type AccountService struct {
	provider core.IdentityProvider
	metrics  core.Recorder
	logger   *zap.Logger
}

func NewAccountService(
	provider core.IdentityProvider,
	m core.Recorder,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		provider: provider,
		metrics:  m,
		logger:   logger.With(zap.String("provider", provider.Name())),
	}
}

// AuthenticateUser signs the user in with email and password.
func (s *AccountService) AuthenticateUser(ctx context.Context, email, password string) core.AuthResult {
	start := time.Now()
	user, err := s.provider.SignIn(ctx, email, password)
	s.metrics.RecordAuthAttempt(s.provider.Name(), err == nil, time.Since(start))

	if err != nil {
		kind := identity.KindOf(err)
		s.metrics.RecordAuthFailure(s.provider.Name(), string(kind))
		s.logger.Info("authentication failed",
			zap.String("email", email),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return core.AuthResult{
			Success: false,
			Message: failureMessage(signInMessages, "Authentication error: ", err),
		}
	}

	if user == nil {
		// The provider reported success without a principal. Callers treat
		// this as unauthenticated; DeleteAccountWithCredentials stops here.
		s.logger.Warn("authentication returned no user", zap.String("email", email))
	} else {
		s.logger.Info("authentication succeeded", zap.String("email", email), zap.String("uid", user.UID))
	}
	return core.AuthResult{
		Success: true,
		Message: MsgAuthenticationSuccessful,
		User:    user,
	}
}

// DeleteUserAccount deletes the account of an authenticated user.
func (s *AccountService) DeleteUserAccount(ctx context.Context, user *core.UserHandle) core.AuthResult {
	if user == nil {
		s.metrics.RecordAccountDeletion(s.provider.Name(), false)
		return core.AuthResult{
			Success: false,
			Message: "Account deletion error: no authenticated user",
		}
	}

	err := s.provider.DeleteUser(ctx, user)
	s.metrics.RecordAccountDeletion(s.provider.Name(), err == nil)

	if err != nil {
		kind := identity.KindOf(err)
		s.metrics.RecordAuthFailure(s.provider.Name(), string(kind))
		s.logger.Warn("account deletion failed",
			zap.String("uid", user.UID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return core.AuthResult{
			Success: false,
			Message: failureMessage(deleteMessages, "Account deletion error: ", err),
		}
	}

	s.logger.Info("account deleted", zap.String("uid", user.UID))
	return core.AuthResult{
		Success: true,
		Message: MsgAccountDeleted,
	}
}

// DeleteAccountWithCredentials authenticates and, only if that succeeds with
// a user, deletes the account. A failed authentication is returned unchanged.
func (s *AccountService) DeleteAccountWithCredentials(
	ctx context.Context,
	email, password string,
) core.AuthResult {
	authResult := s.AuthenticateUser(ctx, email, password)
	if !authResult.Success || authResult.User == nil {
		return authResult
	}

	return s.DeleteUserAccount(ctx, authResult.User)
}

// failureMessage looks the error kind up in messages and falls back to
// prefix followed by the provider's raw message.
func failureMessage(messages map[identity.ErrorKind]string, prefix string, err error) string {
	if msg, ok := messages[identity.KindOf(err)]; ok {
		return msg
	}
	return prefix + identity.MessageOf(err)
}
