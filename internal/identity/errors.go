package identity

import (
	"errors"
	"fmt"
)

// ErrorKind is a provider-defined failure code. Values are compared exactly.
type ErrorKind string

// Kinds reported by sign-in
const (
	KindUserNotFound      ErrorKind = "user-not-found"
	KindWrongPassword     ErrorKind = "wrong-password"
	KindInvalidEmail      ErrorKind = "invalid-email"
	KindUserDisabled      ErrorKind = "user-disabled"
	KindTooManyRequests   ErrorKind = "too-many-requests"
	KindInvalidCredential ErrorKind = "invalid-credential"
)

// Kinds reported by account deletion and token handling
const (
	KindRequiresRecentLogin ErrorKind = "requires-recent-login"
	KindInvalidUserToken    ErrorKind = "invalid-user-token"
	KindUserTokenExpired    ErrorKind = "user-token-expired"
)

// Kinds not tied to a single operation
const (
	KindNetworkRequestFailed ErrorKind = "network-request-failed"
	KindInternalError        ErrorKind = "internal-error"
)

// ProviderError is the structured failure returned by identity providers.
type ProviderError struct {
	Kind    ErrorKind
	Message string
}

// NewError builds a ProviderError. The message is the provider's raw text.
func NewError(kind ErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity: %s: %s", e.Kind, e.Message)
}

// Is reports whether target is a ProviderError of the same kind.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first ProviderError in err's chain,
// or the empty kind when there is none.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// MessageOf returns the provider message carried by err. Errors that are not
// ProviderErrors yield their full error text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
