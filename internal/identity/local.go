package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/models"
	"github.com/go-authgate/accountgate/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence the local provider needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	DeleteUser(ctx context.Context, id string) error
}

// LocalProvider authenticates against accounts kept in the local database and
// issues HS256 ID tokens that authorize account deletion.
type LocalProvider struct {
	users       UserStore
	secret      []byte
	tokenTTL    time.Duration
	recentLogin time.Duration
	now         func() time.Time
}

// LocalOption configures a LocalProvider
type LocalOption func(*LocalProvider)

// WithClock overrides the time source used for token issuance and checks.
func WithClock(now func() time.Time) LocalOption {
	return func(p *LocalProvider) {
		p.now = now
	}
}

type localClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	AuthTime int64  `json:"auth_time"`
}

// NewLocalProvider creates a local identity provider.
func NewLocalProvider(
	users UserStore,
	secret string,
	tokenTTL, recentLogin time.Duration,
	opts ...LocalOption,
) *LocalProvider {
	p := &LocalProvider{
		users:       users,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
		recentLogin: recentLogin,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SignIn verifies credentials against the local database
func (p *LocalProvider) SignIn(
	ctx context.Context,
	email, password string,
) (*core.UserHandle, error) {
	if !validEmail(email) {
		return nil, NewError(KindInvalidEmail, "the email address is badly formatted")
	}

	user, err := p.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, NewError(KindUserNotFound, "there is no user record corresponding to this identifier")
	}
	if err != nil {
		return nil, NewError(KindInternalError, "failed to load user: %v", err)
	}

	if user.IsDisabled() {
		return nil, NewError(KindUserDisabled, "the user account has been disabled")
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(user.PasswordHash),
		[]byte(password),
	); err != nil {
		return nil, NewError(KindWrongPassword, "the password is invalid")
	}

	now := p.now()
	if err := p.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, NewError(KindInternalError, "failed to record sign-in: %v", err)
	}

	idToken, err := p.issueToken(user, now)
	if err != nil {
		return nil, NewError(KindInternalError, "failed to sign ID token: %v", err)
	}

	return &core.UserHandle{
		UID:         user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IDToken:     idToken,
		ExpiresIn:   int64(p.tokenTTL / time.Second),
		Provider:    p.Name(),
	}, nil
}

// DeleteUser removes the account identified by the handle's ID token. The
// sign-in that produced the token must be within the recent-login window.
func (p *LocalProvider) DeleteUser(ctx context.Context, user *core.UserHandle) error {
	if user == nil || user.IDToken == "" {
		return NewError(KindInvalidUserToken, "user has no ID token")
	}

	claims, err := p.parseToken(user.IDToken)
	if err != nil {
		return err
	}

	if user.UID != "" && user.UID != claims.Subject {
		return NewError(KindInvalidUserToken, "ID token does not belong to user %s", user.UID)
	}

	authTime := time.Unix(claims.AuthTime, 0)
	if p.now().Sub(authTime) > p.recentLogin {
		return NewError(
			KindRequiresRecentLogin,
			"last sign-in at %s is older than %s",
			authTime.UTC().Format(time.RFC3339),
			p.recentLogin,
		)
	}

	account, err := p.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewError(KindUserNotFound, "there is no user record corresponding to this identifier")
		}
		return NewError(KindInternalError, "failed to load user: %v", err)
	}
	if account.IsDisabled() {
		return NewError(KindUserDisabled, "the user account has been disabled")
	}

	if err := p.users.DeleteUser(ctx, claims.Subject); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewError(KindUserNotFound, "there is no user record corresponding to this identifier")
		}
		return NewError(KindInternalError, "failed to delete user: %v", err)
	}
	return nil
}

// CreateUser registers a new local account with a bcrypt password hash.
func (p *LocalProvider) CreateUser(
	ctx context.Context,
	email, password, displayName string,
) (*models.User, error) {
	if !validEmail(email) {
		return nil, NewError(KindInvalidEmail, "the email address is badly formatted")
	}
	if password == "" {
		return nil, errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := p.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Name returns provider name for logging
func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) issueToken(user *models.User, now time.Time) (string, error) {
	claims := localClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.tokenTTL)),
		},
		Email:    user.Email,
		AuthTime: now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *LocalProvider) parseToken(tokenString string) (*localClaims, error) {
	claims := &localClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, NewError(KindUserTokenExpired, "the user's credential is no longer valid")
	case err != nil:
		return nil, NewError(KindInvalidUserToken, "invalid ID token: %v", err)
	case claims.Subject == "":
		return nil, NewError(KindInvalidUserToken, "ID token has no subject")
	}
	return claims, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == strings.TrimSpace(email)
}
