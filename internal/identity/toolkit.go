package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	retry "github.com/appleboy/go-httpretry"

	"github.com/go-authgate/accountgate/internal/core"
)

const (
	signInEndpoint = "/accounts:signInWithPassword"
	deleteEndpoint = "/accounts:delete"
)

// serverCodeKinds maps Identity Toolkit error codes to provider error kinds.
var serverCodeKinds = map[string]ErrorKind{
	"EMAIL_NOT_FOUND":                KindUserNotFound,
	"USER_NOT_FOUND":                 KindUserNotFound,
	"INVALID_PASSWORD":               KindWrongPassword,
	"INVALID_EMAIL":                  KindInvalidEmail,
	"USER_DISABLED":                  KindUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":    KindTooManyRequests,
	"INVALID_LOGIN_CREDENTIALS":      KindInvalidCredential,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": KindRequiresRecentLogin,
	"INVALID_ID_TOKEN":               KindInvalidUserToken,
	"TOKEN_EXPIRED":                  KindUserTokenExpired,
}

// IdentityToolkitProvider signs users in and deletes accounts through the
// Identity Toolkit REST API used by Firebase Authentication.
type IdentityToolkitProvider struct {
	baseURL     string
	apiKey      string
	retryClient *retry.Client
	recorder    core.Recorder
}

// NewIdentityToolkitProvider creates a provider for the API rooted at baseURL.
func NewIdentityToolkitProvider(
	baseURL, apiKey string,
	retryClient *retry.Client,
	recorder core.Recorder,
) *IdentityToolkitProvider {
	return &IdentityToolkitProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		retryClient: retryClient,
		recorder:    recorder,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	Registered   bool   `json:"registered"`
}

type deleteRequest struct {
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn verifies an email/password pair and returns the signed-in user.
func (p *IdentityToolkitProvider) SignIn(
	ctx context.Context,
	email, password string,
) (*core.UserHandle, error) {
	var resp signInResponse
	if err := p.post(ctx, "sign_in", signInEndpoint, signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp); err != nil {
		return nil, err
	}

	if resp.LocalID == "" {
		return nil, NewError(KindInternalError, "sign-in response is missing localId")
	}

	// A missing or malformed expiresIn leaves ExpiresIn at 0 (unknown).
	var expiresIn int64
	if resp.ExpiresIn != "" {
		if n, err := strconv.ParseInt(resp.ExpiresIn, 10, 64); err == nil && n > 0 {
			expiresIn = n
		}
	}

	return &core.UserHandle{
		UID:          resp.LocalID,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expiresIn,
		Provider:     p.Name(),
	}, nil
}

// DeleteUser deletes the account the handle's ID token belongs to.
func (p *IdentityToolkitProvider) DeleteUser(ctx context.Context, user *core.UserHandle) error {
	if user == nil || user.IDToken == "" {
		return NewError(KindInvalidUserToken, "user has no ID token")
	}
	return p.post(ctx, "delete", deleteEndpoint, deleteRequest{IDToken: user.IDToken}, nil)
}

// Name returns provider name for logging
func (p *IdentityToolkitProvider) Name() string {
	return "identity_toolkit"
}

func (p *IdentityToolkitProvider) endpointURL(endpoint string) string {
	return p.baseURL + endpoint + "?key=" + url.QueryEscape(p.apiKey)
}

// post sends a JSON request and decodes a 2xx response into out.
// Every failure is returned as a *ProviderError.
func (p *IdentityToolkitProvider) post(
	ctx context.Context,
	operation, endpoint string,
	reqBody, out any,
) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return NewError(KindInternalError, "failed to marshal request: %v", err)
	}

	start := time.Now()
	resp, err := p.retryClient.Post(
		ctx,
		p.endpointURL(endpoint),
		retry.WithBody("application/json", bytes.NewBuffer(jsonData)),
	)
	p.recorder.RecordExternalAPICall(p.Name(), operation, time.Since(start))
	if resp == nil {
		if err == nil {
			return NewError(KindNetworkRequestFailed, "no response from identity API")
		}
		return NewError(KindNetworkRequestFailed, "%v", err)
	}
	// Once retries are exhausted on a 5xx or 429 the last response comes back
	// alongside the error; its body carries the provider's error code.
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(KindNetworkRequestFailed, "failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewError(KindInternalError, "invalid response: %v", err)
	}
	return nil
}

// parseErrorResponse converts an Identity Toolkit error body into a
// ProviderError. Messages look like "CODE" or "CODE : detail".
func parseErrorResponse(statusCode int, body []byte) *ProviderError {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return NewError(KindInternalError, "HTTP %d - %s", statusCode, previewBody(body))
	}

	message := errResp.Error.Message
	code, _, _ := strings.Cut(message, " : ")
	kind, ok := serverCodeKinds[strings.TrimSpace(code)]
	if !ok {
		kind = KindInternalError
	}
	return &ProviderError{Kind: kind, Message: message}
}

// maxBodyPreview is the number of runes of an unparsable error body kept in
// the provider message.
const maxBodyPreview = 200

// previewBody trims body to maxBodyPreview runes without splitting a UTF-8
// sequence. Invalid bytes are replaced.
func previewBody(body []byte) string {
	preview := strings.ToValidUTF8(string(body), "\uFFFD")
	if utf8.RuneCountInString(preview) <= maxBodyPreview {
		return preview
	}
	return string([]rune(preview)[:maxBodyPreview]) + "..."
}
