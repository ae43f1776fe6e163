package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-authgate/accountgate/internal/client"
	"github.com/go-authgate/accountgate/internal/config"
	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key" //nolint:gosec // Test key, not production

func newTestToolkitProvider(t *testing.T, serverURL string) *IdentityToolkitProvider {
	t.Helper()

	retryClient, err := client.NewIdentityAPIClient(&config.Config{
		IdentityAPITimeout:       5 * time.Second,
		IdentityAPIAuthMode:      "none",
		IdentityAPIAuthHeader:    "X-API-Secret",
		IdentityAPIMaxRetries:    0,
		IdentityAPIRetryDelay:    10 * time.Millisecond,
		IdentityAPIMaxRetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	return NewIdentityToolkitProvider(serverURL+"/", testAPIKey, retryClient, metrics.NewNoopMetrics())
}

func TestIdentityToolkitProvider_SignIn_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, signInEndpoint, r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("key"))

		var req signInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user@example.com", req.Email)
		assert.Equal(t, "password123", req.Password)
		assert.True(t, req.ReturnSecureToken)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(signInResponse{
			LocalID:      "uid-123",
			Email:        "user@example.com",
			DisplayName:  "Test User",
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
			Registered:   true,
		})
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	user, err := provider.SignIn(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, &core.UserHandle{
		UID:          "uid-123",
		Email:        "user@example.com",
		DisplayName:  "Test User",
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    3600,
		Provider:     "identity_toolkit",
	}, user)
}

func TestIdentityToolkitProvider_SignIn_ErrorCodes(t *testing.T) {
	tests := []struct {
		serverMessage string
		wantKind      ErrorKind
	}{
		{"EMAIL_NOT_FOUND", KindUserNotFound},
		{"INVALID_PASSWORD", KindWrongPassword},
		{"INVALID_EMAIL", KindInvalidEmail},
		{"USER_DISABLED : The user account has been disabled by an administrator.", KindUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled.", KindTooManyRequests},
		{"INVALID_LOGIN_CREDENTIALS", KindInvalidCredential},
		{"OPERATION_NOT_ALLOWED", KindInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.serverMessage, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": 400, "message": tt.serverMessage},
				})
			}))
			defer server.Close()

			provider := newTestToolkitProvider(t, server.URL)
			user, err := provider.SignIn(context.Background(), "user@example.com", "pw")

			require.Error(t, err)
			assert.Nil(t, user)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, tt.serverMessage, MessageOf(err))
		})
	}
}

func TestIdentityToolkitProvider_SignIn_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	_, err := provider.SignIn(context.Background(), "user@example.com", "pw")

	require.Error(t, err)
	assert.Equal(t, KindInternalError, KindOf(err))
	assert.Equal(t, "HTTP 502 - upstream unavailable", MessageOf(err))
}

func TestIdentityToolkitProvider_SignIn_MissingLocalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(signInResponse{Email: "user@example.com"})
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	_, err := provider.SignIn(context.Background(), "user@example.com", "pw")

	require.Error(t, err)
	assert.Equal(t, KindInternalError, KindOf(err))
}

func TestIdentityToolkitProvider_SignIn_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	_, err := provider.SignIn(context.Background(), "user@example.com", "pw")

	require.Error(t, err)
	assert.Equal(t, KindInternalError, KindOf(err))
}

func TestIdentityToolkitProvider_SignIn_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	provider := newTestToolkitProvider(t, serverURL)
	_, err := provider.SignIn(context.Background(), "user@example.com", "pw")

	require.Error(t, err)
	assert.Equal(t, KindNetworkRequestFailed, KindOf(err))
}

func TestIdentityToolkitProvider_DeleteUser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, deleteEndpoint, r.URL.Path)

		var req deleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "id-token", req.IDToken)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"identitytoolkit#DeleteAccountResponse"}`))
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	err := provider.DeleteUser(context.Background(), &core.UserHandle{UID: "uid-123", IDToken: "id-token"})
	assert.NoError(t, err)
}

func TestIdentityToolkitProvider_DeleteUser_RequiresRecentLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"CREDENTIAL_TOO_OLD_LOGIN_AGAIN"}}`))
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	err := provider.DeleteUser(context.Background(), &core.UserHandle{IDToken: "id-token"})

	require.Error(t, err)
	assert.Equal(t, KindRequiresRecentLogin, KindOf(err))
}

func TestIdentityToolkitProvider_DeleteUser_MissingToken(t *testing.T) {
	provider := newTestToolkitProvider(t, "http://127.0.0.1:0")

	err := provider.DeleteUser(context.Background(), &core.UserHandle{UID: "uid-123"})
	assert.Equal(t, KindInvalidUserToken, KindOf(err))

	err = provider.DeleteUser(context.Background(), nil)
	assert.Equal(t, KindInvalidUserToken, KindOf(err))
}

func TestIdentityToolkitProvider_Name(t *testing.T) {
	provider := newTestToolkitProvider(t, "http://127.0.0.1:0")
	assert.Equal(t, "identity_toolkit", provider.Name())
}

func TestParseErrorResponse_LongBodyTruncated(t *testing.T) {
	body := make([]byte, 300)
	for i := range body {
		body[i] = 'x'
	}

	err := parseErrorResponse(http.StatusInternalServerError, body)
	assert.Equal(t, KindInternalError, err.Kind)
	assert.Len(t, err.Message, len("HTTP 500 - ")+200+len("..."))
}

func TestIdentityToolkitProvider_SignIn_ServerErrorWithCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"USER_DISABLED : maintenance"}}`))
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	_, err := provider.SignIn(context.Background(), "user@example.com", "pw")

	require.Error(t, err)
	assert.Equal(t, KindUserDisabled, KindOf(err))
	assert.Equal(t, "USER_DISABLED : maintenance", MessageOf(err))
}

func TestIdentityToolkitProvider_SignIn_MalformedExpiresIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(signInResponse{
			LocalID:   "uid-123",
			Email:     "user@example.com",
			IDToken:   "id-token",
			ExpiresIn: "one hour",
		})
	}))
	defer server.Close()

	provider := newTestToolkitProvider(t, server.URL)
	user, err := provider.SignIn(context.Background(), "user@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "uid-123", user.UID)
	assert.Zero(t, user.ExpiresIn)
}

func TestParseErrorResponse_TruncatesOnRuneBoundary(t *testing.T) {
	body := []byte(strings.Repeat("é", 300))

	err := parseErrorResponse(http.StatusBadGateway, body)
	assert.Equal(t, KindInternalError, err.Kind)
	assert.True(t, utf8.ValidString(err.Message))
	assert.Equal(t, "HTTP 502 - "+strings.Repeat("é", maxBodyPreview)+"...", err.Message)
}
