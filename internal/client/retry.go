package client

import (
	"fmt"

	httpclient "github.com/appleboy/go-httpclient"
	retry "github.com/appleboy/go-httpretry"

	"github.com/go-authgate/accountgate/internal/config"
)

// NewIdentityAPIClient creates the HTTP client used to reach the identity
// provider's REST API. Gateway authentication headers are added by the
// underlying auth client and transient failures are retried with backoff.
func NewIdentityAPIClient(cfg *config.Config) (*retry.Client, error) {
	authClient, err := httpclient.NewAuthClient(
		cfg.IdentityAPIAuthMode,
		cfg.IdentityAPIAuthSecret,
		httpclient.WithTimeout(cfg.IdentityAPITimeout),
		httpclient.WithHeaderName(cfg.IdentityAPIAuthHeader),
		httpclient.WithInsecureSkipVerify(cfg.IdentityAPIInsecure),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity api auth client: %w", err)
	}

	retryClient, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(authClient),
		retry.WithMaxRetries(cfg.IdentityAPIMaxRetries),
		retry.WithInitialRetryDelay(cfg.IdentityAPIRetryDelay),
		retry.WithMaxRetryDelay(cfg.IdentityAPIMaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity api retry client: %w", err)
	}

	return retryClient, nil
}
