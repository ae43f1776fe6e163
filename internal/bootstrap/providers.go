package bootstrap

import (
	"errors"
	"fmt"

	"github.com/go-authgate/accountgate/internal/client"
	"github.com/go-authgate/accountgate/internal/config"
	"github.com/go-authgate/accountgate/internal/core"
	"github.com/go-authgate/accountgate/internal/identity"
	"github.com/go-authgate/accountgate/internal/metrics"
	"github.com/go-authgate/accountgate/internal/store"
)

var errStoreRequired = errors.New("local identity provider requires a database")

// initializeIdentityProvider creates the identity provider selected by IDENTITY_PROVIDER
func initializeIdentityProvider(
	cfg *config.Config,
	db *store.Store,
	recorder metrics.Recorder,
) (core.IdentityProvider, error) {
	switch cfg.IdentityProvider {
	case config.IdentityProviderToolkit:
		retryClient, err := client.NewIdentityAPIClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create identity API client: %w", err)
		}
		return identity.NewIdentityToolkitProvider(
			cfg.IdentityToolkitURL,
			cfg.IdentityToolkitAPIKey,
			retryClient,
			recorder,
		), nil
	case config.IdentityProviderLocal:
		if db == nil {
			return nil, errStoreRequired
		}
		return identity.NewLocalProvider(
			db,
			cfg.LocalTokenSecret,
			cfg.LocalTokenTTL,
			cfg.RecentLoginWindow,
		), nil
	default:
		return nil, fmt.Errorf("invalid IDENTITY_PROVIDER value: %q", cfg.IdentityProvider)
	}
}
