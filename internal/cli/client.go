package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pac-william/mercado/internal/common/httpclient"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/session"
)

// newGateway builds the request gateway for cfg. Tests replace it to serve
// requests from the in-process stub backend.
var newGateway = func(cfg *Config) httpclient.HTTPClientInterface {
	return httpclient.NewClient(cfg, session.NewTokenAccessor(cfg))
}

func newAPI(cfg *Config) *api.Client {
	return api.New(newGateway(cfg))
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
