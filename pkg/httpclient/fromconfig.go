package httpclient

import (
	"time"

	"github.com/milan604/client-lab/pkg/config"
	cerrors "github.com/milan604/client-lab/pkg/errors"
	"github.com/milan604/client-lab/pkg/logger"
)

// NewClientFromConfig builds a Client from the standard config keys:
//
//	client.base_url             (required)
//	client.timeout              duration, default 30s
//	client.insecure_skip_verify bool
//	client.headers              string map of default headers
//	auth.token_url              enables the bearer provider when set
//	auth.client_id / auth.client_secret
//	auth.username / auth.password
//	auth.scope / auth.grant_type / auth.response_type
//
// A logging hook backed by log is installed by default.
func NewClientFromConfig(log logger.LogManager, cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.ValidateRequired("client.base_url"); err != nil {
		return nil, cerrors.Wrap(err, "client configuration")
	}

	var provider AuthProvider
	if tokenURL := cfg.GetString("auth.token_url"); tokenURL != "" {
		provider = NewBearerTokenProvider(AuthConfig{
			TokenURL:     tokenURL,
			ClientID:     cfg.GetString("auth.client_id"),
			ClientSecret: cfg.GetString("auth.client_secret"),
			Username:     cfg.GetString("auth.username"),
			Password:     cfg.GetString("auth.password"),
			Scope:        cfg.GetString("auth.scope"),
			GrantType:    cfg.GetString("auth.grant_type"),
			ResponseType: cfg.GetString("auth.response_type"),
		}, WithProviderLogger(log))
	}

	clientCfg := Config{
		BaseURL:            cfg.GetString("client.base_url"),
		Timeout:            cfg.GetDurationD("client.timeout", 30*time.Second),
		InsecureSkipVerify: cfg.GetBool("client.insecure_skip_verify"),
		DefaultHeaders:     cfg.GetStringMapString("client.headers"),
		AuthProvider:       provider,
		Handlers:           []Handler{NewLoggingHandler(log)},
	}

	opts = append([]ClientOption{WithLogger(log)}, opts...)
	return New(clientCfg, opts...), nil
}
