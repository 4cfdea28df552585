package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/milan604/client-lab/pkg/logger"
)

// AuthProvider is the per-request authentication step. It is the only
// component allowed to mutate an outgoing request; hooks only observe.
type AuthProvider interface {
	// Authenticate attaches credentials to req before it is sent.
	Authenticate(ctx context.Context, req *http.Request) error
}

// AuthConfig holds the credentials for the OAuth2 token endpoint.
// Username/Password drive the password grant; leave them empty for the
// client-credentials grant.
type AuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Scope        string
	GrantType    string
	ResponseType string
}

type identity struct {
	username string
	password string
}

// BearerTokenProvider fetches OAuth2 bearer tokens and caches them per
// identity. The cache is shared process-wide by default, so repeated
// authentication as the same user avoids redundant token fetches.
type BearerTokenProvider struct {
	cfg        AuthConfig
	cache      *TokenCache
	httpClient *http.Client
	log        logger.LogManager

	mu      sync.Mutex
	admin   identity
	current identity
}

// ProviderOption configures a BearerTokenProvider.
type ProviderOption func(*BearerTokenProvider)

// WithTokenCache replaces the process-wide DefaultTokenCache with an
// explicitly shared (or isolated) cache.
func WithTokenCache(cache *TokenCache) ProviderOption {
	return func(p *BearerTokenProvider) {
		p.cache = cache
	}
}

// WithProviderHTTPClient sets the http.Client used for token endpoint calls.
func WithProviderHTTPClient(c *http.Client) ProviderOption {
	return func(p *BearerTokenProvider) {
		p.httpClient = c
	}
}

// WithProviderLogger enables token-fetch diagnostics.
func WithProviderLogger(l logger.LogManager) ProviderOption {
	return func(p *BearerTokenProvider) {
		p.log = l
	}
}

// NewBearerTokenProvider creates a provider for the given credentials. The
// identity the provider is constructed with acts as the admin identity that
// SwitchToUser restores to.
func NewBearerTokenProvider(cfg AuthConfig, opts ...ProviderOption) *BearerTokenProvider {
	if cfg.GrantType == "" {
		if cfg.Username == "" {
			cfg.GrantType = "client_credentials"
		} else {
			cfg.GrantType = "password"
		}
	}

	p := &BearerTokenProvider{
		cfg:   cfg,
		cache: DefaultTokenCache,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		admin:   identity{username: cfg.Username, password: cfg.Password},
		current: identity{username: cfg.Username, password: cfg.Password},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Authenticate resolves a token for the current identity (from cache when
// possible) and sets the Authorization header on req.
func (p *BearerTokenProvider) Authenticate(ctx context.Context, req *http.Request) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// token returns the cached token for the current identity, fetching and
// caching one if none exists yet.
func (p *BearerTokenProvider) token(ctx context.Context) (string, error) {
	key := p.cacheKey()
	if tok, ok := p.cache.get(key); ok {
		return tok, nil
	}

	tok, err := p.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	p.cache.put(key, tok)
	return tok, nil
}

// RefreshToken fetches a token unconditionally and overwrites the cache entry
// for the current identity. Use it when a cached token is known to be stale;
// the provider never refreshes on its own, not even on a 401.
func (p *BearerTokenProvider) RefreshToken(ctx context.Context) (string, error) {
	tok, err := p.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	p.cache.put(p.cacheKey(), tok)
	return tok, nil
}

// SwitchToUser runs fn with the given identity and restores the admin
// identity on every exit path, including a panic inside fn.
//
// The switch is provider-wide: requests issued from other goroutines while fn
// runs also authenticate as the temporary user.
func (p *BearerTokenProvider) SwitchToUser(username, password string, fn func() error) error {
	p.setIdentity(identity{username: username, password: password})
	defer p.setIdentity(p.admin)
	return fn()
}

func (p *BearerTokenProvider) setIdentity(id identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = id
}

func (p *BearerTokenProvider) currentIdentity() identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// cacheKey derives the cache key from the current identity. Without a
// username (client-credentials grant) the key degenerates to the client id.
func (p *BearerTokenProvider) cacheKey() identityKey {
	id := p.currentIdentity()
	if id.username == "" {
		return identityKey{name: p.cfg.ClientID}
	}
	return identityKey{name: id.username, secret: id.password}
}

// fetchToken performs the form-encoded token endpoint call.
func (p *BearerTokenProvider) fetchToken(ctx context.Context) (string, error) {
	id := p.currentIdentity()

	data := url.Values{}
	data.Set("grant_type", p.cfg.GrantType)
	data.Set("client_id", p.cfg.ClientID)
	data.Set("client_secret", p.cfg.ClientSecret)
	if id.username != "" {
		data.Set("username", id.username)
		data.Set("password", id.password)
	}
	if p.cfg.Scope != "" {
		data.Set("scope", p.cfg.Scope)
	}
	if p.cfg.ResponseType != "" {
		data.Set("response_type", p.cfg.ResponseType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", &AuthFetchError{TokenURL: p.cfg.TokenURL, Err: fmt.Errorf("build token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &AuthFetchError{TokenURL: p.cfg.TokenURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthFetchError{TokenURL: p.cfg.TokenURL, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthFetchError{TokenURL: p.cfg.TokenURL, StatusCode: resp.StatusCode, Body: body}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", &AuthFetchError{TokenURL: p.cfg.TokenURL, StatusCode: resp.StatusCode, Body: body, Err: err}
	}
	if tokenResp.AccessToken == "" {
		return "", &AuthFetchError{
			TokenURL:   p.cfg.TokenURL,
			StatusCode: resp.StatusCode,
			Body:       body,
			Err:        fmt.Errorf("empty access token in response"),
		}
	}

	if p.log != nil {
		p.log.DebugF("fetched token for %q: %s", id.username, TokenClaims(tokenResp.AccessToken))
	}

	return tokenResp.AccessToken, nil
}

// TokenClaims decodes a JWT bearer token WITHOUT verifying its signature and
// returns a short subject/expiry summary for diagnostics. The auth flow and
// cache treat tokens as opaque strings; this helper exists only for logs and
// report attachments. Non-JWT tokens yield "opaque token".
func TokenClaims(token string) string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "opaque token"
	}

	sub, _ := claims.GetSubject()
	summary := "sub=" + sub
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		summary += " exp=" + exp.Format(time.RFC3339)
	}
	return summary
}

// StaticTokenProvider attaches a fixed bearer token to every request. Useful
// for tests and for APIs whose tokens are managed externally.
type StaticTokenProvider struct {
	Token string
}

// Authenticate sets the Authorization header with the static token.
func (p *StaticTokenProvider) Authenticate(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+p.Token)
	return nil
}
