package daraja

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	errs "github.com/djkraph/payment-processor/internal/domain/error"
	coreport "github.com/djkraph/payment-processor/internal/domain/port/core"

	gocache "github.com/patrickmn/go-cache"
)

const (
	tokenCacheKey = "oauth_token"

	// tokenSafetyMargin is subtracted from the provider-declared expiry so
	// the cache refreshes slightly before the token actually dies
	tokenSafetyMargin = 60 * time.Second

	// defaultTokenLifetime is assumed when the provider omits or mangles
	// expires_in
	defaultTokenLifetime = 3600 * time.Second
)

// tokenResponse is the provider's OAuth token endpoint body. ExpiresIn
// arrives as a string ("3599").
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// TokenCache holds the single process-wide bearer token and refreshes it
// lazily on first use after expiry. The cache is shared across all callers;
// the mutex keeps concurrent cold-cache callers from issuing duplicate
// token requests.
type TokenCache struct {
	oauthURL       string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	cache          *gocache.Cache
	mu             sync.Mutex
	logger         coreport.Logger
}

// NewTokenCache creates a token cache against the provider's OAuth endpoint.
// Each refresh uses HTTP Basic auth built from the consumer key and secret
// with a bounded timeout.
func NewTokenCache(oauthURL, consumerKey, consumerSecret string, timeout time.Duration, logger coreport.Logger) *TokenCache {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TokenCache{
		oauthURL:       oauthURL,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient:     &http.Client{Timeout: timeout},
		cache:          gocache.New(gocache.NoExpiration, time.Minute),
		logger:         logger,
	}
}

// Token returns the cached bearer token while it is still usable, otherwise
// calls the token endpoint once and caches the result. Failures surface as
// ErrTokenAcquisitionFailed with no retry; the caller decides.
func (tc *TokenCache) Token(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if cached, ok := tc.cache.Get(tokenCacheKey); ok {
		return cached.(string), nil
	}

	token, lifetime, err := tc.fetch(ctx)
	if err != nil {
		return "", err
	}

	ttl := lifetime - tokenSafetyMargin
	if ttl <= 0 {
		ttl = time.Second
	}
	tc.cache.Set(tokenCacheKey, token, ttl)

	tc.logger.Debug("OAuth token refreshed", map[string]any{
		"ttl_seconds": int(ttl.Seconds()),
	})

	return token, nil
}

// fetch calls the provider's token endpoint
func (tc *TokenCache) fetch(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tc.oauthURL+"?grant_type=client_credentials", nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", errs.ErrTokenAcquisitionFailed, err.Error())
	}
	req.SetBasicAuth(tc.consumerKey, tc.consumerSecret)

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", errs.ErrTokenAcquisitionFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("%w: status %d: %s", errs.ErrTokenAcquisitionFailed, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", 0, fmt.Errorf("%w: %s", errs.ErrTokenAcquisitionFailed, err.Error())
	}
	if tr.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: empty access_token in response", errs.ErrTokenAcquisitionFailed)
	}

	lifetime := defaultTokenLifetime
	if seconds, err := strconv.Atoi(tr.ExpiresIn); err == nil && seconds > 0 {
		lifetime = time.Duration(seconds) * time.Second
	}

	return tr.AccessToken, lifetime, nil
}
