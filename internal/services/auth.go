package services

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/storage"
)

// tokenRequestTimeout is the fixed ceiling on interactive token acquisition.
// Expiry resolves to "no token" rather than an error: a user who walked away
// from the consent screen is treated the same as one who cancelled it.
const tokenRequestTimeout = 2 * time.Minute

// KV is the slice of the key-value store the auth layer needs.
type KV interface {
	Set(key string, value any) bool
	Get(key string, dest any) bool
	Remove(key string) bool
}

// TokenSource acquires a fresh access token, typically by driving an OAuth
// flow. Implementations should honor ctx cancellation.
type TokenSource interface {
	Token(ctx context.Context) (*models.TokenCache, error)
}

// Authenticator owns the session-scoped token cache: tokens persist under the
// auth token key (which the quota evictor never touches) and are cleared on
// sign-out or expiry.
type Authenticator struct {
	kv      KV
	source  TokenSource
	timeout time.Duration
	logger  *log.Logger
}

// NewAuthenticator creates an Authenticator over the given store and source.
func NewAuthenticator(kv KV, source TokenSource, logger *log.Logger) *Authenticator {
	return &Authenticator{
		kv:      kv,
		source:  source,
		timeout: tokenRequestTimeout,
		logger:  logger,
	}
}

// IsAuthenticated reports whether a non-expired token is cached.
func (a *Authenticator) IsAuthenticated() bool {
	return a.cached() != nil
}

// RequestToken returns the cached token when still valid, otherwise asks the
// source for a fresh one under the fixed timeout. Timeout or failure yields
// nil, never an error: callers treat nil as "not signed in".
func (a *Authenticator) RequestToken(ctx context.Context) *models.TokenCache {
	if token := a.cached(); token != nil {
		return token
	}
	if a.source == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	token, err := a.source.Token(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			a.logger.Warn("token request timed out, treating as cancelled")
		} else {
			a.logger.Warn("token request failed", "err", err)
		}
		return nil
	}
	if token == nil || token.Expired() {
		return nil
	}

	a.kv.Set(storage.KeyAuthToken, token)
	return token
}

// SignOut clears the cached token.
func (a *Authenticator) SignOut() {
	a.kv.Remove(storage.KeyAuthToken)
}

// cached returns the persisted token if present and unexpired; an expired
// token is cleared on sight.
func (a *Authenticator) cached() *models.TokenCache {
	var token models.TokenCache
	if !a.kv.Get(storage.KeyAuthToken, &token) {
		return nil
	}
	if token.Expired() {
		a.kv.Remove(storage.KeyAuthToken)
		return nil
	}
	return &token
}
