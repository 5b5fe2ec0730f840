package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/storage"
)

// fakeKV is an in-memory token store for auth tests.
type fakeKV struct {
	tokens map[string]models.TokenCache
}

func newFakeKV() *fakeKV {
	return &fakeKV{tokens: make(map[string]models.TokenCache)}
}

func (f *fakeKV) Set(key string, value any) bool {
	switch v := value.(type) {
	case *models.TokenCache:
		f.tokens[key] = *v
	case models.TokenCache:
		f.tokens[key] = v
	default:
		return false
	}
	return true
}

func (f *fakeKV) Get(key string, dest any) bool {
	token, ok := f.tokens[key]
	if !ok {
		return false
	}
	if d, ok := dest.(*models.TokenCache); ok {
		*d = token
		return true
	}
	return false
}

func (f *fakeKV) Remove(key string) bool {
	delete(f.tokens, key)
	return true
}

// fakeSource returns a fixed token, an error, or blocks until the context
// expires.
type fakeSource struct {
	token *models.TokenCache
	err   error
	block bool
	calls int
}

func (f *fakeSource) Token(ctx context.Context) (*models.TokenCache, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.token, f.err
}

func validToken() *models.TokenCache {
	return &models.TokenCache{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
	}
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("CachedTokenReused", func(t *testing.T) {
		kv := newFakeKV()
		kv.Set(storage.KeyAuthToken, validToken())
		source := &fakeSource{}

		auth := NewAuthenticator(kv, source, logger)
		token := auth.RequestToken(ctx)
		if token == nil || token.AccessToken != "tok" {
			t.Fatalf("expected cached token, got %+v", token)
		}
		if source.calls != 0 {
			t.Error("source should not run while the cache is valid")
		}
		if !auth.IsAuthenticated() {
			t.Error("cached valid token means authenticated")
		}
	})

	t.Run("ExpiredTokenClearedAndRefetched", func(t *testing.T) {
		kv := newFakeKV()
		kv.Set(storage.KeyAuthToken, &models.TokenCache{
			AccessToken: "stale",
			ExpiresAt:   time.Now().Add(-time.Minute).UnixMilli(),
		})
		source := &fakeSource{token: validToken()}

		auth := NewAuthenticator(kv, source, logger)
		token := auth.RequestToken(ctx)
		if token == nil || token.AccessToken != "tok" {
			t.Fatalf("expected fresh token, got %+v", token)
		}
		if source.calls != 1 {
			t.Errorf("expected 1 source call, got %d", source.calls)
		}
	})

	t.Run("TimeoutResolvesToNoToken", func(t *testing.T) {
		kv := newFakeKV()
		source := &fakeSource{block: true}

		auth := NewAuthenticator(kv, source, logger)
		auth.timeout = 20 * time.Millisecond

		if token := auth.RequestToken(ctx); token != nil {
			t.Errorf("timeout should yield nil, got %+v", token)
		}
	})

	t.Run("SourceFailureResolvesToNoToken", func(t *testing.T) {
		kv := newFakeKV()
		source := &fakeSource{err: errors.New("consent denied")}

		auth := NewAuthenticator(kv, source, logger)
		if token := auth.RequestToken(ctx); token != nil {
			t.Errorf("failure should yield nil, got %+v", token)
		}
	})

	t.Run("SuccessfulRequestPersists", func(t *testing.T) {
		kv := newFakeKV()
		source := &fakeSource{token: validToken()}

		auth := NewAuthenticator(kv, source, logger)
		auth.RequestToken(ctx)

		if _, ok := kv.tokens[storage.KeyAuthToken]; !ok {
			t.Error("fresh token should be cached")
		}
	})

	t.Run("SignOutClearsCache", func(t *testing.T) {
		kv := newFakeKV()
		kv.Set(storage.KeyAuthToken, validToken())

		auth := NewAuthenticator(kv, &fakeSource{}, logger)
		auth.SignOut()

		if auth.IsAuthenticated() {
			t.Error("sign-out should clear the cached token")
		}
	})
}
