package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/server"
	"github.com/desertthunder/yto/internal/services"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/storage"
	"github.com/urfave/cli/v3"
)

// AuthStatus reports whether a valid access token is cached.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	kv, err := storage.NewKeyValueStore(r.config.Storage.StatePath, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	defer kv.Close()

	auth := services.NewAuthenticator(kv, nil, r.logger)
	if auth.IsAuthenticated() {
		r.writePlainln("✓ Authenticated (valid token cached)")
	} else {
		r.writePlainln("✗ Not authenticated")
		r.writePlainln("Run 'yto auth token --access-token <token>' to install one.")
	}
	return nil
}

// AuthToken installs an externally obtained access token into the cache.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	accessToken := cmd.String("access-token")
	expiresIn := cmd.Int("expires-in")

	kv, err := storage.NewKeyValueStore(r.config.Storage.StatePath, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	defer kv.Close()

	token := models.TokenCache{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
	}
	if !kv.Set(storage.KeyAuthToken, &token) {
		return fmt.Errorf("%w: failed to cache token", shared.ErrStorageUnavailable)
	}

	r.logger.Info("access token cached", "expires_in", expiresIn)
	r.writePlainln("✓ Access token cached")
	return nil
}

// AuthLogin runs the interactive Spotify OAuth flow: opens the browser,
// listens for the redirect on the configured URI, and caches the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret required for login", shared.ErrMissingCredentials)
	}

	spotify, err := services.NewSpotifyService(map[string]string{
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
		"redirect_uri":  creds.RedirectURI,
	})
	if err != nil {
		return err
	}

	redirect, err := url.Parse(creds.RedirectURI)
	if err != nil || redirect.Host == "" {
		return fmt.Errorf("%w: invalid redirect_uri %q", shared.ErrInvalidConfig, creds.RedirectURI)
	}

	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/callback"
	}

	state := shared.GenerateID()
	handler := server.NewCallbackHandler(spotify.OAuthConfig(), state)
	srv, serverErrors := server.Listen(redirect.Host, callbackPath, handler)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := spotify.AuthURL(state)
	r.writePlainln("→ Opening browser for Spotify authorization...")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
		r.writePlainln("Open this URL in your browser:\n%s", authURL)
	}
	r.writePlainln("→ Waiting for authorization (2 minute timeout)...")

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	token, err := handler.Wait(waitCtx, serverErrors)
	if err != nil {
		return err
	}

	kv, err := storage.NewKeyValueStore(r.config.Storage.StatePath, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	defer kv.Close()

	cache := models.TokenCache{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry.UnixMilli(),
	}
	if !kv.Set(storage.KeyAuthToken, &cache) {
		return fmt.Errorf("%w: failed to cache token", shared.ErrStorageUnavailable)
	}

	r.logger.Info("authorization complete", "expires_at", token.Expiry)
	r.writePlainln("✓ Signed in to Spotify")
	return nil
}

// AuthSignOut discards the cached access token.
func (r *Runner) AuthSignOut(ctx context.Context, cmd *cli.Command) error {
	kv, err := storage.NewKeyValueStore(r.config.Storage.StatePath, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}
	defer kv.Close()

	services.NewAuthenticator(kv, nil, r.logger).SignOut()
	r.writePlainln("✓ Signed out")
	return nil
}
