// Package server runs the short-lived localhost HTTP listener that completes
// the OAuth2 authorization-code flow for the login command. It serves exactly
// one callback, exchanges the code for a token, and hands the result back to
// the caller over a channel.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/yto/internal/shared"
)

// Result is the outcome of one authorization attempt.
type Result struct {
	Token *oauth2.Token
	Err   error
}

// CallbackHandler completes the authorization-code exchange when the provider
// redirects back to the local listener. It processes at most one callback;
// later hits get a 400.
type CallbackHandler struct {
	config *oauth2.Config
	state  string

	mu      sync.Mutex
	handled bool
	once    sync.Once
	results chan Result
}

// NewCallbackHandler creates a handler expecting the given CSRF state token.
func NewCallbackHandler(config *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		config:  config,
		state:   state,
		results: make(chan Result, 1),
	}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.send(Result{Err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(Result{Err: fmt.Errorf("%w: %s (%s)", shared.ErrAuthFailed,
			query.Get("error"), query.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.send(Result{Err: fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(Result{Token: token})
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *CallbackHandler) send(result Result) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Wait blocks until the callback completes, the server fails, or the context
// expires.
func (h *CallbackHandler) Wait(ctx context.Context, serverErrors <-chan error) (*oauth2.Token, error) {
	select {
	case result := <-h.results:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Token, nil
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: authorization not completed", shared.ErrTimeout)
	}
}

// Listen starts an HTTP server on addr routing the callback path to the
// handler. Returns the server (for shutdown) and a channel that reports a
// startup or serve failure.
func Listen(addr, path string, handler *CallbackHandler) (*http.Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()
	return srv, errs
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
