package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/services"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/sorting"
	"github.com/desertthunder/yto/internal/storage"
	"github.com/desertthunder/yto/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	provider services.Provider // preset override, mainly for tests
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Provider services.Provider
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		provider: opts.Provider,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, pullCommand, listCommand, videosCommand,
		reorderCommand, searchCommand, exportCommand, storageCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session bundles the stores and organizer a command works against.
// Close releases the underlying bbolt and SQLite handles.
type session struct {
	kv        *storage.KeyValueStore
	gateway   *storage.Gateway
	sorter    *sorting.Layer
	organizer *tasks.Organizer
}

func (s *session) Close() {
	if s.kv != nil {
		s.kv.Close()
	}
}

// openSession opens the configured stores and wires an organizer over them.
// The provider is optional: offline commands pass withProvider=false and the
// organizer serves persisted data only.
func (r *Runner) openSession(ctx context.Context, withProvider bool) (*session, error) {
	kv, err := storage.NewKeyValueStore(r.config.Storage.StatePath, r.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}

	var structured *storage.StructuredStore
	if db, err := shared.NewDatabase(r.config.Storage.DatabasePath); err != nil {
		r.logger.Warn("structured store unavailable", "error", err)
	} else {
		structured = storage.NewStructuredStore(db, r.logger)
	}

	var provider services.Provider
	if withProvider {
		if provider, err = r.buildProvider(ctx, kv); err != nil {
			kv.Close()
			return nil, err
		}
	}

	gateway := storage.NewGateway(storage.GatewayOpts{
		KV:            kv,
		Structured:    structured,
		Namespace:     r.namespace(),
		ForceFallback: r.config.Storage.ForceFallback,
		Logger:        r.logger,
	})
	sorter := sorting.NewLayer(kv, r.logger)

	organizer := tasks.NewOrganizer(tasks.OrganizerOpts{
		Provider: provider,
		Store:    gateway,
		KV:       kv,
		Sorter:   sorter,
		Logger:   r.logger,
	})

	return &session{kv: kv, gateway: gateway, sorter: sorter, organizer: organizer}, nil
}

// buildProvider selects the provider from configured credentials: YouTube when
// an API key is present, Spotify otherwise. A cached access token from a prior
// auth is installed on whichever provider wins.
func (r *Runner) buildProvider(ctx context.Context, kv *storage.KeyValueStore) (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}

	var accessToken string
	var token models.TokenCache
	if kv != nil && kv.Get(storage.KeyAuthToken, &token) && !token.Expired() {
		accessToken = token.AccessToken
	}

	if key := r.config.Credentials.YouTube.APIKey; key != "" || accessToken != "" {
		svc := services.NewYouTubeService("")
		creds := map[string]string{"api_key": key}
		if accessToken != "" {
			creds["access_token"] = accessToken
		}
		if err := svc.Authenticate(ctx, creds); err != nil {
			return nil, err
		}
		return svc, nil
	}

	sp := r.config.Credentials.Spotify
	if sp.ClientID != "" && sp.ClientSecret != "" {
		svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     sp.ClientID,
			"client_secret": sp.ClientSecret,
			"redirect_uri":  sp.RedirectURI,
		})
		if err != nil {
			return nil, err
		}
		if accessToken != "" {
			if err := svc.Authenticate(ctx, map[string]string{"access_token": accessToken}); err != nil {
				return nil, err
			}
		}
		return svc, nil
	}

	return nil, fmt.Errorf("%w: set credentials.youtube.api_key or credentials.spotify in config.toml", shared.ErrMissingCredentials)
}

// namespace resolves the storage namespace matching the configured provider.
func (r *Runner) namespace() string {
	if r.provider != nil {
		return r.provider.Namespace()
	}
	if r.config.Credentials.YouTube.APIKey != "" {
		return models.NamespaceGoogle
	}
	if r.config.Credentials.Spotify.ClientID != "" {
		return models.NamespaceSpotify
	}
	return models.NamespaceDefault
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
