package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/gateway"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	api      *gateway.Client
	sessions *session.Coordinator
	db       *sql.DB
	tokens   *repositories.TokenRepository
	cache    *repositories.MovieCacheRepository
	engine   *tasks.CacheEngine
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	API      *gateway.Client
	Sessions *session.Coordinator
	DB       *sql.DB
	Tokens   *repositories.TokenRepository
	Cache    *repositories.MovieCacheRepository
	Logger   *log.Logger
	Output   io.Writer
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

	var engine *tasks.CacheEngine
	if opts.API != nil && opts.Cache != nil {
		engine = tasks.NewCacheEngine(opts.API, opts.Cache)
	}

	return &Runner{
		config:   opts.Config,
		api:      opts.API,
		sessions: opts.Sessions,
		db:       opts.DB,
		tokens:   opts.Tokens,
		cache:    opts.Cache,
		engine:   engine,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// SetLogger swaps the runner's logger, e.g. to redirect logs away from a TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, recsCommand, accountCommand, cacheCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// authError normalizes a failed backend call. An unauthorized response while a
// token is held means the backend rejected it: the session is invalidated so
// the stale token is purged and subscribers observe the downgrade.
func (r *Runner) authError(err error, action string) error {
	if !gateway.IsUnauthorized(err) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	if r.tokens != nil {
		if token, loadErr := r.tokens.Load(); loadErr == nil && token != "" {
			if r.sessions != nil {
				r.sessions.Invalidate()
			}
			return fmt.Errorf("%w: sign in again", shared.ErrTokenExpired)
		}
	}
	return fmt.Errorf("%w: sign in first", shared.ErrNotAuthenticated)
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
