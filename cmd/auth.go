package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and persists the session token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.String("email")
	password := cmd.String("password")
	if password == "" {
		password = os.Getenv("MVX_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("%w: provide --password or set MVX_PASSWORD", shared.ErrMissingCredentials)
	}

	r.logger.Info("signing in", "email", email)

	snapshot, err := r.sessions.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if !snapshot.IsAuthenticated() {
		return fmt.Errorf("%w: session did not resolve after login", shared.ErrAuthFailed)
	}

	return r.writePlain("✓ Signed in as %s\n", snapshot.User.Username)
}

// AuthRegister creates a new account and then signs in with it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	email := cmd.String("email")
	password := cmd.String("password")
	confirm := cmd.String("confirm")
	if confirm == "" {
		confirm = password
	}

	user, err := r.api.Register(ctx, username, email, password, confirm)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	r.logger.Info("account created", "username", user.Username)
	r.writePlain("✓ Account created: %s\n", user.Username)

	snapshot, err := r.sessions.Login(ctx, email, password)
	if err != nil {
		r.logger.Warn("account created but sign-in failed", "error", err)
		return r.writePlain("Run 'mvx auth login' to sign in.\n")
	}

	if snapshot.IsAuthenticated() {
		return r.writePlain("✓ Signed in as %s\n", snapshot.User.Username)
	}
	return nil
}

// AuthLogout discards the stored session. Safe to run while signed out.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.sessions.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami resolves and prints the identity behind the stored session.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	snapshot := r.sessions.Initialize(ctx)

	if !snapshot.IsAuthenticated() {
		return r.writePlain("Not signed in (session: %s)\n", snapshot.State)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot.User, true)
	}

	user := snapshot.User
	r.writePlainHeader(user.Username)
	r.writePlain("Email: %s\n", user.Email)
	if user.AvatarPath != "" {
		r.writePlain("Avatar: %s\n", user.AvatarPath)
	}
	r.writePlain("Watchlist: %d movies\n", len(user.Watchlist))
	r.writePlain("Rated: %d movies\n", len(user.RatedMovies))
	return nil
}

// AuthStatus reports the local session state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	token, err := r.tokens.Load()
	if err != nil {
		return fmt.Errorf("failed to read session store: %w", err)
	}

	if token == "" {
		return r.writePlain("Session: anonymous (no stored token)\n")
	}

	snapshot := r.sessions.Snapshot()
	r.writePlain("Session: token stored, state %s\n", snapshot.State)
	if snapshot.IsAuthenticated() {
		r.writePlain("User: %s\n", snapshot.User.Username)
	}
	return nil
}
