package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/gateway"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AccountProfile shows the profile, or updates it when flags are given.
func (r *Runner) AccountProfile(ctx context.Context, cmd *cli.Command) error {
	update := gateway.ProfileUpdate{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
	}

	if update != (gateway.ProfileUpdate{}) {
		user, err := r.api.UpdateProfile(ctx, update)
		if err != nil {
			return r.authError(err, "update profile")
		}
		r.sessions.RefreshUser(ctx)
		return r.writePlain("✓ Profile updated: %s <%s>\n", user.Username, user.Email)
	}

	snapshot := r.sessions.Initialize(ctx)
	if !snapshot.IsAuthenticated() {
		return fmt.Errorf("%w: sign in first", shared.ErrNotAuthenticated)
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
	if len(user.Preferences) > 0 {
		r.writePlain("Preferred genres: %v\n", user.Preferences)
	}
	return nil
}

// AccountWatchlist lists the watchlist, optionally exporting it to a file.
func (r *Runner) AccountWatchlist(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.api.Watchlist(ctx)
	if err != nil {
		return r.authError(err, "fetch watchlist")
	}

	if path := cmd.String("export"); path != "" {
		format := cmd.String("format")
		if err := formatter.WriteExport(format, "Watchlist", path, movies); err != nil {
			return fmt.Errorf("failed to export watchlist: %w", err)
		}
		return r.writePlain("✓ Watchlist exported to %s (%s)\n", path, format)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, true)
	}

	r.writePlainHeader("Watchlist")
	if len(movies) == 0 {
		return r.writePlain("Your watchlist is empty.\n")
	}
	for i, movie := range movies {
		r.writePlain("%3d. [%d] %s %.1f/10\n", i+1, movie.ID, movie.Title, movie.VoteAverage)
	}
	return nil
}

// AccountHistory lists a page of the user's watch history.
func (r *Runner) AccountHistory(ctx context.Context, cmd *cli.Command) error {
	page, err := r.api.WatchHistoryPage(ctx, cmd.Int("page"))
	if err != nil {
		return r.authError(err, "fetch watch history")
	}
	return r.writeMoviePage("Watch History", page, cmd.Bool("json"))
}

// AccountToggle flips a movie's watchlist membership.
func (r *Runner) AccountToggle(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")

	status, err := r.api.ToggleWatchlist(ctx, id)
	if err != nil {
		return r.authError(err, "update watchlist")
	}

	r.sessions.RefreshUser(ctx)

	if status.InWatchlist {
		return r.writePlain("✓ Added movie %d to your watchlist\n", status.MovieID)
	}
	return r.writePlain("✓ Removed movie %d from your watchlist\n", status.MovieID)
}

// AccountAvatars lists the stock avatars.
func (r *Runner) AccountAvatars(ctx context.Context, cmd *cli.Command) error {
	avatars, err := r.api.Avatars(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch avatars: %w", err)
	}

	r.writePlainHeader("Avatars")
	for _, avatar := range avatars {
		r.writePlain("%-16s %s\n", avatar.Name, avatar.Path)
	}
	return nil
}

// AccountAvatarSet chooses a stock avatar.
func (r *Runner) AccountAvatarSet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: avatar path", shared.ErrMissingArgument)
	}

	user, err := r.api.ChooseAvatar(ctx, path)
	if err != nil {
		return r.authError(err, "set avatar")
	}

	r.sessions.RefreshUser(ctx)
	return r.writePlain("✓ Avatar set: %s\n", user.AvatarPath)
}

// AccountAvatarUpload uploads a custom avatar image.
func (r *Runner) AccountAvatarUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: image file", shared.ErrMissingArgument)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	user, err := r.api.UploadAvatar(ctx, filepath.Base(path), file)
	if err != nil {
		return r.authError(err, "upload avatar")
	}

	r.sessions.RefreshUser(ctx)
	return r.writePlain("✓ Avatar uploaded: %s\n", user.AvatarPath)
}
