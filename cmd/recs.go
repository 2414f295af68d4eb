package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// RecsPersonalized lists recommendations for the signed-in user.
func (r *Runner) RecsPersonalized(ctx context.Context, cmd *cli.Command) error {
	snapshot := r.sessions.Snapshot()
	if !snapshot.IsAuthenticated() {
		r.logger.Info("not signed in, personalized feed will be empty")
	}

	page := r.api.Personalized(ctx, cmd.Int("limit"))
	return r.writeMoviePage("Recommended For You", page, cmd.Bool("json"))
}

// RecsSimilar lists movies similar to the given one.
func (r *Runner) RecsSimilar(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	page := r.api.Similar(ctx, id, cmd.Int("limit"))
	return r.writeMoviePage(fmt.Sprintf("Similar To %d", id), page, cmd.Bool("json"))
}

// RecsByGenre lists recommendations within a genre.
func (r *Runner) RecsByGenre(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if id <= 0 {
		return fmt.Errorf("%w: genre id", shared.ErrMissingArgument)
	}

	page := r.api.RecommendationsByGenre(ctx, id, cmd.Int("limit"))
	return r.writeMoviePage(fmt.Sprintf("Genre %d Picks", id), page, cmd.Bool("json"))
}

// RecsSetPreferences replaces the signed-in user's preferred genres.
func (r *Runner) RecsSetPreferences(ctx context.Context, cmd *cli.Command) error {
	genreIDs := cmd.IntSlice("genre")

	if err := r.api.UpdatePreferences(ctx, genreIDs); err != nil {
		return r.authError(err, "update preferences")
	}

	r.sessions.RefreshUser(ctx)

	if len(genreIDs) == 0 {
		return r.writePlain("✓ Cleared genre preferences\n")
	}
	return r.writePlain("✓ Preferences set: %d genres\n", len(genreIDs))
}
