// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Session and account authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (falls back to MVX_PASSWORD)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "confirm",
						Usage: "Password confirmation (defaults to --password)",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
			{
				Name:   "status",
				Usage:  "Show session state without a network call",
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "popular",
				Usage: "List the popular feed",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Feed page number",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesPopular,
			},
			{
				Name:  "search",
				Usage: "Search the catalog by title",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page number",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesSearch,
			},
			{
				Name:  "show",
				Usage: "Show full details for a movie",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesShow,
			},
			{
				Name:   "genres",
				Usage:  "List the genre catalog",
				Action: r.MoviesGenres,
			},
			{
				Name:  "genre",
				Usage: "List movies in a genre",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesByGenre,
			},
			{
				Name:  "rate",
				Usage: "Rate a movie from 1 to 10",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "rating",
						Aliases:  []string{"r"},
						Usage:    "Rating between 1 and 10",
						Required: true,
					},
				},
				Action: r.MoviesRate,
			},
			{
				Name:  "open",
				Usage: "Open a movie's poster in the browser",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "size",
						Usage: "Image size variant (e.g. w342, original)",
					},
				},
				Action: r.MoviesOpen,
			},
		},
	}
}

// recsCommand handles recommendation feeds
func recsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recs",
		Usage: "Recommendation feeds",
		Commands: []*cli.Command{
			{
				Name:  "personalized",
				Usage: "Recommendations based on your ratings and watchlist",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum movies to return",
						Value: 8,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecsPersonalized,
			},
			{
				Name:  "similar",
				Usage: "Movies similar to the given one",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum movies to return",
						Value: 8,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecsSimilar,
			},
			{
				Name:  "by-genre",
				Usage: "Recommendations within a genre",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum movies to return",
						Value: 8,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecsByGenre,
			},
			{
				Name:  "set-preferences",
				Usage: "Replace your preferred genres",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Genre ID (repeatable)",
					},
				},
				Action: r.RecsSetPreferences,
			},
		},
	}
}

// accountCommand handles profile and watchlist operations
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Profile and watchlist management",
		Commands: []*cli.Command{
			{
				Name:  "profile",
				Usage: "Show or update your profile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "username",
						Usage: "New display name",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "New email address",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AccountProfile,
			},
			{
				Name:  "watchlist",
				Usage: "List your watchlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write the list to a file (format from --format)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, txt",
						Value: "json",
					},
				},
				Action: r.AccountWatchlist,
			},
			{
				Name:  "history",
				Usage: "List your watch history",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "History page number",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AccountHistory,
			},
			{
				Name:  "toggle",
				Usage: "Add or remove a movie from your watchlist",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "id",
					},
				},
				Action: r.AccountToggle,
			},
			{
				Name:  "avatar",
				Usage: "Manage your profile picture",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List the stock avatars",
						Action: r.AccountAvatars,
					},
					{
						Name:  "set",
						Usage: "Choose a stock avatar by path",
						Arguments: []cli.Argument{
							&cli.StringArg{
								Name: "path",
							},
						},
						Action: r.AccountAvatarSet,
					},
					{
						Name:  "upload",
						Usage: "Upload a custom avatar image",
						Arguments: []cli.Argument{
							&cli.StringArg{
								Name: "file",
							},
						},
						Action: r.AccountAvatarUpload,
					},
				},
			},
		},
	}
}

// cacheCommand handles the offline movie cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Offline movie cache operations",
		Commands: []*cli.Command{
			{
				Name:  "warm",
				Usage: "Fetch feeds into the local cache",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Popular feed pages to cache",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "genres",
						Usage: "Also cache the genre catalog and per-genre feeds",
					},
				},
				Action: r.CacheWarm,
			},
			{
				Name:  "list",
				Usage: "Show cached feeds or a single feed's movies",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "feed",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Drop every cached movie and genre",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles database initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// browseCommand launches the interactive catalog browser
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui"},
		Usage:   "Interactive catalog browser",
		Action:  r.Browse,
	}
}
