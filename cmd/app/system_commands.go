package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/slimtrack/cmd/app/commands"
	"github.com/allisson/slimtrack/internal/app"
	"github.com/allisson/slimtrack/internal/config"
)

// withContainer runs fn against a container built from the environment and
// releases it afterwards. One-shot commands use it; long-running ones manage
// their own container.
func withContainer(ctx context.Context, fn func(cfg *config.Config, c *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()
	return fn(cfg, container)
}

func migrationsPathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "path",
		Aliases: []string{"p"},
		Value:   "migrations",
		Usage:   "Directory holding the postgresql and mysql migration folders",
	}
}

func getSystemCommands(version string) []*cli.Command {
	migrateUp := func(ctx context.Context, cmd *cli.Command) error {
		return withContainer(ctx, func(cfg *config.Config, c *app.Container) error {
			return commands.RunMigrations(c.Logger(), cmd.String("path"), cfg.DBDriver, cfg.DBConnectionString)
		})
	}

	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the order HTTP API",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:   "migrate",
			Usage:  "Manage the database schema (applies pending migrations when no subcommand is given)",
			Flags:  []cli.Flag{migrationsPathFlag()},
			Action: migrateUp,
			Commands: []*cli.Command{
				{
					Name:   "up",
					Usage:  "Apply every pending migration",
					Flags:  []cli.Flag{migrationsPathFlag()},
					Action: migrateUp,
				},
				{
					Name:  "down",
					Usage: "Revert the most recent migrations",
					Flags: []cli.Flag{
						migrationsPathFlag(),
						&cli.IntFlag{
							Name:  "steps",
							Value: 1,
							Usage: "Number of migrations to revert",
						},
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(cfg *config.Config, c *app.Container) error {
							return commands.RollbackMigrations(
								c.Logger(),
								cmd.String("path"),
								cfg.DBDriver,
								cfg.DBConnectionString,
								int(cmd.Int("steps")),
							)
						})
					},
				},
				{
					Name:  "version",
					Usage: "Print the applied schema version",
					Flags: []cli.Flag{migrationsPathFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(cfg *config.Config, c *app.Container) error {
							return commands.PrintMigrationVersion(
								commands.Output,
								c.Logger(),
								cmd.String("path"),
								cfg.DBDriver,
								cfg.DBConnectionString,
							)
						})
					},
				},
			},
		},
		{
			Name:  "clean-outbox",
			Usage: "Delete published outbox messages older than the given number of days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Retention in days; published rows older than this are deleted",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Only count the rows that would be deleted",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: text or json",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, c *app.Container) error {
					outboxUseCase, err := c.OutboxUseCase()
					if err != nil {
						return err
					}
					return commands.RunCleanOutbox(
						ctx,
						outboxUseCase,
						c.Logger(),
						commands.Output,
						int(cmd.Int("days")),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
