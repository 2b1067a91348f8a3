package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/slimtrack/cmd/app/commands"
)

func getPipelineCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "worker",
			Usage: "Start stage workers and the outbox relay",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "stages",
					Aliases: []string{"s"},
					Value:   "all",
					Usage:   "Comma-separated stages to consume (processing,transit,delivery,completion) or 'all'",
				},
				&cli.BoolFlag{
					Name:  "no-relay",
					Value: false,
					Usage: "Do not run the outbox relay in this process",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				stages, err := commands.ParseStages(cmd.String("stages"))
				if err != nil {
					return err
				}
				return commands.RunWorker(ctx, version, stages, !cmd.Bool("no-relay"))
			},
		},
	}
}
