package main

import (
	"slices"

	"github.com/urfave/cli/v3"
)

// getCommands lists every subcommand: operational ones first, then the pipeline.
func getCommands(version string) []*cli.Command {
	return slices.Concat(getSystemCommands(version), getPipelineCommands(version))
}
