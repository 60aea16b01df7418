// Package cli defines the command line interface of port-kics.
package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/port-kics/pkg/cli/flag"
	"github.com/suzuki-shunsuke/port-kics/pkg/cli/initcmd"
	"github.com/suzuki-shunsuke/port-kics/pkg/cli/run"
	"github.com/urfave/cli/v3"
)

type LDFlags struct {
	Version string
	Commit  string
	Date    string
}

// Run builds the root command and runs it with args.
// The root command itself synchronizes a KICS report, and init and version are subcommands.
func Run(ctx context.Context, logE *logrus.Entry, ldFlags *LDFlags, args ...string) error {
	globalFlags := &flag.GlobalFlags{}
	runner := run.New(logE, globalFlags)
	cmd := &cli.Command{
		Name:  "port-kics",
		Usage: "Synchronize KICS results with Port. https://github.com/suzuki-shunsuke/port-kics",
		Description: `Read a KICS result file and upsert a service entity of the repository and an entity per KICS query to Port.

$ port-kics results.json

The repository name is taken from the environment variable GITHUB_REPOSITORY.
The credentials of Port are taken from the environment variables PORT_CLIENT_ID and PORT_CLIENT_SECRET.

To print entities instead of calling Port's API,

$ port-kics --sink stdout results.json
`,
		ArgsUsage:             "<KICS result file>",
		Version:               ldFlags.Version + " (" + ldFlags.Commit + ")",
		Flags:                 append(globalFlags.Flags(), runner.Flags()...),
		Action:                runner.Action,
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			initcmd.New(logE, globalFlags),
			newVersionCommand(),
		},
	}
	return cmd.Run(ctx, args) //nolint:wrapcheck
}
