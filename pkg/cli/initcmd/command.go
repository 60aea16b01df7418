// Package initcmd implements the 'port-kics init' command.
// This package generates a configuration file (.port-kics.yaml) with commented
// default settings so that users can customize blueprints and the retry policy.
package initcmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/suzuki-shunsuke/port-kics/pkg/cli/flag"
	"github.com/suzuki-shunsuke/port-kics/pkg/controller/initcmd"
	"github.com/suzuki-shunsuke/port-kics/pkg/log"
	"github.com/urfave/cli/v3"
)

// New creates a new init command instance with the provided logger.
func New(logE *logrus.Entry, globalFlags *flag.GlobalFlags) *cli.Command {
	r := &runner{
		logE:        logE,
		globalFlags: globalFlags,
	}
	return r.Command()
}

type runner struct {
	logE        *logrus.Entry
	globalFlags *flag.GlobalFlags
}

// Command returns the CLI command definition for the init subcommand.
func (r *runner) Command() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create .port-kics.yaml if it doesn't exist",
		ArgsUsage: "[configuration file path]",
		Description: `Create .port-kics.yaml if it doesn't exist

$ port-kics init

You can also pass configuration file path.

e.g.

$ port-kics init .github/port-kics.yaml
`,
		Action: r.action,
	}
}

// action determines the output path of the configuration file and delegates to the controller.
func (r *runner) action(_ context.Context, c *cli.Command) error {
	log.SetLevel(r.globalFlags.LogLevel, r.logE)
	configFilePath := c.Args().First()
	if configFilePath == "" {
		configFilePath = r.globalFlags.Config
	}
	if configFilePath == "" {
		configFilePath = ".port-kics.yaml"
	}
	ctrl := initcmd.New(afero.NewOsFs())
	return ctrl.Init(r.logE, configFilePath) //nolint:wrapcheck
}
