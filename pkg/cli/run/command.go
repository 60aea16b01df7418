// Package run implements the root action of port-kics, which synchronizes a KICS report.
package run

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/port-kics/pkg/cli/flag"
	"github.com/suzuki-shunsuke/port-kics/pkg/di"
	"github.com/urfave/cli/v3"
)

// Runner holds the flags of the sync action.
type Runner struct {
	logE        *logrus.Entry
	globalFlags *flag.GlobalFlags
	flags       *di.Flags
}

func New(logE *logrus.Entry, globalFlags *flag.GlobalFlags) *Runner {
	return &Runner{
		logE:        logE,
		globalFlags: globalFlags,
		flags: &di.Flags{
			GlobalFlags: globalFlags,
		},
	}
}

func (r *Runner) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sink",
			Usage:       "Where entities are written. port or stdout",
			Value:       di.SinkPort,
			Sources:     cli.EnvVars("PORT_KICS_SINK"),
			Destination: &r.flags.Sink,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "Output format of the stdout sink. json, yaml, or sarif",
			Value:       "json",
			Sources:     cli.EnvVars("PORT_KICS_FORMAT"),
			Destination: &r.flags.Format,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of Port API",
			Sources:     cli.EnvVars("PORT_BASE_URL"),
			Destination: &r.flags.BaseURL,
		},
	}
}

// Action synchronizes the KICS report passed as the first argument.
func (r *Runner) Action(ctx context.Context, c *cli.Command) error {
	r.flags.Args = c.Args().Slice()
	di.SetEnv(r.flags, os.Getenv)
	secrets := &di.Secrets{}
	secrets.SetFromEnv(os.Getenv)
	return di.Run(ctx, r.logE, r.flags, secrets) //nolint:wrapcheck
}
