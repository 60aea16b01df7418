// Package di provides dependency injection for the port-kics CLI.
// It creates and wires together all the dependencies needed to synchronize a KICS report.
package di

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/suzuki-shunsuke/port-kics/pkg/config"
	"github.com/suzuki-shunsuke/port-kics/pkg/controller/run"
	"github.com/suzuki-shunsuke/port-kics/pkg/kics"
	"github.com/suzuki-shunsuke/port-kics/pkg/log"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

type deps struct {
	fs         afero.Fs
	stdout     io.Writer
	stderr     io.Writer
	httpClient *http.Client
}

// Run executes the main sync logic.
// It validates the arguments, reads the configuration file, selects a sink,
// and runs the controller.
func Run(ctx context.Context, logE *logrus.Entry, flags *Flags, secrets *Secrets) error {
	return runWithDeps(ctx, logE, flags, secrets, &deps{
		fs:         afero.NewOsFs(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		httpClient: http.DefaultClient,
	})
}

func runWithDeps(ctx context.Context, logE *logrus.Entry, flags *Flags, secrets *Secrets, d *deps) error {
	reportPath, err := flags.ReportPath()
	if err != nil {
		return err
	}
	log.SetLevel(flags.LogLevel, logE)

	cfg, err := readConfig(d.fs, flags.Config)
	if err != nil {
		return err
	}
	if flags.BaseURL != "" {
		cfg.BaseURL = flags.BaseURL
	}

	sink, err := newSink(ctx, flags, secrets, cfg, d)
	if err != nil {
		return err
	}

	ctrl := run.New(kics.NewParser(d.fs, cfg.Blueprints.Finding), sink, &run.ParamRun{
		ReportPath:       reportPath,
		RepoName:         flags.RepoName(),
		ServiceBlueprint: cfg.Blueprints.Service,
		Relation:         cfg.Relation,
	})
	return ctrl.Run(ctx, logE) //nolint:wrapcheck
}

func readConfig(fs afero.Fs, configFilePath string) (*config.Config, error) {
	cfgFinder := config.NewFinder(fs)
	cfgReader := config.NewReader(fs)
	configPath, err := cfgFinder.Find(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("find configuration file: %w", err)
	}
	cfg := &config.Config{}
	if err := cfgReader.Read(cfg, configPath); err != nil {
		return nil, fmt.Errorf("read configuration file: %w", err)
	}
	return cfg, nil
}

func newSink(ctx context.Context, flags *Flags, secrets *Secrets, cfg *config.Config, d *deps) (run.Sink, error) {
	switch flags.Sink {
	case SinkStdout:
		sink, err := run.NewPrintSink(d.stdout, flags.Format)
		if err != nil {
			return nil, fmt.Errorf("create a sink: %w", err)
		}
		return sink, nil
	case SinkPort, "":
		client := port.New(ctx, &port.ClientConfig{
			BaseURL:      cfg.BaseURL,
			ClientID:     secrets.PortClientID,
			ClientSecret: secrets.PortClientSecret,
			HTTPClient:   d.httpClient,
		})
		return run.NewAPISink(client, cfg.RetryPolicy(), run.NewLogger(d.stderr)), nil
	default:
		return nil, fmt.Errorf("sink must be %s or %s: %s", SinkPort, SinkStdout, flags.Sink)
	}
}
