package di

import (
	"errors"

	"github.com/suzuki-shunsuke/port-kics/pkg/cli/flag"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

// Flags holds all command-line flags and environment variables of a sync.
type Flags struct {
	*flag.GlobalFlags

	Sink    string
	Format  string
	BaseURL string

	GitHubRepository string

	Args []string
}

const (
	SinkPort   = "port"
	SinkStdout = "stdout"
)

var errReportPathRequired = errors.New("the path to the KICS result file is required")

// ReportPath returns the path to the KICS result file passed as the first argument.
func (f *Flags) ReportPath() (string, error) {
	if len(f.Args) == 0 || f.Args[0] == "" {
		return "", errReportPathRequired
	}
	return f.Args[0], nil
}

// RepoName returns the repository name without the owner.
func (f *Flags) RepoName() string {
	return port.RepoName(f.GitHubRepository)
}
