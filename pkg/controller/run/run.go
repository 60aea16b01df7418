package run

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

// Run reads the report and writes the service entity and findings to the sink.
func (c *Controller) Run(ctx context.Context, logE *logrus.Entry) error {
	logE = logE.WithField("repository", c.param.RepoName)
	findings := c.reader.Read(logE, c.param.ReportPath, c.param.RepoName)
	service := port.NewServiceEntity(c.param.RepoName, c.param.Relation, port.Identifiers(findings))
	if c.param.ServiceBlueprint != "" {
		service.Blueprint = c.param.ServiceBlueprint
	}
	logE.WithField("findings", len(findings)).Debug("read a KICS result file")
	return c.sink.Write(ctx, logE, service, findings) //nolint:wrapcheck
}
