// Package run implements the synchronization of a KICS report into Port.
// The controller reads a KICS report, builds the service entity of the repository
// related to every finding, and hands the entities to a Sink. The Sink either upserts
// them through Port's API or prints them, so both modes share a single pipeline.
package run

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

// ReportReader reads findings from a report. Errors are logged rather than returned.
type ReportReader interface {
	Read(logE *logrus.Entry, reportPath, repoName string) []*port.Entity
}

// Sink receives the entities of a run.
type Sink interface {
	Write(ctx context.Context, logE *logrus.Entry, service *port.Entity, findings []*port.Entity) error
}

type ParamRun struct {
	ReportPath string
	// RepoName is the repository name without the owner.
	RepoName string
	// ServiceBlueprint is the blueprint of the service entity.
	ServiceBlueprint string
	// Relation is the relation name from the service entity to findings.
	Relation string
}

type Controller struct {
	reader ReportReader
	sink   Sink
	param  *ParamRun
}

func New(reader ReportReader, sink Sink, param *ParamRun) *Controller {
	return &Controller{
		reader: reader,
		sink:   sink,
		param:  param,
	}
}
