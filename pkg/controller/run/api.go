package run

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/logrus-error/logerr"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
	"github.com/suzuki-shunsuke/port-kics/pkg/retry"
)

// PortClient is the subset of port.Client used by APISink.
type PortClient interface {
	Authenticate() error
	UpsertEntity(ctx context.Context, entity *port.Entity) error
}

// APISink upserts entities through Port's API.
// Every upsert is retried with the retry policy, and the first entity that exhausts
// the retries aborts the run.
type APISink struct {
	client PortClient
	policy *retry.Policy
	logger *Logger
}

func NewAPISink(client PortClient, policy *retry.Policy, logger *Logger) *APISink {
	return &APISink{
		client: client,
		policy: policy,
		logger: logger,
	}
}

func (s *APISink) Write(ctx context.Context, logE *logrus.Entry, service *port.Entity, findings []*port.Entity) error {
	if err := s.client.Authenticate(); err != nil {
		return fmt.Errorf("authenticate to Port: %w", err)
	}
	if err := s.upsert(ctx, logE, service); err != nil {
		return fmt.Errorf("upsert a service entity: %w", err)
	}
	for i, finding := range findings {
		if err := s.upsert(ctx, logE, finding); err != nil {
			return fmt.Errorf("upsert a finding entity: %w", logerr.WithFields(err, logrus.Fields{
				"synced_findings": i,
				"total_findings":  len(findings),
			}))
		}
	}
	logE.WithField("findings", len(findings)).Info("synchronized KICS findings with Port")
	return nil
}

func (s *APISink) upsert(ctx context.Context, logE *logrus.Entry, entity *port.Entity) error {
	logE = logE.WithFields(logrus.Fields{
		"blueprint":  entity.Blueprint,
		"identifier": entity.Identifier,
	})
	err := s.policy.Do(ctx, logE, func(ctx context.Context) error {
		return s.client.UpsertEntity(ctx, entity)
	})
	if err != nil {
		s.logger.Output(levelError, "failed to upsert", entity)
		return logerr.WithFields(err, logrus.Fields{ //nolint:wrapcheck
			"blueprint":  entity.Blueprint,
			"identifier": entity.Identifier,
		})
	}
	s.logger.Output("info", "upserted", entity)
	return nil
}
