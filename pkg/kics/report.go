// Package kics reads KICS results.json and converts queries into Port entities.
// A KICS report groups results by query, and each query becomes one entity whose
// properties describe the rule and the files where it fired.
package kics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/suzuki-shunsuke/logrus-error/logerr"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

// ErrReportNotFound is returned when the KICS result file doesn't exist.
var ErrReportNotFound = errors.New("KICS result file isn't found")

// Properties are the properties of a KICS finding entity.
// URL holds the repository name rather than the query URL.
type Properties struct {
	Category      string   `json:"category" yaml:"category"`
	CloudProvider string   `json:"cloud_provider" yaml:"cloud_provider"`
	Description   string   `json:"description" yaml:"description"`
	Files         []string `json:"files" yaml:"files"`
	Severity      string   `json:"severity" yaml:"severity"`
	Platform      string   `json:"platform" yaml:"platform"`
	URL           string   `json:"url" yaml:"url"`
}

// Parser converts KICS reports into entities of the blueprint Blueprint.
type Parser struct {
	fs        afero.Fs
	blueprint string
}

// NewParser creates a Parser. If blueprint is empty, port.BlueprintKICSScan is used.
func NewParser(fs afero.Fs, blueprint string) *Parser {
	if blueprint == "" {
		blueprint = port.BlueprintKICSScan
	}
	return &Parser{
		fs:        fs,
		blueprint: blueprint,
	}
}

// Read reads a KICS report and returns one entity per query.
// Errors aren't returned but logged: a missing file results in no entity,
// and a broken report results in the entities parsed before the broken query.
func (p *Parser) Read(logE *logrus.Entry, reportPath, repoName string) []*port.Entity {
	logE = logE.WithField("report", reportPath)
	entities, err := p.ReadFile(reportPath, repoName)
	if err == nil {
		return entities
	}
	if errors.Is(err, ErrReportNotFound) {
		logE.Error("KICS result file isn't found")
		return entities
	}
	logerr.WithError(logE, err).WithField("parsed_queries", len(entities)).Error("parse a KICS result file")
	return entities
}

// ReadFile opens a KICS report and parses it.
func (p *Parser) ReadFile(reportPath, repoName string) ([]*port.Entity, error) {
	f, err := p.fs.Open(reportPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*port.Entity{}, ErrReportNotFound
		}
		return []*port.Entity{}, fmt.Errorf("open a KICS result file: %w", err)
	}
	defer f.Close()
	return p.Parse(f, repoName)
}

// Parse parses a KICS report.
// The entities parsed before an error are returned along with the error.
func (p *Parser) Parse(r io.Reader, repoName string) ([]*port.Entity, error) {
	entities := []*port.Entity{}
	report := map[string]json.RawMessage{}
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return entities, fmt.Errorf("decode a KICS result file as JSON: %w", err)
	}
	rawQueries, ok := report["queries"]
	if !ok {
		return entities, errors.New("queries is missing")
	}
	queries := []map[string]json.RawMessage{}
	if err := json.Unmarshal(rawQueries, &queries); err != nil {
		return entities, fmt.Errorf("decode queries: %w", err)
	}
	for i, raw := range queries {
		q, err := decodeQuery(raw)
		if err != nil {
			return entities, logerr.WithFields(err, logrus.Fields{ //nolint:wrapcheck
				"query_index": i,
			})
		}
		entities = append(entities, p.entity(q, repoName))
	}
	return entities, nil
}

func (p *Parser) entity(q *Query, repoName string) *port.Entity {
	return &port.Entity{
		Identifier: q.QueryID,
		Title:      q.QueryName,
		Blueprint:  p.blueprint,
		Properties: &Properties{
			Category:      q.Category,
			CloudProvider: q.CloudProvider,
			Description:   q.Description,
			Files:         q.Files.Paths(),
			Severity:      q.Severity,
			Platform:      q.Platform,
			URL:           repoName,
		},
	}
}
