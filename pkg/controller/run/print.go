package run

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
	"github.com/suzuki-shunsuke/port-kics/pkg/kics"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
	"github.com/suzuki-shunsuke/port-kics/pkg/sarif"
)

const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatSARIF = "sarif"
)

// PrintSink outputs entities instead of calling Port's API.
type PrintSink struct {
	stdout io.Writer
	format string
}

// NewPrintSink creates a PrintSink. An empty format means JSON.
func NewPrintSink(stdout io.Writer, format string) (*PrintSink, error) {
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatYAML, FormatSARIF:
	default:
		return nil, fmt.Errorf("format must be %s, %s, or %s: %s", FormatJSON, FormatYAML, FormatSARIF, format)
	}
	return &PrintSink{
		stdout: stdout,
		format: format,
	}, nil
}

// Write outputs the service entity followed by findings.
func (s *PrintSink) Write(_ context.Context, _ *logrus.Entry, service *port.Entity, findings []*port.Entity) error {
	switch s.format {
	case FormatYAML:
		return s.writeYAML(entityList(service, findings))
	case FormatSARIF:
		return s.writeJSON(buildSARIF(findings))
	default:
		return s.writeJSON(entityList(service, findings))
	}
}

func entityList(service *port.Entity, findings []*port.Entity) []*port.Entity {
	return append([]*port.Entity{service}, findings...)
}

func (s *PrintSink) writeJSON(v any) error {
	encoder := json.NewEncoder(s.stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode entities as JSON: %w", err)
	}
	return nil
}

func (s *PrintSink) writeYAML(v any) error {
	b, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("encode entities as YAML: %w", err)
	}
	if _, err := s.stdout.Write(b); err != nil {
		return fmt.Errorf("write entities: %w", err)
	}
	return nil
}

func buildSARIF(findings []*port.Entity) *sarif.Log {
	rules := make([]sarif.Rule, 0, len(findings))
	results := []sarif.Result{}
	for _, f := range findings {
		props, ok := f.Properties.(*kics.Properties)
		if !ok {
			continue
		}
		rule := sarif.Rule{
			ID:               f.Identifier,
			Name:             f.Title,
			ShortDescription: sarif.Message{Text: f.Title},
		}
		if props.Description != "" {
			rule.FullDescription = &sarif.Message{Text: props.Description}
		}
		rules = append(rules, rule)
		for _, file := range props.Files {
			results = append(results, sarif.Result{
				RuleID:  f.Identifier,
				Level:   sarif.Level(props.Severity),
				Message: sarif.Message{Text: fmt.Sprintf("%s (%s)", f.Title, props.Category)},
				Locations: []sarif.Location{
					{
						PhysicalLocation: sarif.PhysicalLocation{
							ArtifactLocation: sarif.ArtifactLocation{
								URI: file,
							},
						},
					},
				},
			})
		}
	}
	return &sarif.Log{
		Schema:  sarif.Schema,
		Version: sarif.Version,
		Runs: []sarif.Run{
			{
				Tool: sarif.Tool{
					Driver: sarif.Driver{
						Name:           "KICS",
						InformationURI: "https://kics.io",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}
