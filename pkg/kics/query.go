package kics

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Query is a query of a KICS report.
type Query struct {
	QueryID       string `json:"query_id"`
	QueryName     string `json:"query_name"`
	Category      string `json:"category"`
	CloudProvider string `json:"cloud_provider"`
	Description   string `json:"description"`
	Files         Files  `json:"files"`
	Severity      string `json:"severity"`
	Platform      string `json:"platform"`
}

var requiredKeys = []string{ //nolint:gochecknoglobals
	"query_id",
	"query_name",
	"category",
	"cloud_provider",
	"description",
	"files",
	"severity",
	"platform",
}

func decodeQuery(raw map[string]json.RawMessage) (*Query, error) {
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("query key is missing: %s", key)
		}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal a query as JSON: %w", err)
	}
	q := &Query{}
	if err := json.Unmarshal(b, q); err != nil {
		return nil, fmt.Errorf("decode a query: %w", err)
	}
	return q, nil
}

// File is a file where a query fired.
// KICS outputs objects with file_name, but a plain path is also accepted.
type File struct {
	FileName  string `json:"file_name"`
	Line      int    `json:"line,omitempty"`
	IssueType string `json:"issue_type,omitempty"`
}

// UnmarshalJSON accepts either a string or an object.
func (f *File) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.FileName = s
		return nil
	}
	type alias File
	a := &alias{}
	if err := json.Unmarshal(b, a); err != nil {
		return fmt.Errorf("decode a file: %w", err)
	}
	if a.FileName == "" {
		return errors.New("file_name is empty")
	}
	*f = File(*a)
	return nil
}

// Files is the list of files where a query fired.
type Files []*File

// Paths returns deduplicated file paths in order of first appearance.
func (fs Files) Paths() []string {
	paths := make([]string, 0, len(fs))
	seen := make(map[string]struct{}, len(fs))
	for _, f := range fs {
		if f == nil {
			continue
		}
		if _, ok := seen[f.FileName]; ok {
			continue
		}
		seen[f.FileName] = struct{}{}
		paths = append(paths, f.FileName)
	}
	return paths
}
