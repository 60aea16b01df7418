package kics_test

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/suzuki-shunsuke/port-kics/pkg/kics"
	"github.com/suzuki-shunsuke/port-kics/pkg/port"
)

const singleQuery = `{
  "queries": [
    {
      "query_id": "Q1",
      "query_name": "T1",
      "category": "C",
      "cloud_provider": "aws",
      "description": "D",
      "files": ["a.tf"],
      "severity": "HIGH",
      "platform": "Terraform"
    }
  ]
}`

func newMemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestParser_Read(t *testing.T) { //nolint:funlen
	t.Parallel()
	data := []struct {
		name      string
		files     map[string]string
		exp       []*port.Entity
		expLogged string
	}{
		{
			name:  "single query",
			files: map[string]string{"results.json": singleQuery},
			exp: []*port.Entity{
				{
					Identifier: "Q1",
					Title:      "T1",
					Blueprint:  "kicsScan",
					Properties: &kics.Properties{
						Category:      "C",
						CloudProvider: "aws",
						Description:   "D",
						Files:         []string{"a.tf"},
						Severity:      "HIGH",
						Platform:      "Terraform",
						URL:           "myrepo",
					},
				},
			},
		},
		{
			name:      "file isn't found",
			files:     map[string]string{},
			exp:       []*port.Entity{},
			expLogged: "KICS result file isn't found",
		},
		{
			name:      "queries is missing",
			files:     map[string]string{"results.json": `{"kics_version": "v2.1.3"}`},
			exp:       []*port.Entity{},
			expLogged: "parse a KICS result file",
		},
		{
			name:      "malformed JSON",
			files:     map[string]string{"results.json": `{"queries": [`},
			exp:       []*port.Entity{},
			expLogged: "parse a KICS result file",
		},
		{
			name: "a query key is missing",
			files: map[string]string{"results.json": `{"queries": [
  {"query_id": "Q1", "query_name": "T1", "category": "C", "cloud_provider": "aws", "description": "D", "files": [], "severity": "HIGH", "platform": "Terraform"},
  {"query_id": "Q2", "query_name": "T2"}
]}`},
			exp: []*port.Entity{
				{
					Identifier: "Q1",
					Title:      "T1",
					Blueprint:  "kicsScan",
					Properties: &kics.Properties{
						Category:      "C",
						CloudProvider: "aws",
						Description:   "D",
						Files:         []string{},
						Severity:      "HIGH",
						Platform:      "Terraform",
						URL:           "myrepo",
					},
				},
			},
			expLogged: "parse a KICS result file",
		},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			t.Parallel()
			logger, hook := test.NewNullLogger()
			parser := kics.NewParser(newMemFs(t, d.files), "")
			got := parser.Read(logrus.NewEntry(logger), "results.json", "myrepo")
			if diff := cmp.Diff(d.exp, got); diff != "" {
				t.Fatal(diff)
			}
			entry := hook.LastEntry()
			if d.expLogged == "" {
				if entry != nil {
					t.Fatalf("nothing should be logged, got %q", entry.Message)
				}
				return
			}
			if entry == nil {
				t.Fatalf("wanted %q to be logged", d.expLogged)
			}
			if entry.Level != logrus.ErrorLevel {
				t.Errorf("level: wanted %v, got %v", logrus.ErrorLevel, entry.Level)
			}
			if entry.Message != d.expLogged {
				t.Errorf("message: wanted %q, got %q", d.expLogged, entry.Message)
			}
		})
	}
}

func TestParser_ReadFile_notFound(t *testing.T) {
	t.Parallel()
	parser := kics.NewParser(afero.NewMemMapFs(), "")
	got, err := parser.ReadFile("results.json", "myrepo")
	if err != kics.ErrReportNotFound { //nolint:errorlint
		t.Fatalf("wanted %v, got %v", kics.ErrReportNotFound, err)
	}
	if len(got) != 0 {
		t.Errorf("wanted no entity, got %d", len(got))
	}
}

func TestParser_Parse_kicsFormat(t *testing.T) {
	t.Parallel()
	f, err := os.Open("testdata/results.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := kics.NewParser(afero.NewMemMapFs(), "securityScan").Parse(f, "myrepo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("wanted 2 entities, got %d", len(got))
	}
	if diff := cmp.Diff([]string{
		"568a4d22-3517-44a6-a7ad-6a7eed88722c",
		"4728cd65-a20c-49da-8b31-9c08b423e4db",
	}, port.Identifiers(got)); diff != "" {
		t.Error(diff)
	}
	for _, e := range got {
		if e.Blueprint != "securityScan" {
			t.Errorf("Blueprint: wanted %q, got %q", "securityScan", e.Blueprint)
		}
		props, ok := e.Properties.(*kics.Properties)
		if !ok {
			t.Fatalf("unexpected properties type %T", e.Properties)
		}
		if props.URL != "myrepo" {
			t.Errorf("URL: wanted %q, got %q", "myrepo", props.URL)
		}
	}
	props := got[0].Properties.(*kics.Properties) //nolint:forcetypeassert
	if diff := cmp.Diff([]string{"main.tf", "modules/s3/main.tf"}, props.Files); diff != "" {
		t.Error(diff)
	}
}

func TestParser_Parse_manyQueries(t *testing.T) {
	t.Parallel()
	queries := make([]string, 10)
	for i := range queries {
		queries[i] = `{"query_id": "Q` + string(rune('0'+i)) + `", "query_name": "T", "category": "C", "cloud_provider": "aws", "description": "D", "files": ["a.tf"], "severity": "LOW", "platform": "Terraform"}`
	}
	report := `{"queries": [` + strings.Join(queries, ",") + `]}`
	got, err := kics.NewParser(afero.NewMemMapFs(), "").Parse(strings.NewReader(report), "myrepo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(queries) {
		t.Fatalf("wanted %d entities, got %d", len(queries), len(got))
	}
	for i, e := range got {
		exp := "Q" + string(rune('0'+i))
		if e.Identifier != exp {
			t.Errorf("Identifier: wanted %q, got %q", exp, e.Identifier)
		}
	}
}

func TestFiles_Paths(t *testing.T) {
	t.Parallel()
	files := kics.Files{
		{FileName: "a.tf"},
		nil,
		{FileName: "b.tf"},
		{FileName: "a.tf"},
	}
	if diff := cmp.Diff([]string{"a.tf", "b.tf"}, files.Paths()); diff != "" {
		t.Fatal(diff)
	}
}
