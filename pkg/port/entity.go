package port

import "strings"

const (
	// BlueprintService is the blueprint of the entity representing the scanned repository.
	BlueprintService = "service"
	// BlueprintKICSScan is the blueprint of KICS findings.
	BlueprintKICSScan = "kicsScan"
)

// Entity is the request body of Port's entity upsert API.
// Relations refer to other entities by identifier only.
type Entity struct {
	Identifier string              `json:"identifier" yaml:"identifier"`
	Title      string              `json:"title,omitempty" yaml:"title,omitempty"`
	Blueprint  string              `json:"blueprint" yaml:"blueprint"`
	Properties any                 `json:"properties,omitempty" yaml:"properties,omitempty"`
	Relations  map[string][]string `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// NewServiceEntity builds the service entity of a repository and relates it to findings.
// An empty ids yields an empty relation rather than a missing one.
func NewServiceEntity(repoName, relation string, ids []string) *Entity {
	if ids == nil {
		ids = []string{}
	}
	return &Entity{
		Identifier: repoName,
		Blueprint:  BlueprintService,
		Relations: map[string][]string{
			relation: ids,
		},
	}
}

// RepoName returns the repository name without the owner.
// e.g. suzuki-shunsuke/port-kics => port-kics
func RepoName(fullName string) string {
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// Identifiers returns the identifiers of entities in order.
func Identifiers(entities []*Entity) []string {
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.Identifier
	}
	return ids
}
