package export

import (
	"encoding/json"
	"time"

	"curriculum/api/internal/curriculum"
)

type envelope struct {
	Metadata metadata    `json:"metadata"`
	Project  projectBody `json:"project"`
}

type metadata struct {
	ExportedAt string `json:"exportedAt"`
	Version    string `json:"version"`
	OrgID      string `json:"org_id"`
	Exporter   string `json:"exporter"`
}

type projectBody struct {
	Title             string              `json:"title"`
	Strategy          curriculum.Strategy `json:"strategy"`
	Structure         curriculum.Tree     `json:"structure"`
	SyllabusBlueprint json.RawMessage     `json:"syllabusBlueprint"`
}

func encodeJSON(req Request) ([]byte, error) {
	structure := req.Project.Sessions
	if structure == nil {
		structure = curriculum.Tree{}
	}
	blueprint := req.Project.SyllabusBlueprint
	if len(blueprint) == 0 {
		blueprint = json.RawMessage("null")
	}
	return json.MarshalIndent(envelope{
		Metadata: metadata{
			ExportedAt: req.ExportedAt.Format(time.RFC3339),
			Version:    SchemaVersion,
			OrgID:      req.Project.OrgID,
			Exporter:   Exporter,
		},
		Project: projectBody{
			Title:             req.Project.Title,
			Strategy:          req.Project.Strategy,
			Structure:         structure,
			SyllabusBlueprint: blueprint,
		},
	}, "", "  ")
}
