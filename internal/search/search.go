// Package search finds Scenes by text. Meilisearch serves queries when it is
// reachable; otherwise the caller's in-memory tree is scanned directly.
package search

import (
	"strings"

	"curriculum/api/internal/curriculum"
)

// SceneRecord is the document indexed for one Scene.
type SceneRecord struct {
	ID                string   `json:"id"`
	ProjectID         string   `json:"projectId"`
	SceneID           string   `json:"sceneId"`
	Path              []string `json:"path"`
	Title             string   `json:"title"`
	LearningObjective string   `json:"learningObjective"`
	MediaFormat       string   `json:"mediaFormat"`
	ABCMethod         string   `json:"abcMethod"`
	Session           string   `json:"session"`
	Module            string   `json:"module"`
	Unit              string   `json:"unit"`
	Topic             string   `json:"topic"`
}

// Result is a single search hit returned to the caller.
type Result struct {
	SceneID    string   `json:"sceneId"`
	Path       []string `json:"path"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet"`
	Breadcrumb string   `json:"breadcrumb"`
}

// Query describes a search request scoped to one project.
type Query struct {
	ProjectID string
	Text      string
	ABCMethod curriculum.ABCMethod // empty = any
	Limit     int
	Offset    int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Source  string   `json:"source"`
}

// Records flattens tree into one record per Scene.
func Records(projectID string, tree curriculum.Tree) []SceneRecord {
	rows := curriculum.FlattenScenes(tree)
	out := make([]SceneRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, SceneRecord{
			ID:                recordID(projectID, row.Scene.ID),
			ProjectID:         projectID,
			SceneID:           row.Scene.ID,
			Path:              []string{row.SessionID, row.ModuleID, row.UnitID, row.TopicID, row.Scene.ID},
			Title:             row.Scene.Title,
			LearningObjective: row.Scene.LearningObjective,
			MediaFormat:       row.Scene.MediaFormat,
			ABCMethod:         string(row.Scene.ABCMethod),
			Session:           row.SessionTitle,
			Module:            row.ModuleTitle,
			Unit:              row.UnitTitle,
			Topic:             row.TopicTitle,
		})
	}
	return out
}

// Meilisearch primary keys allow only alphanumerics, '-' and '_'.
func recordID(projectID, sceneID string) string {
	return projectID + "-" + sceneID
}

func breadcrumb(r SceneRecord) string {
	return strings.Join([]string{r.Session, r.Module, r.Unit, r.Topic}, " › ")
}
