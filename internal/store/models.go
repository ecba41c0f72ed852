package store

import (
	"encoding/json"
	"time"

	"curriculum/api/internal/curriculum"
)

// Project is the persisted record of one course design: its strategy, its
// tree and an optional free-form syllabus blueprint.
type Project struct {
	ID                string
	OrgID             string
	Title             string
	Version           int
	Strategy          curriculum.Strategy
	Sessions          curriculum.Tree
	SyllabusBlueprint json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProjectSummary is the list row; scene_count and completion_rate are
// denormalized on every save.
type ProjectSummary struct {
	ID             string
	Title          string
	Version        int
	SceneCount     int
	CompletionRate int
	UpdatedAt      time.Time
}
