package curriculum

import (
	"math"
	"strings"
)

// SceneRow joins a Scene with the titles of its ancestors. It is the row
// shape of tabular views and exports.
type SceneRow struct {
	SessionID    string `json:"sessionId"`
	SessionTitle string `json:"session"`
	ModuleID     string `json:"moduleId"`
	ModuleTitle  string `json:"module"`
	UnitID       string `json:"unitId"`
	UnitTitle    string `json:"unit"`
	TopicID      string `json:"topicId"`
	TopicTitle   string `json:"topic"`
	Scene        *Scene `json:"scene"`
	Complete     bool   `json:"complete"`
}

// SessionSummary is the per-Session rollup.
type SessionSummary struct {
	SessionID          string `json:"sessionId"`
	Title              string `json:"title"`
	Modules            int    `json:"modules"`
	Scenes             int    `json:"scenes"`
	ScenesWithActivity int    `json:"scenesWithActivity"`
	CompletedScenes    int    `json:"completedScenes"`
	CompletionPercent  int    `json:"completionPercent"`
}

// Totals is the whole-project rollup.
type Totals struct {
	TotalSessions      int `json:"totalSessions"`
	TotalScenes        int `json:"totalScenes"`
	ScenesWithActivity int `json:"scenesWithActivity"`
	CompletedScenes    int `json:"completedScenes"`
	CompletionRate     int `json:"completionRate"`
}

// Completion fields, in the order MissingFields reports them.
const (
	FieldSelectedActivity  = "selectedActivityId"
	FieldABCMethod         = "abcMethod"
	FieldMediaLevel        = "mediaLevel"
	FieldMediaFormat       = "mediaFormat"
	FieldLearningObjective = "learningObjective"
	FieldInteractionMoment = "interactionMoment"
)

// MissingFields lists the completion fields s does not have yet.
func MissingFields(s *Scene) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check(FieldSelectedActivity, s.SelectedActivityID)
	check(FieldABCMethod, string(s.ABCMethod))
	check(FieldMediaLevel, string(s.MediaLevel))
	check(FieldMediaFormat, s.MediaFormat)
	check(FieldLearningObjective, s.LearningObjective)
	check(FieldInteractionMoment, s.InteractionMoment)
	return missing
}

// SceneComplete reports whether all six completion fields are present.
func SceneComplete(s *Scene) bool {
	return len(MissingFields(s)) == 0
}

func hasActivity(s *Scene) bool {
	return strings.TrimSpace(s.SelectedActivityID) != ""
}

// FlattenScenes returns one row per Scene in depth-first display order.
func FlattenScenes(t Tree) []SceneRow {
	rows := make([]SceneRow, 0)
	for _, session := range t {
		for _, module := range session.Modules {
			for _, unit := range module.Units {
				for _, topic := range unit.Topics {
					for _, scene := range topic.Scenes {
						rows = append(rows, SceneRow{
							SessionID:    session.ID,
							SessionTitle: session.Title,
							ModuleID:     module.ID,
							ModuleTitle:  module.Title,
							UnitID:       unit.ID,
							UnitTitle:    unit.Title,
							TopicID:      topic.ID,
							TopicTitle:   topic.Title,
							Scene:        scene,
							Complete:     SceneComplete(scene),
						})
					}
				}
			}
		}
	}
	return rows
}

// SessionSummaries rolls up every Session independently.
func SessionSummaries(t Tree) []SessionSummary {
	out := make([]SessionSummary, 0, len(t))
	for _, session := range t {
		summary := SessionSummary{
			SessionID: session.ID,
			Title:     session.Title,
			Modules:   len(session.Modules),
		}
		forEachScene(session, func(scene *Scene) {
			summary.Scenes++
			if hasActivity(scene) {
				summary.ScenesWithActivity++
			}
			if SceneComplete(scene) {
				summary.CompletedScenes++
			}
		})
		summary.CompletionPercent = Percent(summary.CompletedScenes, summary.Scenes)
		out = append(out, summary)
	}
	return out
}

// ProjectTotals rolls up the whole tree.
func ProjectTotals(t Tree) Totals {
	totals := Totals{TotalSessions: len(t)}
	for _, session := range t {
		forEachScene(session, func(scene *Scene) {
			totals.TotalScenes++
			if hasActivity(scene) {
				totals.ScenesWithActivity++
			}
			if SceneComplete(scene) {
				totals.CompletedScenes++
			}
		})
	}
	totals.CompletionRate = Percent(totals.CompletedScenes, totals.TotalScenes)
	return totals
}

// Percent returns round(100*part/whole), and 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

func forEachScene(session *Session, fn func(*Scene)) {
	for _, module := range session.Modules {
		for _, unit := range module.Units {
			for _, topic := range unit.Topics {
				for _, scene := range topic.Scenes {
					fn(scene)
				}
			}
		}
	}
}
