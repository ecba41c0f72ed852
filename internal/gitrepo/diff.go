package gitrepo

import (
	"bytes"
	"encoding/json"
	"strconv"

	"curriculum/api/internal/curriculum"
)

// FieldChange is one line of a save-to-save comparison.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// DiffSnapshots summarizes what changed between two saves. Tree edits are
// reported as count changes rather than node by node.
func DiffSnapshots(from, to Snapshot) []FieldChange {
	fromTotals := curriculum.ProjectTotals(from.Sessions)
	toTotals := curriculum.ProjectTotals(to.Sessions)
	pairs := []FieldChange{
		{Field: "title", Before: from.Title, After: to.Title},
		{Field: "strategy.targetAudience", Before: from.Strategy.TargetAudience, After: to.Strategy.TargetAudience},
		{Field: "strategy.generalObjective", Before: from.Strategy.GeneralObjective, After: to.Strategy.GeneralObjective},
		{Field: "strategy.methodology", Before: from.Strategy.Methodology, After: to.Strategy.Methodology},
		{Field: "sessions", Before: strconv.Itoa(fromTotals.TotalSessions), After: strconv.Itoa(toTotals.TotalSessions)},
		{Field: "scenes", Before: strconv.Itoa(fromTotals.TotalScenes), After: strconv.Itoa(toTotals.TotalScenes)},
		{Field: "completionRate", Before: strconv.Itoa(fromTotals.CompletionRate), After: strconv.Itoa(toTotals.CompletionRate)},
	}
	result := make([]FieldChange, 0)
	for _, item := range pairs {
		if item.Before != item.After {
			result = append(result, item)
		}
	}
	if !bytes.Equal(normalizeJSON(from.SyllabusBlueprint), normalizeJSON(to.SyllabusBlueprint)) {
		result = append(result, FieldChange{Field: "syllabusBlueprint", Before: "[blueprint]", After: "[blueprint]"})
	}
	return result
}

func normalizeJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	normalized, err := json.Marshal(parsed)
	if err != nil {
		return nil
	}
	return normalized
}
