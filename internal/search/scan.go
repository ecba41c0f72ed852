package search

import (
	"strings"

	"curriculum/api/internal/curriculum"
)

// Scan matches q against the records of tree without any index. Every
// whitespace-separated term must appear, case-insensitively, in at least one
// searchable field.
func Scan(tree curriculum.Tree, q Query) ([]Result, int) {
	terms := strings.Fields(strings.ToLower(q.Text))
	if len(terms) == 0 {
		return []Result{}, 0
	}

	matches := make([]Result, 0)
	for _, record := range Records(q.ProjectID, tree) {
		if q.ABCMethod != "" && record.ABCMethod != string(q.ABCMethod) {
			continue
		}
		fields := []string{record.Title, record.LearningObjective, record.Topic, record.Unit, record.Module, record.Session, record.MediaFormat}
		if !matchesAll(fields, terms) {
			continue
		}
		matches = append(matches, Result{
			SceneID:    record.SceneID,
			Path:       record.Path,
			Title:      record.Title,
			Snippet:    record.LearningObjective,
			Breadcrumb: breadcrumb(record),
		})
	}

	total := len(matches)
	offset := min(max(q.Offset, 0), total)
	end := min(offset+pageLimit(q.Limit), total)
	return matches[offset:end], total
}

func matchesAll(fields, terms []string) bool {
	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}
	for _, term := range terms {
		found := false
		for _, f := range lowered {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
