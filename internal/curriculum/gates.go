package curriculum

import "strings"

// Strategy is the project's instructional strategy record. It lives next to
// the tree, not inside it.
type Strategy struct {
	TargetAudience   string `json:"targetAudience"`
	GeneralObjective string `json:"generalObjective"`
	Methodology      string `json:"methodology"`
}

// Complete reports whether the three required fields are filled in.
func (s Strategy) Complete() bool {
	return strings.TrimSpace(s.TargetAudience) != "" &&
		strings.TrimSpace(s.GeneralObjective) != "" &&
		strings.TrimSpace(s.Methodology) != ""
}

type GateID string

const (
	GateStrategy   GateID = "strategy"
	GateStructure  GateID = "structure"
	GateObjectives GateID = "objectives"
	GateMethods    GateID = "abc_methods"
	GateCompletion GateID = "completion"
)

// CompletionThreshold is the minimum project completion rate for the
// completion gate.
const CompletionThreshold = 80

type GateResult struct {
	ID     GateID `json:"id"`
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// EvaluateGates runs the readiness checks in their fixed display order.
// Every check is always evaluated. Checks over "every Scene" hold trivially
// for a tree without Scenes.
func EvaluateGates(t Tree, strategy Strategy) []GateResult {
	hasModule := false
	for _, session := range t {
		if len(session.Modules) > 0 {
			hasModule = true
			break
		}
	}

	objectives, methods := true, true
	for _, session := range t {
		forEachScene(session, func(scene *Scene) {
			if strings.TrimSpace(scene.LearningObjective) == "" {
				objectives = false
			}
			if strings.TrimSpace(string(scene.ABCMethod)) == "" {
				methods = false
			}
		})
	}

	return []GateResult{
		{ID: GateStrategy, Label: "Strategy defined", Passed: strategy.Complete()},
		{ID: GateStructure, Label: "At least one session with modules", Passed: hasModule},
		{ID: GateObjectives, Label: "Every scene has a learning objective", Passed: objectives},
		{ID: GateMethods, Label: "Every scene has an ABC method", Passed: methods},
		{ID: GateCompletion, Label: "Project completion at or above 80%", Passed: ProjectTotals(t).CompletionRate >= CompletionThreshold},
	}
}

// GatesPassed reports whether every result passed.
func GatesPassed(results []GateResult) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
