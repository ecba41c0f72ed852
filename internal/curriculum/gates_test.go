package curriculum

import "testing"

func gateMap(results []GateResult) map[GateID]bool {
	out := make(map[GateID]bool, len(results))
	for _, r := range results {
		out[r.ID] = r.Passed
	}
	return out
}

func TestGatesOrderIsFixed(t *testing.T) {
	results := EvaluateGates(nil, Strategy{})
	want := []GateID{GateStrategy, GateStructure, GateObjectives, GateMethods, GateCompletion}
	if len(results) != len(want) {
		t.Fatalf("gates = %d, want %d", len(results), len(want))
	}
	for i, id := range want {
		if results[i].ID != id || results[i].Label == "" {
			t.Fatalf("gate %d = %+v, want %s", i, results[i], id)
		}
	}
}

func TestGatesEmptyTree(t *testing.T) {
	got := gateMap(EvaluateGates(Tree{}, Strategy{}))
	if got[GateStrategy] || got[GateStructure] || got[GateCompletion] {
		t.Fatalf("empty project should fail strategy, structure and completion: %+v", got)
	}
	if !got[GateObjectives] || !got[GateMethods] {
		t.Fatalf("scene checks hold when there are no scenes: %+v", got)
	}
}

func TestGatesAllPass(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 1, 1, 1, 1, 5)
	for _, id := range allSceneIDs(tree) {
		tree = UpdateScene(tree, id, completePatch())
	}
	strategy := Strategy{TargetAudience: "Nurses", GeneralObjective: "Triage", Methodology: "Blended"}
	results := EvaluateGates(tree, strategy)
	if !GatesPassed(results) {
		t.Fatalf("expected all gates to pass: %+v", results)
	}
}

func TestCompletionGateThreshold(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 1, 1, 1, 1, 5)
	ids := allSceneIDs(tree)
	for _, id := range ids[:3] {
		tree = UpdateScene(tree, id, completePatch())
	}
	if gateMap(EvaluateGates(tree, Strategy{}))[GateCompletion] {
		t.Fatalf("60%% completion should not pass")
	}
	tree = UpdateScene(tree, ids[3], completePatch())
	if !gateMap(EvaluateGates(tree, Strategy{}))[GateCompletion] {
		t.Fatalf("80%% completion should pass")
	}
}

func TestStrategyComplete(t *testing.T) {
	if (Strategy{TargetAudience: "a", GeneralObjective: " ", Methodology: "m"}).Complete() {
		t.Fatalf("blank objective should be incomplete")
	}
	if !(Strategy{TargetAudience: "a", GeneralObjective: "o", Methodology: "m"}).Complete() {
		t.Fatalf("filled strategy should be complete")
	}
}
