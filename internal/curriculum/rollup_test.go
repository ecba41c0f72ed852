package curriculum

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func completePatch() ScenePatch {
	activity := "act_quiz"
	method := ABCPractice
	level := MediaLevel2
	format := "video"
	objective := "Recall the steps"
	moment := "Reflection"
	return ScenePatch{
		SelectedActivityID: &activity,
		ABCMethod:          &method,
		MediaLevel:         &level,
		MediaFormat:        &format,
		LearningObjective:  &objective,
		InteractionMoment:  &moment,
	}
}

func allSceneIDs(t Tree) []string {
	var ids []string
	for _, row := range FlattenScenes(t) {
		ids = append(ids, row.Scene.ID)
	}
	return ids
}

func TestTotalsConcreteScenario(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 1, 1, 1, 1, 1)
	sceneID := allSceneIDs(tree)[0]

	before := ProjectTotals(tree)
	want := Totals{TotalSessions: 1, TotalScenes: 1}
	if diff := cmp.Diff(want, before); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}

	tree = UpdateScene(tree, sceneID, completePatch())
	after := ProjectTotals(tree)
	want = Totals{TotalSessions: 1, TotalScenes: 1, ScenesWithActivity: 1, CompletedScenes: 1, CompletionRate: 100}
	if diff := cmp.Diff(want, after); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletionIsMonotonic(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 2, 1, 1, 2, 2)
	prev := ProjectTotals(tree).CompletionRate
	for _, id := range allSceneIDs(tree) {
		tree = UpdateScene(tree, id, completePatch())
		rate := ProjectTotals(tree).CompletionRate
		if rate < prev {
			t.Fatalf("completion dropped from %d to %d", prev, rate)
		}
		prev = rate
	}
	if prev != 100 {
		t.Fatalf("final completion = %d, want 100", prev)
	}
}

func TestPartialSceneIsIncomplete(t *testing.T) {
	activity := "act_1"
	s := ScenePatch{SelectedActivityID: &activity}.Apply(Scene{ID: "s", Title: "S"})
	if SceneComplete(&s) {
		t.Fatalf("scene with one field should not be complete")
	}
	want := []string{FieldABCMethod, FieldMediaLevel, FieldMediaFormat, FieldLearningObjective, FieldInteractionMoment}
	if diff := cmp.Diff(want, MissingFields(&s)); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}
	blank := "   "
	s.MediaFormat = blank
	if SceneComplete(&s) {
		t.Fatalf("whitespace does not count as present")
	}
}

func TestSessionSummaries(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 2, 2, 1, 1, 2)
	ids := allSceneIDs(tree)
	tree = UpdateScene(tree, ids[0], completePatch())
	activity := "act_2"
	tree = UpdateScene(tree, ids[1], ScenePatch{SelectedActivityID: &activity})

	got := SessionSummaries(tree)
	want := []SessionSummary{
		{SessionID: tree[0].ID, Title: "Session 1", Modules: 2, Scenes: 4, ScenesWithActivity: 2, CompletedScenes: 1, CompletionPercent: 25},
		{SessionID: tree[1].ID, Title: "Session 2", Modules: 2, Scenes: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenScenesOrder(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 2, 1, 1, 1, 2)
	rows := FlattenScenes(tree)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0].SessionTitle != "Session 1" || rows[3].SessionTitle != "Session 2" {
		t.Fatalf("rows out of order: %+v", rows)
	}
	if rows[1].Scene.Title != "Nueva Escena" || rows[1].TopicTitle != "Tema 1" {
		t.Fatalf("unexpected row %+v", rows[1])
	}
	if got := FlattenScenes(nil); got == nil || len(got) != 0 {
		t.Fatalf("empty tree should flatten to an empty slice")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct{ part, whole, want int }{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
	}
	for _, tc := range tests {
		if got := Percent(tc.part, tc.whole); got != tc.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tc.part, tc.whole, got, tc.want)
		}
	}
}

type rowTitles struct {
	Session, Module, Unit, Topic, Scene string
}

func TestFlattenNormalizedTree(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []rowTitles
	}{
		{
			name: "ragged sessions",
			raw: `{"sessions":[
				{"title":"Intro","modules":[{"title":"Safety","units":[{"topics":[
					{"title":"Hazards","scenes":[{"title":"Hook"},{}]},
					{"title":"Empty"}
				]}]}]},
				{"modules":[
					{"units":[{"title":"Lab","topics":[{}]}]},
					{"title":"No units"}
				]},
				{"title":"Bare"}
			]}`,
			want: []rowTitles{
				{"Intro", "Safety", "Unidad 1", "Hazards", "Hook"},
				{"Intro", "Safety", "Unidad 1", "Hazards", "Escena 2"},
				{"Intro", "Safety", "Unidad 1", "Empty", "Escena 1"},
				{"Sesion 2", "Modulo 1", "Lab", "Tema 1", "Escena 1"},
			},
		},
		{
			name: "bare session array",
			raw:  `[{"title":"Only","modules":[{"units":[{"topics":[{"title":"A"},{"title":"B","scenes":[{"title":"x"},{"title":"y"}]}]}]}]}]`,
			want: []rowTitles{
				{"Only", "Modulo 1", "Unidad 1", "A", "Escena 1"},
				{"Only", "Modulo 1", "Unidad 1", "B", "x"},
				{"Only", "Modulo 1", "Unidad 1", "B", "y"},
			},
		},
		{
			name: "no sessions",
			raw:  `{"sessions":[]}`,
			want: []rowTitles{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEditor()
			tree := ReplaceAll(buildTree(e, 1, 1, 1, 1, 1), e.NormalizeJSON([]byte(tc.raw)))
			if err := Validate(tree); err != nil {
				t.Fatalf("normalized tree invalid: %v", err)
			}

			rows := FlattenScenes(tree)
			if got, leaves := len(rows), ProjectTotals(tree).TotalScenes; got != leaves {
				t.Fatalf("rows = %d, leaf scenes = %d", got, leaves)
			}
			got := make([]rowTitles, 0, len(rows))
			for _, row := range rows {
				got = append(got, rowTitles{row.SessionTitle, row.ModuleTitle, row.UnitTitle, row.TopicTitle, row.Scene.Title})
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("row titles mismatch (-want +got):\n%s", diff)
			}

			for _, row := range rows {
				node, ok := Resolve(tree, Path{row.SessionID, row.ModuleID, row.UnitID, row.TopicID, row.Scene.ID})
				if !ok || node.Scene != row.Scene {
					t.Fatalf("row %q does not resolve to its scene", row.Scene.Title)
				}
			}
		})
	}
}
