package curriculum

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validTree() Tree {
	return Tree{{
		ID: "ses_1", Title: "S",
		Modules: []*Module{{
			ID: "mod_1", Title: "M",
			Units: []*Unit{{
				ID: "uni_1", Title: "U",
				Topics: []*Topic{{
					ID: "top_1", Title: "T",
					Scenes: []*Scene{
						{ID: "sce_1", Title: "A", DurationMinutes: 10, ABCMethod: ABCPractice, MediaLevel: MediaLevel2},
						{ID: "sce_2", Title: "B"},
					},
				}},
			}},
		}},
	}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Tree) Tree
		want   *TreeError
	}{
		{
			name:   "valid tree",
			mutate: func(tr Tree) Tree { return tr },
		},
		{
			name:   "empty tree",
			mutate: func(Tree) Tree { return Tree{} },
		},
		{
			name:   "null session",
			mutate: func(tr Tree) Tree { return append(tr, nil) },
			want:   &TreeError{Location: "sessions[1]", Field: "node", Reason: "must not be null"},
		},
		{
			name: "null scene",
			mutate: func(tr Tree) Tree {
				topic := tr[0].Modules[0].Units[0].Topics[0]
				topic.Scenes = append(topic.Scenes, nil)
				return tr
			},
			want: &TreeError{Location: "sessions[0].modules[0].units[0].topics[0].scenes[2]", Field: "node", Reason: "must not be null"},
		},
		{
			name: "blank id",
			mutate: func(tr Tree) Tree {
				tr[0].Modules[0].Units[0].ID = "  "
				return tr
			},
			want: &TreeError{Location: "sessions[0].modules[0].units[0]", Field: "id", Reason: "is required"},
		},
		{
			name: "duplicate session ids",
			mutate: func(tr Tree) Tree {
				return append(tr, &Session{ID: "ses_1", Title: "Copy"})
			},
			want: &TreeError{Location: "sessions[1]", ID: "ses_1", Field: "id", Reason: "duplicates sessions[0]"},
		},
		{
			name: "id reused across levels",
			mutate: func(tr Tree) Tree {
				tr[0].Modules[0].Units[0].Topics[0].Scenes[1].ID = "mod_1"
				return tr
			},
			want: &TreeError{
				Location: "sessions[0].modules[0].units[0].topics[0].scenes[1]",
				ID:       "mod_1", Field: "id", Reason: "duplicates sessions[0].modules[0]",
			},
		},
		{
			name: "negative duration",
			mutate: func(tr Tree) Tree {
				tr[0].Modules[0].Units[0].Topics[0].Scenes[0].DurationMinutes = -1
				return tr
			},
			want: &TreeError{
				Location: "sessions[0].modules[0].units[0].topics[0].scenes[0]",
				ID:       "sce_1", Field: "durationMinutes", Reason: "must not be negative",
			},
		},
		{
			name: "unknown abc method",
			mutate: func(tr Tree) Tree {
				tr[0].Modules[0].Units[0].Topics[0].Scenes[1].ABCMethod = "Lecture"
				return tr
			},
			want: &TreeError{
				Location: "sessions[0].modules[0].units[0].topics[0].scenes[1]",
				ID:       "sce_2", Field: "abcMethod", Reason: `unknown value "Lecture"`,
			},
		},
		{
			name: "unknown media level",
			mutate: func(tr Tree) Tree {
				tr[0].Modules[0].Units[0].Topics[0].Scenes[1].MediaLevel = "Level9"
				return tr
			},
			want: &TreeError{
				Location: "sessions[0].modules[0].units[0].topics[0].scenes[1]",
				ID:       "sce_2", Field: "mediaLevel", Reason: `unknown value "Level9"`,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.mutate(validTree()))
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var got *TreeError
			if !errors.As(err, &got) {
				t.Fatalf("want *TreeError, got %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("tree error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateAcceptsEditorTrees(t *testing.T) {
	e := newTestEditor()
	tree := buildTree(e, 2, 2, 1, 2, 2)
	if err := Validate(tree); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCompactDropsNullNodes(t *testing.T) {
	tree := validTree()
	tree[0].Modules[0].Units[0].Topics[0].Scenes = append(tree[0].Modules[0].Units[0].Topics[0].Scenes, nil)
	tree[0].Modules = append(tree[0].Modules, nil)
	tree = append(Tree{nil}, tree...)

	got := Compact(tree)
	if diff := cmp.Diff(validTree(), got); diff != "" {
		t.Fatalf("compact mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(got); err != nil {
		t.Fatalf("Validate after Compact: %v", err)
	}
	if len(tree) != 2 || tree[0] != nil {
		t.Fatalf("input tree was modified")
	}
	if n := len(tree[1].Modules[0].Units[0].Topics[0].Scenes); n != 3 {
		t.Fatalf("input scenes modified: got %d", n)
	}
}
