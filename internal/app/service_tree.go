package app

import (
	"context"
	"fmt"
	"strings"

	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/draft"
	"curriculum/api/internal/generator"
	"curriculum/api/internal/metrics"
)

// TreeUpdate is returned by every tree edit. Changed is false when the edit
// was a no-op (unresolved path, kind mismatch, blank title and so on).
type TreeUpdate struct {
	Structure curriculum.Tree   `json:"structure"`
	Changed   bool              `json:"changed"`
	Totals    curriculum.Totals `json:"totals"`
}

type GateReport struct {
	Gates  []curriculum.GateResult `json:"gates"`
	Passed bool                    `json:"passed"`
}

func (s *Service) AddSession(ctx context.Context, projectID string) (TreeUpdate, error) {
	return s.mutate(ctx, projectID, "add_session", s.editor.AddSession)
}

func (s *Service) AddChild(ctx context.Context, projectID string, input AddChildInput) (TreeUpdate, error) {
	if err := validate.Struct(input); err != nil {
		return TreeUpdate{}, err
	}
	return s.mutate(ctx, projectID, "add_"+input.Kind.String(), func(t curriculum.Tree) curriculum.Tree {
		return s.editor.AddChild(t, input.ParentPath, input.Kind)
	})
}

func (s *Service) RenameNode(ctx context.Context, projectID string, input RenameNodeInput) (TreeUpdate, error) {
	if err := validate.Struct(input); err != nil {
		return TreeUpdate{}, err
	}
	return s.mutate(ctx, projectID, "rename", func(t curriculum.Tree) curriculum.Tree {
		return curriculum.RenameNode(t, input.Path, input.Title)
	})
}

func (s *Service) DeleteNode(ctx context.Context, projectID string, input DeleteNodeInput) (TreeUpdate, error) {
	if err := validate.Struct(input); err != nil {
		return TreeUpdate{}, err
	}
	return s.mutate(ctx, projectID, "delete", func(t curriculum.Tree) curriculum.Tree {
		return curriculum.DeleteNode(t, input.Path)
	})
}

// UpdateScene merges input into the Scene with sceneID. Interaction moments
// must come from the catalog; activity ids are not checked and render as
// unassigned when they dangle.
func (s *Service) UpdateScene(ctx context.Context, projectID, sceneID string, input ScenePatchInput) (TreeUpdate, error) {
	if err := validate.Struct(input); err != nil {
		return TreeUpdate{}, err
	}
	if input.InteractionMoment != nil && !s.catalog.ValidMoment(*input.InteractionMoment) {
		return TreeUpdate{}, validationError("interactionMoment is not in the catalog", map[string]any{
			"interactionMoment": strings.TrimSpace(*input.InteractionMoment),
			"allowed":           s.catalog.Moments(),
		})
	}
	patch := input.patch()
	return s.mutate(ctx, projectID, "update_scene", func(t curriculum.Tree) curriculum.Tree {
		return curriculum.UpdateScene(t, sceneID, patch)
	})
}

func (s *Service) Reorder(ctx context.Context, projectID string, input ReorderInput) (TreeUpdate, error) {
	if err := validate.Struct(input); err != nil {
		return TreeUpdate{}, err
	}
	return s.mutate(ctx, projectID, "reorder", func(t curriculum.Tree) curriculum.Tree {
		return curriculum.Reorder(t, input.ActiveID, input.OverID, input.Kind, input.ParentPath)
	})
}

// Generate asks the generator for a structure and installs the normalized
// result in place of the current tree.
func (s *Service) Generate(ctx context.Context, projectID string, brief generator.Brief) (TreeUpdate, error) {
	if s.generator == nil {
		return TreeUpdate{}, generator.ErrDisabled
	}
	if err := validate.Struct(brief); err != nil {
		return TreeUpdate{}, err
	}
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return TreeUpdate{}, err
	}
	if !brief.Strategy.Complete() {
		ws.mu.Lock()
		brief.Strategy = ws.record.Strategy
		ws.mu.Unlock()
	}
	if s.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerateTimeout)
		defer cancel()
	}
	raw, err := s.generator.Generate(ctx, brief)
	if err != nil {
		return TreeUpdate{}, fmt.Errorf("generate structure: %w", err)
	}
	return s.replaceWith(ctx, ws, raw, "generate")
}

// Import normalizes externally produced structure JSON and installs it in
// place of the current tree. Malformed input yields an empty tree.
func (s *Service) Import(ctx context.Context, projectID string, raw []byte) (TreeUpdate, error) {
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return TreeUpdate{}, err
	}
	return s.replaceWith(ctx, ws, raw, "import")
}

func (s *Service) replaceWith(ctx context.Context, ws *workspace, raw []byte, source string) (TreeUpdate, error) {
	sessions := s.editor.NormalizeJSON(raw)
	metrics.Normalizations.WithLabelValues(source).Inc()
	metrics.NormalizedScenes.Observe(float64(curriculum.ProjectTotals(sessions).TotalScenes))
	s.log.Info("structure normalized", "project_id", ws.record.ID, "source", source, "sessions", len(sessions), "bytes", len(raw))
	return s.apply(ctx, ws, "replace_all", func(t curriculum.Tree) curriculum.Tree {
		return curriculum.ReplaceAll(t, sessions)
	}), nil
}

func (s *Service) Rows(ctx context.Context, projectID string) ([]curriculum.SceneRow, error) {
	tree, err := s.tree(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return curriculum.FlattenScenes(tree), nil
}

func (s *Service) Summaries(ctx context.Context, projectID string) ([]curriculum.SessionSummary, error) {
	tree, err := s.tree(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return curriculum.SessionSummaries(tree), nil
}

func (s *Service) Totals(ctx context.Context, projectID string) (curriculum.Totals, error) {
	tree, err := s.tree(ctx, projectID)
	if err != nil {
		return curriculum.Totals{}, err
	}
	return curriculum.ProjectTotals(tree), nil
}

func (s *Service) Gates(ctx context.Context, projectID string) (GateReport, error) {
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return GateReport{}, err
	}
	ws.mu.Lock()
	strategy := ws.record.Strategy
	ws.mu.Unlock()
	results := curriculum.EvaluateGates(ws.tree.Root(), strategy)
	return GateReport{Gates: results, Passed: curriculum.GatesPassed(results)}, nil
}

func (s *Service) tree(ctx context.Context, projectID string) (curriculum.Tree, error) {
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return ws.tree.Root(), nil
}

func (s *Service) mutate(ctx context.Context, projectID, op string, fn func(curriculum.Tree) curriculum.Tree) (TreeUpdate, error) {
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return TreeUpdate{}, err
	}
	return s.apply(ctx, ws, op, fn), nil
}

func (s *Service) apply(ctx context.Context, ws *workspace, op string, fn func(curriculum.Tree) curriculum.Tree) TreeUpdate {
	changed := false
	next := ws.tree.Apply(func(t curriculum.Tree) curriculum.Tree {
		out := fn(t)
		changed = !sameTree(t, out)
		return out
	})
	metrics.Mutations.WithLabelValues(op, metrics.Outcome(changed)).Inc()
	if changed {
		s.autosave(ctx, ws, next)
	}
	if next == nil {
		next = curriculum.Tree{}
	}
	return TreeUpdate{Structure: next, Changed: changed, Totals: curriculum.ProjectTotals(next)}
}

// autosave marks ws dirty and stores a draft of tree. Draft failures are
// logged; the edit itself already succeeded.
func (s *Service) autosave(ctx context.Context, ws *workspace, tree curriculum.Tree) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.dirty = true
	if s.drafts == nil {
		return
	}
	d := draft.Draft{
		ProjectID:   ws.record.ID,
		BaseVersion: ws.record.Version,
		Sessions:    tree,
		Strategy:    ws.record.Strategy,
		SavedAt:     s.now().UTC(),
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		s.log.Warn("autosave draft failed", "project_id", d.ProjectID, "error", err)
		return
	}
	ws.draftedAt = d.SavedAt
}

// sameTree reports whether b is a itself. Edits that change anything always
// return a freshly allocated root.
func sameTree(a, b curriculum.Tree) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
