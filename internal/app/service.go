package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"curriculum/api/internal/artifacts"
	"curriculum/api/internal/catalog"
	"curriculum/api/internal/config"
	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/draft"
	"curriculum/api/internal/export"
	"curriculum/api/internal/generator"
	"curriculum/api/internal/gitrepo"
	"curriculum/api/internal/logger"
	"curriculum/api/internal/search"
	"curriculum/api/internal/store"
	"curriculum/api/internal/util"
)

type projectStore interface {
	Ping(context.Context) error
	CreateProject(context.Context, store.Project) (store.Project, error)
	GetProject(context.Context, string) (store.Project, error)
	ListProjects(context.Context, string) ([]store.ProjectSummary, error)
	SaveProject(context.Context, store.Project) (store.Project, error)
}

type historyRepo interface {
	Commit(projectID string, snapshot gitrepo.Snapshot, author, message string) (gitrepo.CommitInfo, error)
	History(projectID string, limit int) ([]gitrepo.CommitInfo, error)
	At(projectID, hash string) (gitrepo.Snapshot, error)
}

type draftStore interface {
	Save(context.Context, draft.Draft) error
	Load(context.Context, string) (draft.Draft, error)
	Discard(context.Context, string) error
	Ping(context.Context) error
}

type structureGenerator interface {
	Generate(context.Context, generator.Brief) ([]byte, error)
}

type sceneSearch interface {
	Search(search.Query, curriculum.Tree) search.Response
	IndexProject(string, curriculum.Tree)
}

type artifactStore interface {
	Upload(ctx context.Context, projectID, filename, contentType string, data []byte) (artifacts.Artifact, error)
}

type exporter interface {
	Export(context.Context, export.Request) (*export.Result, error)
}

// Deps are the collaborators of a Service. Store and Git are required;
// every other field may be left nil to disable that feature.
type Deps struct {
	Store     projectStore
	Git       historyRepo
	Drafts    draftStore
	Generator structureGenerator
	Search    sceneSearch
	Artifacts artifactStore
	Exporter  exporter
	Catalog   *catalog.Catalog
	Log       *logger.Logger
}

type Service struct {
	cfg       config.Config
	store     projectStore
	git       historyRepo
	drafts    draftStore
	generator structureGenerator
	search    sceneSearch
	artifacts artifactStore
	exporter  exporter
	catalog   *catalog.Catalog
	editor    *curriculum.Editor
	log       *logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	workspaces map[string]*workspace
}

// workspace is the loaded, possibly unsaved, state of one project. The tree
// lives in its own Store; the header fields are guarded by mu.
type workspace struct {
	tree *curriculum.Store

	mu        sync.Mutex
	record    store.Project
	dirty     bool
	draftedAt time.Time
}

func New(cfg config.Config, deps Deps) *Service {
	cat := deps.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	exp := deps.Exporter
	if exp == nil {
		exp = export.NewService(cat)
	}
	opts := cat.EditorOptions()
	opts.NewID = util.NewID
	return &Service{
		cfg:        cfg,
		store:      deps.Store,
		git:        deps.Git,
		drafts:     deps.Drafts,
		generator:  deps.Generator,
		search:     deps.Search,
		artifacts:  deps.Artifacts,
		exporter:   exp,
		catalog:    cat,
		editor:     curriculum.NewEditor(opts),
		log:        log,
		now:        time.Now,
		workspaces: make(map[string]*workspace),
	}
}

// ProjectView is the API shape of a loaded project.
type ProjectView struct {
	ID                string              `json:"id"`
	OrgID             string              `json:"orgId"`
	Title             string              `json:"title"`
	Version           int                 `json:"version"`
	Strategy          curriculum.Strategy `json:"strategy"`
	Structure         curriculum.Tree     `json:"structure"`
	SyllabusBlueprint json.RawMessage     `json:"syllabusBlueprint,omitempty"`
	Totals            curriculum.Totals   `json:"totals"`
	Dirty             bool                `json:"dirty"`
	DraftSavedAt      *time.Time          `json:"draftSavedAt,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type ProjectListItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Version        int       `json:"version"`
	SceneCount     int       `json:"sceneCount"`
	CompletionRate int       `json:"completionRate"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// DraftsPing reports the draft cache state; nil cache counts as healthy.
func (s *Service) DraftsPing(ctx context.Context) error {
	if s.drafts == nil {
		return nil
	}
	return s.drafts.Ping(ctx)
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput) (ProjectView, error) {
	if err := validate.Struct(input); err != nil {
		return ProjectView{}, err
	}
	record := store.Project{
		ID:                util.NewID("prj"),
		OrgID:             s.cfg.OrgID,
		Title:             strings.TrimSpace(input.Title),
		Strategy:          input.Strategy,
		Sessions:          curriculum.Tree{},
		SyllabusBlueprint: input.SyllabusBlueprint,
	}
	created, err := s.store.CreateProject(ctx, record)
	if err != nil {
		return ProjectView{}, fmt.Errorf("create project: %w", err)
	}
	if _, err := s.git.Commit(created.ID, snapshotOf(created), "", "Create project"); err != nil {
		s.log.Warn("initial history commit failed", "project_id", created.ID, "error", err)
	}
	ws := &workspace{tree: curriculum.NewStore(created.Sessions), record: created}
	s.mu.Lock()
	s.workspaces[created.ID] = ws
	s.mu.Unlock()
	s.log.Info("project created", "project_id", created.ID, "title", created.Title)
	return s.view(ws), nil
}

func (s *Service) ListProjects(ctx context.Context) ([]ProjectListItem, error) {
	rows, err := s.store.ListProjects(ctx, s.cfg.OrgID)
	if err != nil {
		return nil, err
	}
	items := make([]ProjectListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ProjectListItem{
			ID:             row.ID,
			Title:          row.Title,
			Version:        row.Version,
			SceneCount:     row.SceneCount,
			CompletionRate: row.CompletionRate,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	return items, nil
}

func (s *Service) GetProject(ctx context.Context, projectID string) (ProjectView, error) {
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return ProjectView{}, err
	}
	return s.view(ws), nil
}

// SaveProject persists the workspace as the next project version and records
// it in the project's history.
func (s *Service) SaveProject(ctx context.Context, projectID string, input SaveProjectInput) (ProjectView, error) {
	if err := validate.Struct(input); err != nil {
		return ProjectView{}, err
	}
	if input.Structure != nil {
		if err := curriculum.Validate(input.Structure); err != nil {
			return ProjectView{}, structureError(err)
		}
	}
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return ProjectView{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	// The workspace only changes once the store accepts the new version.
	next := ws.record
	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		next.Title = strings.TrimSpace(*input.Title)
	}
	if input.Strategy != nil {
		next.Strategy = *input.Strategy
	}
	if input.SyllabusBlueprint != nil {
		next.SyllabusBlueprint = input.SyllabusBlueprint
	}
	next.Sessions = ws.tree.Root()
	if input.Structure != nil {
		next.Sessions = curriculum.ReplaceAll(nil, input.Structure)
	}

	saved, err := s.store.SaveProject(ctx, next)
	if err != nil {
		return ProjectView{}, fmt.Errorf("save project: %w", err)
	}
	ws.tree.Replace(saved.Sessions)
	ws.record = saved
	ws.dirty = false
	ws.draftedAt = time.Time{}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = fmt.Sprintf("Save version %d", saved.Version)
	}
	if _, err := s.git.Commit(saved.ID, snapshotOf(saved), input.Author, message); err != nil {
		s.log.Warn("history commit failed", "project_id", saved.ID, "version", saved.Version, "error", err)
	}
	if s.drafts != nil {
		if err := s.drafts.Discard(ctx, saved.ID); err != nil {
			s.log.Warn("discard draft failed", "project_id", saved.ID, "error", err)
		}
	}
	if s.search != nil {
		s.search.IndexProject(saved.ID, saved.Sessions)
	}
	s.log.Info("project saved", "project_id", saved.ID, "version", saved.Version, "scenes", curriculum.ProjectTotals(saved.Sessions).TotalScenes)
	return s.viewLocked(ws), nil
}

// DiscardDraft drops unsaved edits and reloads the last saved version.
func (s *Service) DiscardDraft(ctx context.Context, projectID string) (ProjectView, error) {
	s.mu.Lock()
	delete(s.workspaces, projectID)
	s.mu.Unlock()
	if s.drafts != nil {
		if err := s.drafts.Discard(ctx, projectID); err != nil {
			return ProjectView{}, fmt.Errorf("discard draft: %w", err)
		}
	}
	return s.GetProject(ctx, projectID)
}

// workspace loads a project once and then serves it from memory. An autosave
// draft taken from the stored version replaces the stored tree.
func (s *Service) workspace(ctx context.Context, projectID string) (*workspace, error) {
	s.mu.Lock()
	ws, ok := s.workspaces[projectID]
	s.mu.Unlock()
	if ok {
		return ws, nil
	}

	record, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ws = &workspace{tree: curriculum.NewStore(record.Sessions), record: record}
	if s.drafts != nil {
		d, err := s.drafts.Load(ctx, projectID)
		switch {
		case err == nil && d.BaseVersion == record.Version:
			ws.tree.Replace(d.Sessions)
			ws.record.Strategy = d.Strategy
			ws.dirty = true
			ws.draftedAt = d.SavedAt
		case err == nil:
			s.log.Info("ignoring stale draft", "project_id", projectID, "draft_version", d.BaseVersion, "version", record.Version)
		case !errors.Is(err, draft.ErrNotFound):
			s.log.Warn("load draft failed", "project_id", projectID, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.workspaces[projectID]; ok {
		return existing, nil
	}
	s.workspaces[projectID] = ws
	return ws, nil
}

func (s *Service) view(ws *workspace) ProjectView {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return s.viewLocked(ws)
}

func (s *Service) viewLocked(ws *workspace) ProjectView {
	tree := ws.tree.Root()
	if tree == nil {
		tree = curriculum.Tree{}
	}
	v := ProjectView{
		ID:                ws.record.ID,
		OrgID:             ws.record.OrgID,
		Title:             ws.record.Title,
		Version:           ws.record.Version,
		Strategy:          ws.record.Strategy,
		Structure:         tree,
		SyllabusBlueprint: ws.record.SyllabusBlueprint,
		Totals:            curriculum.ProjectTotals(tree),
		Dirty:             ws.dirty,
		CreatedAt:         ws.record.CreatedAt,
		UpdatedAt:         ws.record.UpdatedAt,
	}
	if !ws.draftedAt.IsZero() {
		at := ws.draftedAt
		v.DraftSavedAt = &at
	}
	return v
}

func snapshotOf(p store.Project) gitrepo.Snapshot {
	return gitrepo.Snapshot{
		Title:             p.Title,
		Strategy:          p.Strategy,
		Sessions:          p.Sessions,
		SyllabusBlueprint: p.SyllabusBlueprint,
	}
}
