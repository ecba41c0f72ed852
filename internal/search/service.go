package search

import (
	"sync"

	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/logger"
)

// Service tries Meilisearch first and falls back to scanning the tree.
type Service struct {
	meili *Meili
	log   *logger.Logger

	mu      sync.Mutex
	indexed map[string]map[string]bool // project id -> record ids last pushed
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{meili: meili, log: log, indexed: make(map[string]map[string]bool)}
}

// Search answers q. tree is the project's current tree, used when the index
// is unavailable.
func (s *Service) Search(q Query, tree curriculum.Tree) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: results, Total: total, Query: q.Text, Source: "index"}
		}
		s.log.Warn("meilisearch error, falling back to tree scan", "error", err)
	}
	results, total := Scan(tree, q)
	return Response{Results: results, Total: total, Query: q.Text, Source: "scan"}
}

// IndexProject pushes tree's scenes and removes records for scenes that no
// longer exist (fire-and-forget).
func (s *Service) IndexProject(projectID string, tree curriculum.Tree) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	records := Records(projectID, tree)
	stale := s.swapIndexed(projectID, records)
	go func() {
		if err := s.meili.IndexScenes(records); err != nil {
			s.log.Error("index scenes", "project_id", projectID, "error", err)
		}
		for _, id := range stale {
			if err := s.meili.DeleteScene(id); err != nil {
				s.log.Error("delete scene record", "project_id", projectID, "record_id", id, "error", err)
			}
		}
	}()
}

func (s *Service) swapIndexed(projectID string, records []SceneRecord) []string {
	next := make(map[string]bool, len(records))
	for _, r := range records {
		next[r.ID] = true
	}
	s.mu.Lock()
	prev := s.indexed[projectID]
	s.indexed[projectID] = next
	s.mu.Unlock()

	stale := make([]string, 0)
	for id := range prev {
		if !next[id] {
			stale = append(stale, id)
		}
	}
	return stale
}
