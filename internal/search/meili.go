package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"curriculum/api/internal/logger"
)

const idxScenes = "curriculum_scenes"

// Meili indexes and queries SceneRecords in Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	log     *logger.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a client and configures the scene index. An unreachable
// server is tolerated; the health loop picks it up when it comes back.
func NewMeili(url, apiKey string, log *logger.Logger) *Meili {
	if log == nil {
		log = logger.Nop()
	}
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		log:    log,
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		m.log.Warn("meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxScenes,
		PrimaryKey: "id",
	}); err != nil {
		m.log.Debug("create index (may already exist)", "index", idxScenes, "error", err)
	}

	index := m.client.Index(idxScenes)
	filterable := []interface{}{"projectId", "abcMethod"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.log.Warn("update filterable attributes", "index", idxScenes, "error", err)
	}
	searchable := []string{"title", "learningObjective", "topic", "unit", "module", "session", "mediaFormat"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.log.Warn("update searchable attributes", "index", idxScenes, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.log.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, errors.New("meilisearch unhealthy")
	}

	sr := &meili.SearchRequest{
		IndexUID:              idxScenes,
		Query:                 q.Text,
		Limit:                 int64(pageLimit(q.Limit)),
		Offset:                int64(max(q.Offset, 0)),
		AttributesToHighlight: []string{"title", "learningObjective"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	}
	filters := []string{fmt.Sprintf("projectId = %q", q.ProjectID)}
	if q.ABCMethod != "" {
		filters = append(filters, fmt.Sprintf("abcMethod = %q", string(q.ABCMethod)))
	}
	sr.Filter = filters

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{sr},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0)
	total := 0
	for _, res := range resp.Results {
		total += int(res.EstimatedTotalHits)
		for _, hit := range res.Hits {
			results = append(results, hitToResult(hit))
		}
	}
	return results, total, nil
}

func hitToResult(hit meili.Hit) Result {
	record := SceneRecord{
		SceneID:           decodeString(hit, "sceneId"),
		Title:             decodeString(hit, "title"),
		LearningObjective: decodeString(hit, "learningObjective"),
		Session:           decodeString(hit, "session"),
		Module:            decodeString(hit, "module"),
		Unit:              decodeString(hit, "unit"),
		Topic:             decodeString(hit, "topic"),
	}
	if raw, ok := hit["path"]; ok {
		_ = json.Unmarshal(raw, &record.Path)
	}
	return Result{
		SceneID:    record.SceneID,
		Path:       record.Path,
		Title:      firstNonBlank(decodeFormattedString(hit, "title"), record.Title),
		Snippet:    firstNonBlank(decodeFormattedString(hit, "learningObjective"), record.LearningObjective),
		Breadcrumb: breadcrumb(record),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]any
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	s, _ := formatted[key].(string)
	return strings.TrimSpace(s)
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexScenes adds or replaces records.
func (m *Meili) IndexScenes(records []SceneRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxScenes).AddDocuments(records, nil)
	return err
}

// DeleteScene removes one record by its index id.
func (m *Meili) DeleteScene(id string) error {
	_, err := m.client.Index(idxScenes).DeleteDocument(id, nil)
	return err
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return min(limit, 100)
}
