package app

import (
	"context"
	"fmt"
	"strings"

	"curriculum/api/internal/artifacts"
	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/export"
	"curriculum/api/internal/gitrepo"
	"curriculum/api/internal/metrics"
	"curriculum/api/internal/search"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type ExportOutput struct {
	Result   *export.Result
	Artifact *artifacts.Artifact
}

// Export renders the working tree, unsaved edits included. With upload set
// the bytes are also stored as an artifact with a presigned link.
func (s *Service) Export(ctx context.Context, projectID string, format export.Format, upload bool) (ExportOutput, error) {
	if upload && s.artifacts == nil {
		return ExportOutput{}, artifacts.ErrDisabled
	}
	ws, err := s.workspace(ctx, projectID)
	if err != nil {
		return ExportOutput{}, err
	}
	ws.mu.Lock()
	project := export.Project{
		ID:                ws.record.ID,
		OrgID:             ws.record.OrgID,
		Title:             ws.record.Title,
		Strategy:          ws.record.Strategy,
		Sessions:          ws.tree.Root(),
		SyllabusBlueprint: ws.record.SyllabusBlueprint,
	}
	ws.mu.Unlock()

	result, err := s.exporter.Export(ctx, export.Request{Project: project, Format: format, ExportedAt: s.now()})
	metrics.Exports.WithLabelValues(string(format), metrics.Result(err)).Inc()
	if err != nil {
		s.log.Warn("export failed", "project_id", projectID, "format", format, "error", err)
		return ExportOutput{}, err
	}
	out := ExportOutput{Result: result}
	if upload {
		artifact, err := s.artifacts.Upload(ctx, projectID, result.Filename, result.MimeType, result.Data)
		if err != nil {
			return ExportOutput{}, fmt.Errorf("upload export: %w", err)
		}
		out.Artifact = &artifact
		s.log.Info("export uploaded", "project_id", projectID, "format", format, "key", artifact.Key)
	}
	return out, nil
}

// Search finds Scenes of the project by text. The working tree backs the
// fallback scan, so unsaved scenes are found even when the index lags.
func (s *Service) Search(ctx context.Context, projectID, text string, method curriculum.ABCMethod, limit, offset int) (search.Response, error) {
	tree, err := s.tree(ctx, projectID)
	if err != nil {
		return search.Response{}, err
	}
	q := search.Query{
		ProjectID: projectID,
		Text:      strings.TrimSpace(text),
		ABCMethod: method,
		Limit:     limit,
		Offset:    offset,
	}
	if s.search == nil {
		results, total := search.Scan(tree, q)
		return search.Response{Results: results, Total: total, Query: q.Text, Source: "scan"}, nil
	}
	return s.search.Search(q, tree), nil
}

type HistoryView struct {
	ProjectID string               `json:"projectId"`
	Commits   []gitrepo.CommitInfo `json:"commits"`
}

// History lists the project's saves, newest first. It is read-only.
func (s *Service) History(ctx context.Context, projectID string, limit int) (HistoryView, error) {
	if _, err := s.workspace(ctx, projectID); err != nil {
		return HistoryView{}, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	commits, err := s.git.History(projectID, limit)
	if err != nil {
		return HistoryView{}, err
	}
	if commits == nil {
		commits = []gitrepo.CommitInfo{}
	}
	return HistoryView{ProjectID: projectID, Commits: commits}, nil
}

type CompareView struct {
	From    string                `json:"from"`
	To      string                `json:"to"`
	Changes []gitrepo.FieldChange `json:"changes"`
}

// Compare summarizes what changed between two saves.
func (s *Service) Compare(ctx context.Context, projectID, fromHash, toHash string) (CompareView, error) {
	if _, err := s.workspace(ctx, projectID); err != nil {
		return CompareView{}, err
	}
	from, err := s.git.At(projectID, fromHash)
	if err != nil {
		return CompareView{}, err
	}
	to, err := s.git.At(projectID, toHash)
	if err != nil {
		return CompareView{}, err
	}
	changes := gitrepo.DiffSnapshots(from, to)
	if changes == nil {
		changes = []gitrepo.FieldChange{}
	}
	return CompareView{From: fromHash, To: toHash, Changes: changes}, nil
}
