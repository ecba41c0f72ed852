package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"curriculum/api/internal/curriculum"
)

var (
	ErrProjectExists   = errors.New("project already exists")
	ErrVersionConflict = errors.New("project was saved by someone else")
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateProject(ctx context.Context, p Project) (Project, error) {
	strategy, structure, err := encodeProject(p)
	if err != nil {
		return Project{}, err
	}
	totals := curriculum.ProjectTotals(p.Sessions)
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, org_id, title, version, strategy, structure, syllabus_blueprint, scene_count, completion_rate)
		VALUES ($1, $2, $3, 1, $4, $5, $6, $7, $8)
		RETURNING version, created_at, updated_at
	`, p.ID, p.OrgID, p.Title, strategy, structure, nullableJSON(p.SyllabusBlueprint), totals.TotalScenes, totals.CompletionRate).
		Scan(&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Project{}, ErrProjectExists
		}
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// GetProject returns sql.ErrNoRows when the project does not exist.
func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	var (
		p         Project
		strategy  []byte
		structure []byte
		blueprint []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, title, version, strategy, structure, syllabus_blueprint, created_at, updated_at
		FROM projects
		WHERE id=$1
	`, projectID).Scan(&p.ID, &p.OrgID, &p.Title, &p.Version, &strategy, &structure, &blueprint, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	if err := json.Unmarshal(strategy, &p.Strategy); err != nil {
		return Project{}, fmt.Errorf("decode strategy: %w", err)
	}
	if err := json.Unmarshal(structure, &p.Sessions); err != nil {
		return Project{}, fmt.Errorf("decode structure: %w", err)
	}
	// Rows written before structure validation may hold null nodes.
	p.Sessions = curriculum.Compact(p.Sessions)
	if len(blueprint) > 0 {
		p.SyllabusBlueprint = json.RawMessage(blueprint)
	}
	return p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, orgID string) ([]ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, version, scene_count, completion_rate, updated_at
		FROM projects
		WHERE org_id=$1
		ORDER BY updated_at DESC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]ProjectSummary, 0)
	for rows.Next() {
		var item ProjectSummary
		if err := rows.Scan(&item.ID, &item.Title, &item.Version, &item.SceneCount, &item.CompletionRate, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

// SaveProject overwrites the project when its stored version still equals
// p.Version, and bumps the version. A stale version yields
// ErrVersionConflict; a missing project yields sql.ErrNoRows.
func (s *PostgresStore) SaveProject(ctx context.Context, p Project) (Project, error) {
	strategy, structure, err := encodeProject(p)
	if err != nil {
		return Project{}, err
	}
	totals := curriculum.ProjectTotals(p.Sessions)
	err = s.db.QueryRowContext(ctx, `
		UPDATE projects
		SET title=$3, strategy=$4, structure=$5, syllabus_blueprint=$6,
			scene_count=$7, completion_rate=$8, version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$2
		RETURNING version, created_at, updated_at
	`, p.ID, p.Version, p.Title, strategy, structure, nullableJSON(p.SyllabusBlueprint), totals.TotalScenes, totals.CompletionRate).
		Scan(&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if checkErr := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id=$1)`, p.ID).Scan(&exists); checkErr != nil {
			return Project{}, fmt.Errorf("check project: %w", checkErr)
		}
		if exists {
			return Project{}, ErrVersionConflict
		}
		return Project{}, sql.ErrNoRows
	}
	if err != nil {
		return Project{}, fmt.Errorf("save project: %w", err)
	}
	return p, nil
}

func encodeProject(p Project) ([]byte, []byte, error) {
	strategy, err := json.Marshal(p.Strategy)
	if err != nil {
		return nil, nil, fmt.Errorf("encode strategy: %w", err)
	}
	sessions := p.Sessions
	if sessions == nil {
		sessions = curriculum.Tree{}
	}
	structure, err := json.Marshal(sessions)
	if err != nil {
		return nil, nil, fmt.Errorf("encode structure: %w", err)
	}
	return strategy, structure, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
