package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalens/catalogd/internal/domain"
)

// maxLineageDepth bounds recursive traversals; interactive lineage panels
// never need more.
const maxLineageDepth = 10

// lineageRepository implements LineageRepository on Postgres with recursive
// CTE traversals over the edge table.
type lineageRepository struct {
	pool *pgxpool.Pool
}

// NewLineageRepository creates a new lineage repository.
func NewLineageRepository(pool *pgxpool.Pool) LineageRepository {
	return &lineageRepository{pool: pool}
}

func (r *lineageRepository) AddEdge(ctx context.Context, edge domain.LineageEdge) (domain.LineageEdge, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lineage_edges (id, source_id, target_id, edge_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id, target_id, edge_type) DO UPDATE SET edge_type = EXCLUDED.edge_type
		RETURNING id, source_id, target_id, edge_type, created_at`,
		edge.ID, edge.SourceID, edge.TargetID, edge.EdgeType, edge.CreatedAt,
	)

	created, err := scanEdge(row)
	if err != nil {
		return domain.LineageEdge{}, fmt.Errorf("failed to add lineage edge: %w", err)
	}
	return created, nil
}

func (r *lineageRepository) RemoveEdge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lineage_edges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove lineage edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lineage edge %s: %w", id, ErrNotFound)
	}
	return nil
}

// Upstream walks source-ward from the asset: edges whose data flows into it,
// transitively, up to depth levels.
func (r *lineageRepository) Upstream(ctx context.Context, assetID uuid.UUID, depth int) ([]domain.LineageEdge, error) {
	return r.traverse(ctx, assetID, depth, `
		WITH RECURSIVE walk AS (
			SELECT e.id, e.source_id, e.target_id, e.edge_type, e.created_at, 1 AS level
			FROM lineage_edges e
			WHERE e.target_id = $1
			UNION
			SELECT e.id, e.source_id, e.target_id, e.edge_type, e.created_at, w.level + 1
			FROM lineage_edges e
			JOIN walk w ON e.target_id = w.source_id
			WHERE w.level < $2
		)
		SELECT id, source_id, target_id, edge_type, created_at FROM walk`)
}

// Downstream walks target-ward: everything derived from the asset.
func (r *lineageRepository) Downstream(ctx context.Context, assetID uuid.UUID, depth int) ([]domain.LineageEdge, error) {
	return r.traverse(ctx, assetID, depth, `
		WITH RECURSIVE walk AS (
			SELECT e.id, e.source_id, e.target_id, e.edge_type, e.created_at, 1 AS level
			FROM lineage_edges e
			WHERE e.source_id = $1
			UNION
			SELECT e.id, e.source_id, e.target_id, e.edge_type, e.created_at, w.level + 1
			FROM lineage_edges e
			JOIN walk w ON e.source_id = w.target_id
			WHERE w.level < $2
		)
		SELECT id, source_id, target_id, edge_type, created_at FROM walk`)
}

func (r *lineageRepository) traverse(ctx context.Context, assetID uuid.UUID, depth int, query string) ([]domain.LineageEdge, error) {
	if depth <= 0 || depth > maxLineageDepth {
		depth = maxLineageDepth
	}

	rows, err := r.pool.Query(ctx, query, assetID, depth)
	if err != nil {
		return nil, fmt.Errorf("failed to traverse lineage: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.LineageEdge, 0)
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lineage rows: %w", err)
	}
	return edges, nil
}

func scanEdge(row pgx.Row) (domain.LineageEdge, error) {
	var edge domain.LineageEdge
	err := row.Scan(&edge.ID, &edge.SourceID, &edge.TargetID, &edge.EdgeType, &edge.CreatedAt)
	if err != nil {
		return domain.LineageEdge{}, err
	}
	return edge, nil
}
