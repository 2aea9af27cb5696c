package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalens/catalogd/internal/domain"
)

// annotationRepository implements AnnotationRepository on Postgres.
type annotationRepository struct {
	pool *pgxpool.Pool
}

// NewAnnotationRepository creates a new annotation repository.
func NewAnnotationRepository(pool *pgxpool.Pool) AnnotationRepository {
	return &annotationRepository{pool: pool}
}

func (r *annotationRepository) Create(ctx context.Context, annotation domain.Annotation) (domain.Annotation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO annotations (id, asset_id, author, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, asset_id, author, body, created_at, updated_at`,
		annotation.ID, annotation.AssetID, annotation.Author, annotation.Body,
		annotation.CreatedAt, annotation.UpdatedAt,
	)

	created, err := scanAnnotation(row)
	if err != nil {
		return domain.Annotation{}, fmt.Errorf("failed to create annotation: %w", err)
	}
	return created, nil
}

func (r *annotationRepository) ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Annotation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, asset_id, author, body, created_at, updated_at
		FROM annotations
		WHERE asset_id = $1
		ORDER BY created_at DESC`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	defer rows.Close()

	annotations := make([]domain.Annotation, 0)
	for rows.Next() {
		annotation, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, annotation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read annotation rows: %w", err)
	}
	return annotations, nil
}

func (r *annotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM annotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("annotation %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanAnnotation(row pgx.Row) (domain.Annotation, error) {
	var annotation domain.Annotation
	err := row.Scan(
		&annotation.ID, &annotation.AssetID, &annotation.Author, &annotation.Body,
		&annotation.CreatedAt, &annotation.UpdatedAt,
	)
	if err != nil {
		return domain.Annotation{}, err
	}
	return annotation, nil
}
