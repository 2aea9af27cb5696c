package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalens/catalogd/internal/domain"
)

// favoriteRepository implements FavoriteRepository on Postgres.
type favoriteRepository struct {
	pool *pgxpool.Pool
}

// NewFavoriteRepository creates a new favorite repository.
func NewFavoriteRepository(pool *pgxpool.Pool) FavoriteRepository {
	return &favoriteRepository{pool: pool}
}

func (r *favoriteRepository) Put(ctx context.Context, favorite domain.Favorite) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (subject_key, asset_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject_key, asset_id) DO NOTHING`,
		favorite.SubjectKey, favorite.AssetID, favorite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put favorite: %w", err)
	}
	return nil
}

func (r *favoriteRepository) Delete(ctx context.Context, subjectKey string, assetID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM favorites WHERE subject_key = $1 AND asset_id = $2`,
		subjectKey, assetID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("favorite %s/%s: %w", subjectKey, assetID, ErrNotFound)
	}
	return nil
}

func (r *favoriteRepository) List(ctx context.Context, subjectKey string) ([]domain.Favorite, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT subject_key, asset_id, created_at
		FROM favorites
		WHERE subject_key = $1
		ORDER BY created_at DESC`,
		subjectKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]domain.Favorite, 0)
	for rows.Next() {
		var favorite domain.Favorite
		if err := rows.Scan(&favorite.SubjectKey, &favorite.AssetID, &favorite.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		favorites = append(favorites, favorite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read favorite rows: %w", err)
	}
	return favorites, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, subjectKey string, assetID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE subject_key = $1 AND asset_id = $2)`,
		subjectKey, assetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}
