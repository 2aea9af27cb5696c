package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalens/catalogd/internal/domain"
)

// assetRepository implements AssetRepository on Postgres.
type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, organization_id, name, asset_type, system, path, description, tags, properties, version, created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	propertiesJSON, err := asset.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to marshal properties: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO assets (id, organization_id, name, asset_type, system, path, description, tags, properties, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+assetColumns,
		asset.ID, asset.OrganizationID, asset.Name, asset.AssetType, asset.System, asset.Path,
		asset.Description, asset.Tags, propertiesJSON, asset.Version, asset.CreatedAt, asset.UpdatedAt,
	)

	created, err := scanAsset(row)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to create asset: %w", err)
	}
	return created, nil
}

func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)

	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, fmt.Errorf("asset %s: %w", id, ErrNotFound)
		}
		return domain.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

func (r *assetRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Asset, error) {
	if len(ids) == 0 {
		return []domain.Asset{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets by IDs: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func (r *assetRepository) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *domain.AssetFilter,
	limit int,
	offset int,
) ([]domain.Asset, int, error) {
	where, args := buildAssetFilter(organizationID, filter)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM assets
		WHERE %s
		ORDER BY path, name
		LIMIT $%d OFFSET $%d`,
		assetColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]domain.Asset, 0)
	totalCount := 0
	for rows.Next() {
		asset, total, err := scanAssetWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, asset)
		totalCount = total
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read asset rows: %w", err)
	}

	return assets, totalCount, nil
}

func (r *assetRepository) ListByType(ctx context.Context, organizationID uuid.UUID, assetType domain.AssetType) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE organization_id = $1 AND asset_type = $2
		ORDER BY path, name`,
		organizationID, assetType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets by type: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

func (r *assetRepository) Update(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	propertiesJSON, err := asset.GetPropertiesAsJSONB()
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to marshal properties: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE assets
		SET name = $2, asset_type = $3, system = $4, path = $5, description = $6,
		    tags = $7, properties = $8, version = version + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+assetColumns,
		asset.ID, asset.Name, asset.AssetType, asset.System, asset.Path,
		asset.Description, asset.Tags, propertiesJSON,
	)

	updated, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, fmt.Errorf("asset %s: %w", asset.ID, ErrNotFound)
		}
		return domain.Asset{}, fmt.Errorf("failed to update asset: %w", err)
	}
	return updated, nil
}

func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *assetRepository) Count(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assets WHERE organization_id = $1`, organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return count, nil
}

// buildAssetFilter renders the WHERE clause for List. Property filters AND
// together; text search matches name, description or any property value.
func buildAssetFilter(organizationID uuid.UUID, filter *domain.AssetFilter) (string, []any) {
	clauses := []string{"organization_id = $1"}
	args := []any{organizationID}

	if filter.Empty() {
		return clauses[0], args
	}

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssetType != "" {
		clauses = append(clauses, "asset_type = "+arg(filter.AssetType))
	}
	if filter.System != "" {
		clauses = append(clauses, "system = "+arg(filter.System))
	}
	for _, pf := range filter.PropertyFilters {
		if pf.Key == "" {
			continue
		}
		if pf.Exists != nil {
			if *pf.Exists {
				clauses = append(clauses, "jsonb_exists(properties, "+arg(pf.Key)+")")
			} else {
				clauses = append(clauses, "NOT jsonb_exists(properties, "+arg(pf.Key)+")")
			}
			continue
		}
		clauses = append(clauses, "properties->>"+arg(pf.Key)+" = "+arg(pf.Value))
	}
	if search := strings.TrimSpace(filter.TextSearch); search != "" {
		pattern := arg("%" + search + "%")
		clauses = append(clauses, fmt.Sprintf(
			"(name ILIKE %s OR description ILIKE %s OR properties::text ILIKE %s)",
			pattern, pattern, pattern,
		))
	}

	return strings.Join(clauses, " AND "), args
}

func collectAssets(rows pgx.Rows) ([]domain.Asset, error) {
	assets := make([]domain.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read asset rows: %w", err)
	}
	return assets, nil
}

func scanAsset(row pgx.Row) (domain.Asset, error) {
	var (
		asset          domain.Asset
		propertiesJSON json.RawMessage
	)
	err := row.Scan(
		&asset.ID, &asset.OrganizationID, &asset.Name, &asset.AssetType, &asset.System,
		&asset.Path, &asset.Description, &asset.Tags, &propertiesJSON, &asset.Version,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return domain.Asset{}, err
	}
	return finishAsset(asset, propertiesJSON)
}

func scanAssetWithTotal(rows pgx.Rows) (domain.Asset, int, error) {
	var (
		asset          domain.Asset
		propertiesJSON json.RawMessage
		totalCount     int
	)
	err := rows.Scan(
		&asset.ID, &asset.OrganizationID, &asset.Name, &asset.AssetType, &asset.System,
		&asset.Path, &asset.Description, &asset.Tags, &propertiesJSON, &asset.Version,
		&asset.CreatedAt, &asset.UpdatedAt, &totalCount,
	)
	if err != nil {
		return domain.Asset{}, 0, fmt.Errorf("failed to scan asset row: %w", err)
	}
	finished, err := finishAsset(asset, propertiesJSON)
	if err != nil {
		return domain.Asset{}, 0, err
	}
	return finished, totalCount, nil
}

func finishAsset(asset domain.Asset, propertiesJSON json.RawMessage) (domain.Asset, error) {
	properties, err := domain.FromJSONBProperties(propertiesJSON)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to decode properties for asset %s: %w", asset.ID, err)
	}
	asset.Properties = properties
	return asset, nil
}
