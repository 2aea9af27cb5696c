package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalens/catalogd/internal/domain"
)

// assetSchemaRepository implements AssetSchemaRepository on Postgres.
type assetSchemaRepository struct {
	pool *pgxpool.Pool
}

// NewAssetSchemaRepository creates a new asset schema repository.
func NewAssetSchemaRepository(pool *pgxpool.Pool) AssetSchemaRepository {
	return &assetSchemaRepository{pool: pool}
}

const schemaColumns = `id, organization_id, asset_type, fields, created_at, updated_at`

func (r *assetSchemaRepository) Create(ctx context.Context, schema domain.AssetSchema) (domain.AssetSchema, error) {
	if err := domain.ValidateFields(schema.Fields); err != nil {
		return domain.AssetSchema{}, fmt.Errorf("invalid schema fields: %w", err)
	}

	fieldsJSON, err := schema.GetFieldsAsJSONB()
	if err != nil {
		return domain.AssetSchema{}, fmt.Errorf("failed to marshal fields: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO asset_schemas (id, organization_id, asset_type, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+schemaColumns,
		schema.ID, schema.OrganizationID, schema.AssetType, fieldsJSON, schema.CreatedAt, schema.UpdatedAt,
	)

	created, err := scanSchema(row)
	if err != nil {
		return domain.AssetSchema{}, fmt.Errorf("failed to create asset schema: %w", err)
	}
	return created, nil
}

func (r *assetSchemaRepository) GetByAssetType(ctx context.Context, organizationID uuid.UUID, assetType domain.AssetType) (domain.AssetSchema, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+schemaColumns+`
		FROM asset_schemas
		WHERE organization_id = $1 AND asset_type = $2`,
		organizationID, assetType,
	)

	schema, err := scanSchema(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AssetSchema{}, fmt.Errorf("schema for asset type %s: %w", assetType, ErrNotFound)
		}
		return domain.AssetSchema{}, fmt.Errorf("failed to get asset schema: %w", err)
	}
	return schema, nil
}

func (r *assetSchemaRepository) List(ctx context.Context, organizationID uuid.UUID) ([]domain.AssetSchema, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+schemaColumns+`
		FROM asset_schemas
		WHERE organization_id = $1
		ORDER BY asset_type`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset schemas: %w", err)
	}
	defer rows.Close()

	schemas := make([]domain.AssetSchema, 0)
	for rows.Next() {
		schema, err := scanSchema(rows)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schema rows: %w", err)
	}
	return schemas, nil
}

func (r *assetSchemaRepository) Update(ctx context.Context, schema domain.AssetSchema) (domain.AssetSchema, error) {
	if err := domain.ValidateFields(schema.Fields); err != nil {
		return domain.AssetSchema{}, fmt.Errorf("invalid schema fields: %w", err)
	}

	fieldsJSON, err := schema.GetFieldsAsJSONB()
	if err != nil {
		return domain.AssetSchema{}, fmt.Errorf("failed to marshal fields: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE asset_schemas
		SET fields = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+schemaColumns,
		schema.ID, fieldsJSON,
	)

	updated, err := scanSchema(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AssetSchema{}, fmt.Errorf("schema %s: %w", schema.ID, ErrNotFound)
		}
		return domain.AssetSchema{}, fmt.Errorf("failed to update asset schema: %w", err)
	}
	return updated, nil
}

func scanSchema(row pgx.Row) (domain.AssetSchema, error) {
	var (
		schema     domain.AssetSchema
		fieldsJSON json.RawMessage
	)
	err := row.Scan(&schema.ID, &schema.OrganizationID, &schema.AssetType, &fieldsJSON, &schema.CreatedAt, &schema.UpdatedAt)
	if err != nil {
		return domain.AssetSchema{}, err
	}

	fields, err := domain.FromJSONBFields(fieldsJSON)
	if err != nil {
		return domain.AssetSchema{}, fmt.Errorf("failed to decode fields for schema %s: %w", schema.ID, err)
	}
	schema.Fields = fields
	return schema, nil
}
