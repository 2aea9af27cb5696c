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

// scanRepository implements ScanRepository on Postgres. The detail payload
// (rule results or column profiles, depending on scan type) lives in one
// JSONB column.
type scanRepository struct {
	pool *pgxpool.Pool
}

// NewScanRepository creates a new scan repository.
func NewScanRepository(pool *pgxpool.Pool) ScanRepository {
	return &scanRepository{pool: pool}
}

func (r *scanRepository) Create(ctx context.Context, scan domain.ScanResult) (domain.ScanResult, error) {
	payload, err := scan.PayloadToJSONB()
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("failed to marshal scan payload: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO scans (id, asset_id, scan_type, payload, row_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, asset_id, scan_type, payload, row_count, created_at`,
		scan.ID, scan.AssetID, scan.ScanType, payload, scan.RowCount, scan.CreatedAt,
	)

	created, err := scanScanResult(row)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("failed to create scan result: %w", err)
	}
	return created, nil
}

func (r *scanRepository) ListByAsset(ctx context.Context, assetID uuid.UUID, limit int) ([]domain.ScanResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, asset_id, scan_type, payload, row_count, created_at
		FROM scans
		WHERE asset_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		assetID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := make([]domain.ScanResult, 0)
	for rows.Next() {
		scan, err := scanScanResult(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scan rows: %w", err)
	}
	return scans, nil
}

func (r *scanRepository) LatestByAsset(ctx context.Context, assetID uuid.UUID, scanType domain.ScanType) (domain.ScanResult, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, asset_id, scan_type, payload, row_count, created_at
		FROM scans
		WHERE asset_id = $1 AND scan_type = $2
		ORDER BY created_at DESC
		LIMIT 1`,
		assetID, scanType,
	)

	scan, err := scanScanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScanResult{}, fmt.Errorf("no %s scan for asset %s: %w", scanType, assetID, ErrNotFound)
		}
		return domain.ScanResult{}, fmt.Errorf("failed to get latest scan: %w", err)
	}
	return scan, nil
}

func scanScanResult(row pgx.Row) (domain.ScanResult, error) {
	var (
		scan    domain.ScanResult
		payload json.RawMessage
	)
	err := row.Scan(&scan.ID, &scan.AssetID, &scan.ScanType, &payload, &scan.RowCount, &scan.CreatedAt)
	if err != nil {
		return domain.ScanResult{}, err
	}
	if err := scan.PayloadFromJSONB(payload); err != nil {
		return domain.ScanResult{}, fmt.Errorf("failed to decode payload for scan %s: %w", scan.ID, err)
	}
	return scan, nil
}
