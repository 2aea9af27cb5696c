package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// AssetRepository defines the interface for catalog asset operations.
type AssetRepository interface {
	Create(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Asset, error)
	List(ctx context.Context, organizationID uuid.UUID, filter *domain.AssetFilter, limit, offset int) ([]domain.Asset, int, error)
	ListByType(ctx context.Context, organizationID uuid.UUID, assetType domain.AssetType) ([]domain.Asset, error)
	Update(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

// AssetSchemaRepository defines the interface for asset schema operations.
type AssetSchemaRepository interface {
	Create(ctx context.Context, schema domain.AssetSchema) (domain.AssetSchema, error)
	GetByAssetType(ctx context.Context, organizationID uuid.UUID, assetType domain.AssetType) (domain.AssetSchema, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]domain.AssetSchema, error)
	Update(ctx context.Context, schema domain.AssetSchema) (domain.AssetSchema, error)
}

// AnnotationRepository defines the interface for asset annotations.
type AnnotationRepository interface {
	Create(ctx context.Context, annotation domain.Annotation) (domain.Annotation, error)
	ListByAsset(ctx context.Context, assetID uuid.UUID) ([]domain.Annotation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ScanRepository defines the interface for data-quality and data-profile
// scan results.
type ScanRepository interface {
	Create(ctx context.Context, scan domain.ScanResult) (domain.ScanResult, error)
	ListByAsset(ctx context.Context, assetID uuid.UUID, limit int) ([]domain.ScanResult, error)
	LatestByAsset(ctx context.Context, assetID uuid.UUID, scanType domain.ScanType) (domain.ScanResult, error)
}

// LineageRepository defines the interface for the lineage edge store.
type LineageRepository interface {
	AddEdge(ctx context.Context, edge domain.LineageEdge) (domain.LineageEdge, error)
	RemoveEdge(ctx context.Context, id uuid.UUID) error
	Upstream(ctx context.Context, assetID uuid.UUID, depth int) ([]domain.LineageEdge, error)
	Downstream(ctx context.Context, assetID uuid.UUID, depth int) ([]domain.LineageEdge, error)
}

// FavoriteRepository defines the interface for per-subject favorite marks.
type FavoriteRepository interface {
	Put(ctx context.Context, favorite domain.Favorite) error
	Delete(ctx context.Context, subjectKey string, assetID uuid.UUID) error
	List(ctx context.Context, subjectKey string) ([]domain.Favorite, error)
	Exists(ctx context.Context, subjectKey string, assetID uuid.UUID) (bool, error)
}
