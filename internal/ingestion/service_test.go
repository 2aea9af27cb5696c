package ingestion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/internal/repository"
)

type memorySchemaRepo struct {
	mu      sync.Mutex
	schemas map[string]domain.AssetSchema
}

func newMemorySchemaRepo() *memorySchemaRepo {
	return &memorySchemaRepo{schemas: make(map[string]domain.AssetSchema)}
}

func schemaKey(orgID uuid.UUID, assetType domain.AssetType) string {
	return orgID.String() + "/" + string(assetType)
}

func (m *memorySchemaRepo) Create(_ context.Context, schema domain.AssetSchema) (domain.AssetSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas[schemaKey(schema.OrganizationID, schema.AssetType)] = schema
	return schema, nil
}

func (m *memorySchemaRepo) GetByAssetType(_ context.Context, orgID uuid.UUID, assetType domain.AssetType) (domain.AssetSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	schema, ok := m.schemas[schemaKey(orgID, assetType)]
	if !ok {
		return domain.AssetSchema{}, fmt.Errorf("schema for %s: %w", assetType, repository.ErrNotFound)
	}
	return schema, nil
}

func (m *memorySchemaRepo) List(_ context.Context, orgID uuid.UUID) ([]domain.AssetSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AssetSchema
	for _, schema := range m.schemas {
		if schema.OrganizationID == orgID {
			out = append(out, schema)
		}
	}
	return out, nil
}

func (m *memorySchemaRepo) Update(_ context.Context, schema domain.AssetSchema) (domain.AssetSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas[schemaKey(schema.OrganizationID, schema.AssetType)] = schema
	return schema, nil
}

type memoryAssetRepo struct {
	mu     sync.Mutex
	assets []domain.Asset
}

func (m *memoryAssetRepo) Create(_ context.Context, asset domain.Asset) (domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, asset)
	return asset, nil
}

func (m *memoryAssetRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, asset := range m.assets {
		if asset.ID == id {
			return asset, nil
		}
	}
	return domain.Asset{}, repository.ErrNotFound
}

func (m *memoryAssetRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []domain.Asset
	for _, asset := range m.assets {
		if _, ok := wanted[asset.ID]; ok {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (m *memoryAssetRepo) List(_ context.Context, _ uuid.UUID, _ *domain.AssetFilter, _, _ int) ([]domain.Asset, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Asset(nil), m.assets...), len(m.assets), nil
}

func (m *memoryAssetRepo) ListByType(_ context.Context, _ uuid.UUID, assetType domain.AssetType) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Asset
	for _, asset := range m.assets {
		if asset.AssetType == assetType {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (m *memoryAssetRepo) Update(_ context.Context, asset domain.Asset) (domain.Asset, error) {
	return asset, nil
}

func (m *memoryAssetRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (m *memoryAssetRepo) Count(_ context.Context, _ uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.assets)), nil
}

func TestIngestCSVCreatesSchemaAndAssets(t *testing.T) {
	schemaRepo := newMemorySchemaRepo()
	assetRepo := &memoryAssetRepo{}
	service := NewService(schemaRepo, assetRepo)

	csvData := strings.Join([]string{
		"name,row_count,partitioned",
		"orders,1200,true",
		"users,85,false",
	}, "\n")

	orgID := uuid.New()
	summary, err := service.Ingest(context.Background(), Request{
		OrganizationID: orgID,
		AssetType:      domain.AssetTypeTable,
		System:         "BigQuery",
		FileName:       "tables.csv",
		Data:           strings.NewReader(csvData),
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if !summary.SchemaCreated {
		t.Fatalf("expected schema to be created")
	}
	if summary.TotalRows != 2 || summary.ValidRows != 2 || summary.InvalidRows != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	schema, err := schemaRepo.GetByAssetType(context.Background(), orgID, domain.AssetTypeTable)
	if err != nil {
		t.Fatalf("schema lookup failed: %v", err)
	}
	if _, ok := schema.Field("row_count"); !ok {
		t.Fatalf("expected row_count field in inferred schema: %+v", schema.Fields)
	}

	if len(assetRepo.assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assetRepo.assets))
	}
	first := assetRepo.assets[0]
	if first.Name != "orders" || first.System != "BigQuery" {
		t.Fatalf("unexpected asset: %+v", first)
	}
	if first.Path != "bigquery.orders" {
		t.Fatalf("unexpected path: %s", first.Path)
	}
	if rc, ok := first.Properties["row_count"].(int64); !ok || rc != 1200 {
		t.Fatalf("expected coerced integer row_count, got %v", first.Properties["row_count"])
	}
}

func TestIngestSkipsBadRowsAndContinues(t *testing.T) {
	schemaRepo := newMemorySchemaRepo()
	assetRepo := &memoryAssetRepo{}
	service := NewService(schemaRepo, assetRepo)

	orgID := uuid.New()
	schema := domain.NewAssetSchema(orgID, domain.AssetTypeTable, []domain.FieldDefinition{
		{Name: "name", Type: domain.FieldTypeString},
		{Name: "row_count", Type: domain.FieldTypeInteger},
	})
	if _, err := schemaRepo.Create(context.Background(), schema); err != nil {
		t.Fatalf("seed schema: %v", err)
	}

	csvData := strings.Join([]string{
		"name,row_count",
		"orders,1200",
		"broken,not-a-number",
		"users,85",
	}, "\n")

	summary, err := service.Ingest(context.Background(), Request{
		OrganizationID: orgID,
		AssetType:      domain.AssetTypeTable,
		System:         "postgres",
		FileName:       "tables.csv",
		Data:           strings.NewReader(csvData),
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if summary.ValidRows != 2 || summary.InvalidRows != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.RowErrors) != 1 || summary.RowErrors[0].RowNumber != 3 {
		t.Fatalf("unexpected row errors: %+v", summary.RowErrors)
	}
	if len(assetRepo.assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assetRepo.assets))
	}
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	service := NewService(newMemorySchemaRepo(), &memoryAssetRepo{})

	_, err := service.Ingest(context.Background(), Request{
		OrganizationID: uuid.New(),
		AssetType:      domain.AssetTypeTable,
		FileName:       "tables.parquet",
		Data:           strings.NewReader("ignored"),
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestIngestAddsNewFieldsToExistingSchema(t *testing.T) {
	schemaRepo := newMemorySchemaRepo()
	assetRepo := &memoryAssetRepo{}
	service := NewService(schemaRepo, assetRepo)

	orgID := uuid.New()
	schema := domain.NewAssetSchema(orgID, domain.AssetTypeTable, []domain.FieldDefinition{
		{Name: "name", Type: domain.FieldTypeString},
	})
	if _, err := schemaRepo.Create(context.Background(), schema); err != nil {
		t.Fatalf("seed schema: %v", err)
	}

	csvData := "name,owner\norders,data-team\n"
	summary, err := service.Ingest(context.Background(), Request{
		OrganizationID: orgID,
		AssetType:      domain.AssetTypeTable,
		System:         "postgres",
		FileName:       "tables.csv",
		Data:           strings.NewReader(csvData),
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(summary.NewFieldsDetected) != 1 || summary.NewFieldsDetected[0] != "owner" {
		t.Fatalf("unexpected new fields: %+v", summary.NewFieldsDetected)
	}

	updated, err := schemaRepo.GetByAssetType(context.Background(), orgID, domain.AssetTypeTable)
	if err != nil {
		t.Fatalf("schema lookup failed: %v", err)
	}
	if _, ok := updated.Field("owner"); !ok {
		t.Fatalf("expected owner field to be added: %+v", updated.Fields)
	}
}
