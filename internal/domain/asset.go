package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/tabular"
	"github.com/datalens/catalogd/pkg/validator"
)

// paths handles the dotted containment path arithmetic shared with the
// validation layer.
var paths = validator.NewPathManager()

// AssetType classifies a catalog asset.
type AssetType string

const (
	AssetTypeTable    AssetType = "TABLE"
	AssetTypeView     AssetType = "VIEW"
	AssetTypeDataset  AssetType = "DATASET"
	AssetTypeStream   AssetType = "STREAM"
	AssetTypeFileset  AssetType = "FILESET"
	AssetTypePipeline AssetType = "PIPELINE"
)

// Reserved record columns every asset projects, independent of its dynamic
// properties.
const (
	ColumnID          = "id"
	ColumnName        = "name"
	ColumnType        = "type"
	ColumnSystem      = "system"
	ColumnPath        = "path"
	ColumnDescription = "description"
)

// Asset represents one catalog entry (a table, dataset, view and so on) with
// dynamic properties. The value is treated as immutable; mutators return
// copies.
type Asset struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	Name           string         `json:"name"`
	AssetType      AssetType      `json:"asset_type"`
	System         string         `json:"system"`
	Path           string         `json:"path"` // dotted containment path, e.g. project.dataset.table
	Description    string         `json:"description"`
	Tags           []string       `json:"tags"`
	Properties     map[string]any `json:"properties"`
	Version        int64          `json:"version"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewAsset creates a new asset.
func NewAsset(organizationID uuid.UUID, name string, assetType AssetType, system, path string, properties map[string]any) Asset {
	now := time.Now()
	return Asset{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           name,
		AssetType:      assetType,
		System:         system,
		Path:           path,
		Properties:     copyProperties(properties),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// WithProperty returns a copy with one property added or replaced.
func (a Asset) WithProperty(key string, value any) Asset {
	clone := a.clone()
	clone.Properties[key] = value
	clone.UpdatedAt = time.Now()
	return clone
}

// WithoutProperty returns a copy without the named property.
func (a Asset) WithoutProperty(key string) Asset {
	clone := a.clone()
	delete(clone.Properties, key)
	clone.UpdatedAt = time.Now()
	return clone
}

// WithDescription returns a copy with an updated description.
func (a Asset) WithDescription(description string) Asset {
	clone := a.clone()
	clone.Description = description
	clone.UpdatedAt = time.Now()
	return clone
}

// WithTags returns a copy with a replaced tag list.
func (a Asset) WithTags(tags []string) Asset {
	clone := a.clone()
	clone.Tags = copyTags(tags)
	clone.UpdatedAt = time.Now()
	return clone
}

// WithPath returns a copy with an updated containment path.
func (a Asset) WithPath(path string) Asset {
	clone := a.clone()
	clone.Path = path
	clone.UpdatedAt = time.Now()
	return clone
}

func (a Asset) clone() Asset {
	a.Properties = copyProperties(a.Properties)
	a.Tags = copyTags(a.Tags)
	return a
}

// ParentPath returns the containment parent, or "" at the root.
// For a path like "project.dataset.table" the parent is "project.dataset".
func (a Asset) ParentPath() string {
	return paths.GetParentPath(a.Path)
}

// IsDescendantOf reports whether the asset sits below the given path.
func (a Asset) IsDescendantOf(path string) bool {
	return paths.IsDescendantOf(a.Path, path)
}

// ToRecord projects the asset onto a flat tabular record for the view
// engine: the reserved columns first, then every dynamic property under its
// own key. Reserved names win on collision.
func (a Asset) ToRecord() tabular.Record {
	rec := make(tabular.Record, len(a.Properties)+6)
	for k, v := range a.Properties {
		rec[k] = v
	}
	rec[ColumnID] = a.ID.String()
	rec[ColumnName] = a.Name
	rec[ColumnType] = string(a.AssetType)
	rec[ColumnSystem] = a.System
	rec[ColumnPath] = a.Path
	rec[ColumnDescription] = a.Description
	return rec
}

// GetPropertiesAsJSONB returns the dynamic properties for JSONB storage.
func (a *Asset) GetPropertiesAsJSONB() (json.RawMessage, error) {
	if a.Properties == nil {
		a.Properties = make(map[string]any)
	}
	return json.Marshal(a.Properties)
}

// FromJSONBProperties decodes a properties map from JSONB data.
func FromJSONBProperties(propertiesJSON json.RawMessage) (map[string]any, error) {
	var properties map[string]any
	err := json.Unmarshal(propertiesJSON, &properties)
	return properties, err
}

func copyProperties(properties map[string]any) map[string]any {
	clone := make(map[string]any, len(properties))
	for k, v := range properties {
		clone[k] = v
	}
	return clone
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	clone := make([]string, len(tags))
	copy(clone, tags)
	return clone
}
