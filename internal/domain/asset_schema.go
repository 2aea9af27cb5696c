package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/tabular"
)

// FieldType represents the type of a declared asset column.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeFloat     FieldType = "float"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeTimestamp FieldType = "timestamp"
	FieldTypeJSON      FieldType = "json"
)

// FieldDefinition describes one column of an asset's schema.
type FieldDefinition struct {
	Name        string    `json:"name"`
	Label       string    `json:"label,omitempty"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
}

// AssetSchema is the declared column set for an asset type within an
// organization. The value is treated as immutable; mutators return copies.
type AssetSchema struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	AssetType      AssetType         `json:"asset_type"`
	Fields         []FieldDefinition `json:"fields"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewAssetSchema creates a schema for an asset type.
func NewAssetSchema(organizationID uuid.UUID, assetType AssetType, fields []FieldDefinition) AssetSchema {
	now := time.Now()
	return AssetSchema{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		AssetType:      assetType,
		Fields:         copyFields(fields),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// WithField returns a copy with one field added or replaced by name.
func (s AssetSchema) WithField(field FieldDefinition) AssetSchema {
	fields := copyFields(s.Fields)
	replaced := false
	for i, existing := range fields {
		if existing.Name == field.Name {
			fields[i] = field
			replaced = true
			break
		}
	}
	if !replaced {
		fields = append(fields, field)
	}
	s.Fields = fields
	s.UpdatedAt = time.Now()
	return s
}

// WithoutField returns a copy without the named field.
func (s AssetSchema) WithoutField(name string) AssetSchema {
	fields := make([]FieldDefinition, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Name != name {
			fields = append(fields, field)
		}
	}
	s.Fields = fields
	s.UpdatedAt = time.Now()
	return s
}

// Columns projects the schema's fields onto view columns in declaration
// order.
func (s AssetSchema) Columns() []tabular.Column {
	columns := make([]tabular.Column, len(s.Fields))
	for i, field := range s.Fields {
		label := field.Label
		if label == "" {
			label = field.Name
		}
		columns[i] = tabular.Column{Name: field.Name, Label: label}
	}
	return columns
}

// Field looks up a field definition by name.
func (s AssetSchema) Field(name string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// ValidateFields checks that a field list is usable as a schema: every field
// named, names unique (case-insensitive), types known.
func ValidateFields(fields []FieldDefinition) error {
	if len(fields) == 0 {
		return fmt.Errorf("schema requires at least one field")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("field name is required")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate field name %q", field.Name)
		}
		seen[key] = struct{}{}

		switch field.Type {
		case FieldTypeString, FieldTypeInteger, FieldTypeFloat, FieldTypeBoolean, FieldTypeTimestamp, FieldTypeJSON:
		default:
			return fmt.Errorf("field %q has unknown type %q", field.Name, field.Type)
		}
	}
	return nil
}

// GetFieldsAsJSONB returns the fields for JSONB storage.
func (s AssetSchema) GetFieldsAsJSONB() (json.RawMessage, error) {
	return json.Marshal(s.Fields)
}

// FromJSONBFields decodes field definitions from JSONB data.
func FromJSONBFields(fieldsJSON json.RawMessage) ([]FieldDefinition, error) {
	var fields []FieldDefinition
	err := json.Unmarshal(fieldsJSON, &fields)
	return fields, err
}

func copyFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	clone := make([]FieldDefinition, len(fields))
	copy(clone, fields)
	return clone
}
