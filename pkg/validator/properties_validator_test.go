package validator

import "testing"

func sampleDefinitions() map[string]FieldDefinition {
	return map[string]FieldDefinition{
		"name":      {Type: "string", Required: true},
		"row_count": {Type: "integer"},
		"size_gb":   {Type: "float"},
		"partitioned": {
			Type: "boolean",
		},
		"last_modified": {Type: "timestamp"},
	}
}

func TestValidPropertiesPass(t *testing.T) {
	pv := NewPropertiesValidator()

	result := pv.ValidateProperties(map[string]any{
		"name":          "orders",
		"row_count":     float64(1200), // JSON numbers decode as float64
		"size_gb":       3.4,
		"partitioned":   true,
		"last_modified": "2024-06-01T10:00:00Z",
	}, sampleDefinitions())

	if !result.IsValid {
		t.Fatalf("expected valid result, got errors: %+v", result.Errors)
	}
}

func TestMissingRequiredField(t *testing.T) {
	pv := NewPropertiesValidator()

	result := pv.ValidateProperties(map[string]any{
		"row_count": float64(10),
	}, sampleDefinitions())

	if result.IsValid {
		t.Fatalf("expected invalid result for missing required field")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "name" {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
}

func TestTypeMismatches(t *testing.T) {
	pv := NewPropertiesValidator()

	cases := []struct {
		field string
		value any
	}{
		{"name", 42},
		{"row_count", "not-a-number"},
		{"partitioned", "yes"},
		{"last_modified", "June 1st"},
	}

	for _, tc := range cases {
		props := map[string]any{"name": "orders"}
		props[tc.field] = tc.value
		result := pv.ValidateProperties(props, sampleDefinitions())
		if result.IsValid {
			t.Fatalf("expected %s=%v to fail validation", tc.field, tc.value)
		}
	}
}

func TestUndeclaredPropertyRejected(t *testing.T) {
	pv := NewPropertiesValidator()

	result := pv.ValidateProperties(map[string]any{
		"name":    "orders",
		"mystery": "value",
	}, sampleDefinitions())

	if result.IsValid {
		t.Fatalf("expected undeclared property to fail validation")
	}
}

func TestCustomRulesProduceWarnings(t *testing.T) {
	pv := NewPropertiesValidator()

	defs := map[string]FieldDefinition{
		"size_gb": {
			Type:       "float",
			Validation: map[string]any{"max": float64(100)},
		},
	}

	result := pv.ValidateProperties(map[string]any{"size_gb": float64(250)}, defs)
	if !result.IsValid {
		t.Fatalf("custom rule violations should warn, not fail: %+v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", result.Warnings)
	}
}

func TestPathManager(t *testing.T) {
	pm := NewPathManager()

	if got := pm.JoinPath("project.dataset", "orders"); got != "project.dataset.orders" {
		t.Fatalf("unexpected joined path: %s", got)
	}
	if got := pm.GetParentPath("project.dataset.orders"); got != "project.dataset" {
		t.Fatalf("unexpected parent path: %s", got)
	}
	if got := pm.GetPathDepth("project.dataset.orders"); got != 3 {
		t.Fatalf("unexpected depth: %d", got)
	}
	if !pm.IsAncestorOf("project", "project.dataset.orders") {
		t.Fatalf("expected project to be an ancestor")
	}
	if pm.IsAncestorOf("project.dataset.orders", "project") {
		t.Fatalf("did not expect leaf to be an ancestor of root")
	}
	if !pm.IsSiblingOf("project.dataset.orders", "project.dataset.users") {
		t.Fatalf("expected sibling paths")
	}

	if err := pm.ValidatePath("project.dataset.orders"); err != nil {
		t.Fatalf("expected valid path, got %v", err)
	}
	if err := pm.ValidatePath("project..orders"); err == nil {
		t.Fatalf("expected empty component to be rejected")
	}
	if err := pm.ValidatePath("Project.Orders"); err == nil {
		t.Fatalf("expected uppercase components to be rejected")
	}
}

func TestPathComparatorOrdersHierarchically(t *testing.T) {
	pc := NewPathComparator()

	if pc.ComparePaths("a.b", "a.b.c") != -1 {
		t.Fatalf("expected parent before child")
	}
	if pc.ComparePaths("a.b", "a.c") != -1 {
		t.Fatalf("expected a.b before a.c")
	}
	if pc.ComparePaths("a.b", "a.b") != 0 {
		t.Fatalf("expected equal paths to compare as 0")
	}
}
