package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestAsset_ToRecordProjectsReservedColumnsAndProperties(t *testing.T) {
	asset := NewAsset(uuid.New(), "orders", AssetTypeTable, "bigquery", "shop.sales.orders", map[string]any{
		"owner":     "data-eng",
		"row_count": float64(1200),
	})

	rec := asset.ToRecord()

	if rec.StringValue(ColumnName) != "orders" {
		t.Fatalf("expected name column, got %q", rec.StringValue(ColumnName))
	}
	if rec.StringValue(ColumnType) != "TABLE" {
		t.Fatalf("expected type column, got %q", rec.StringValue(ColumnType))
	}
	if rec.StringValue("owner") != "data-eng" {
		t.Fatalf("expected property projection, got %q", rec.StringValue("owner"))
	}
	if rec.StringValue("row_count") != "1200" {
		t.Fatalf("expected numeric property stringification, got %q", rec.StringValue("row_count"))
	}
}

func TestAsset_ToRecordReservedNamesWinOnCollision(t *testing.T) {
	asset := NewAsset(uuid.New(), "orders", AssetTypeTable, "bigquery", "shop.sales.orders", map[string]any{
		"name": "shadow",
	})

	if got := asset.ToRecord().StringValue(ColumnName); got != "orders" {
		t.Fatalf("expected reserved column to win, got %q", got)
	}
}

func TestAsset_ParentPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"shop.sales.orders", "shop.sales"},
		{"shop", ""},
		{"", ""},
	}
	for _, tc := range cases {
		asset := Asset{Path: tc.path}
		if got := asset.ParentPath(); got != tc.want {
			t.Fatalf("path %q: expected parent %q, got %q", tc.path, tc.want, got)
		}
	}
}

func TestAsset_IsDescendantOf(t *testing.T) {
	asset := Asset{Path: "shop.sales.orders"}

	if !asset.IsDescendantOf("shop.sales") {
		t.Fatalf("expected descendant of shop.sales")
	}
	if asset.IsDescendantOf("shop.sale") {
		t.Fatalf("prefix match must respect path segments")
	}
	if !asset.IsDescendantOf("") {
		t.Fatalf("every asset descends from the root")
	}
}

func TestAsset_WithPropertyDoesNotMutateOriginal(t *testing.T) {
	asset := NewAsset(uuid.New(), "orders", AssetTypeTable, "bigquery", "shop.sales.orders", map[string]any{
		"owner": "data-eng",
	})

	updated := asset.WithProperty("owner", "analytics")

	if asset.Properties["owner"] != "data-eng" {
		t.Fatalf("original asset mutated")
	}
	if updated.Properties["owner"] != "analytics" {
		t.Fatalf("updated copy missing change")
	}
}
