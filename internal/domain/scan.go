package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ScanType distinguishes data-quality rule scans from data-profile scans.
type ScanType string

const (
	ScanTypeQuality ScanType = "QUALITY"
	ScanTypeProfile ScanType = "PROFILE"
)

// RuleResult is the outcome of one data-quality rule evaluation.
type RuleResult struct {
	Rule   string  `json:"rule"`
	Column string  `json:"column,omitempty"`
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
}

// ColumnProfile summarizes one column of a profiled asset. Min, max and
// average carry string forms so mixed column types profile uniformly.
type ColumnProfile struct {
	Column        string  `json:"column"`
	NullFraction  float64 `json:"null_fraction"`
	DistinctCount int64   `json:"distinct_count"`
	Min           string  `json:"min,omitempty"`
	Max           string  `json:"max,omitempty"`
	Average       string  `json:"average,omitempty"`
}

// ScanResult records one data-quality or data-profile scan over an asset.
type ScanResult struct {
	ID             uuid.UUID       `json:"id"`
	AssetID        uuid.UUID       `json:"asset_id"`
	ScanType       ScanType        `json:"scan_type"`
	RuleResults    []RuleResult    `json:"rule_results,omitempty"`
	ColumnProfiles []ColumnProfile `json:"column_profiles,omitempty"`
	RowCount       int64           `json:"row_count"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewQualityScan creates a quality scan result.
func NewQualityScan(assetID uuid.UUID, rowCount int64, results []RuleResult) ScanResult {
	return ScanResult{
		ID:          uuid.New(),
		AssetID:     assetID,
		ScanType:    ScanTypeQuality,
		RuleResults: results,
		RowCount:    rowCount,
		CreatedAt:   time.Now(),
	}
}

// NewProfileScan creates a profile scan result.
func NewProfileScan(assetID uuid.UUID, rowCount int64, profiles []ColumnProfile) ScanResult {
	return ScanResult{
		ID:             uuid.New(),
		AssetID:        assetID,
		ScanType:       ScanTypeProfile,
		ColumnProfiles: profiles,
		RowCount:       rowCount,
		CreatedAt:      time.Now(),
	}
}

// Summary counts passed and failed rules for a quality scan. Profile scans
// report zero for both.
func (s ScanResult) Summary() (passed, failed int) {
	for _, r := range s.RuleResults {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// PayloadToJSONB serializes the scan's detail payload for JSONB storage.
func (s ScanResult) PayloadToJSONB() (json.RawMessage, error) {
	switch s.ScanType {
	case ScanTypeProfile:
		return json.Marshal(s.ColumnProfiles)
	default:
		return json.Marshal(s.RuleResults)
	}
}

// PayloadFromJSONB decodes a detail payload into the matching field.
func (s *ScanResult) PayloadFromJSONB(data json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	switch s.ScanType {
	case ScanTypeProfile:
		return json.Unmarshal(data, &s.ColumnProfiles)
	default:
		return json.Unmarshal(data, &s.RuleResults)
	}
}
