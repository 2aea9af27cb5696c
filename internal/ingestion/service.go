// Package ingestion imports tabular files (CSV, XLSX) as catalog assets.
// Rows are validated against the asset type's declared schema; a bad row is
// logged and skipped, never aborting the rest of the file.
package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/datalens/catalogd/internal/domain"
	"github.com/datalens/catalogd/internal/repository"
	"github.com/datalens/catalogd/pkg/validator"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var pathManager = validator.NewPathManager()

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	timeLayouts = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.000",
		"2006/01/02",
		"01/02/2006",
		"02/01/2006",
	}
)

// maxRowErrors caps how many per-row diagnostics a summary carries back to
// the client; the rest are only logged.
const maxRowErrors = 50

// Service ingests tabular data as catalog assets.
type Service struct {
	schemaRepo repository.AssetSchemaRepository
	assetRepo  repository.AssetRepository
	validator  *validator.PropertiesValidator
}

// NewService creates a new ingestion service.
func NewService(schemaRepo repository.AssetSchemaRepository, assetRepo repository.AssetRepository) *Service {
	return &Service{
		schemaRepo: schemaRepo,
		assetRepo:  assetRepo,
		validator:  validator.NewPropertiesValidator(),
	}
}

// Request describes the ingestion input.
type Request struct {
	OrganizationID uuid.UUID
	AssetType      domain.AssetType
	System         string
	FileName       string
	HeaderRowIndex *int
	Data           io.Reader
}

// RowError reports why a single row was skipped.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

// SchemaChange highlights schema level adjustments or conflicts.
type SchemaChange struct {
	Field        string `json:"field,omitempty"`
	ExistingType string `json:"existingType,omitempty"`
	DetectedType string `json:"detectedType,omitempty"`
	Message      string `json:"message"`
}

// Summary returns ingestion level metrics.
type Summary struct {
	TotalRows         int            `json:"totalRows"`
	ValidRows         int            `json:"validRows"`
	InvalidRows       int            `json:"invalidRows"`
	NewFieldsDetected []string       `json:"newFieldsDetected"`
	SchemaChanges     []SchemaChange `json:"schemaChanges"`
	SchemaCreated     bool           `json:"schemaCreated"`
	RowErrors         []RowError     `json:"rowErrors,omitempty"`
}

type tableData struct {
	headers        []string
	rows           [][]string
	headerRowIndex int
}

// Ingest reads the uploaded file, reconciles the asset type's schema, and
// persists one asset per valid row.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{
		NewFieldsDetected: []string{},
		SchemaChanges:     []SchemaChange{},
	}

	if req.OrganizationID == uuid.Nil {
		return summary, errors.New("organization id is required")
	}
	if req.AssetType == "" {
		return summary, errors.New("asset type is required")
	}
	if req.Data == nil {
		return summary, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return summary, errors.New("file is empty")
	}

	table, err := parseTable(req.FileName, payload, req.HeaderRowIndex)
	if err != nil {
		return summary, err
	}
	if len(table.headers) == 0 {
		return summary, errors.New("no header row detected")
	}

	detectedFields := inferFieldDefinitions(table)
	if len(detectedFields) == 0 {
		return summary, errors.New("no fields inferred from data set")
	}

	summary.TotalRows = len(table.rows)

	workingSchema, err := s.reconcileSchema(ctx, req, detectedFields, &summary)
	if err != nil {
		return summary, err
	}

	fieldMap := make(map[string]domain.FieldDefinition, len(workingSchema.Fields))
	for _, field := range workingSchema.Fields {
		fieldMap[field.Name] = field
	}

	if summary.TotalRows == 0 {
		return summary, nil
	}

	validatorDefs := buildValidatorDefinitions(workingSchema.Fields)
	usedPaths := make(map[string]int)

	for rowIdx, row := range table.rows {
		rowNumber := table.headerRowIndex + rowIdx + 2 // include header row (1-based)
		properties := make(map[string]any)
		rowValid := true

		for colIdx, header := range table.headers {
			if colIdx >= len(row) {
				continue
			}

			fieldDef, ok := fieldMap[header]
			if !ok {
				// Column not part of schema; skip silently to avoid failing ingestion.
				continue
			}

			raw := strings.TrimSpace(row[colIdx])
			if raw == "" {
				continue
			}

			coerced, coerceErr := coerceValue(fieldDef.Type, raw)
			if coerceErr != nil {
				rowValid = false
				s.rowError(&summary, req, rowNumber, fmt.Errorf("field %s: %w", header, coerceErr))
				break
			}
			properties[fieldDef.Name] = coerced
		}

		if !rowValid {
			summary.InvalidRows++
			continue
		}

		validationResult := s.validator.ValidateProperties(properties, validatorDefs)
		if !validationResult.IsValid {
			var messages []string
			for _, validationErr := range validationResult.Errors {
				messages = append(messages, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
			}
			s.rowError(&summary, req, rowNumber, errors.New(strings.Join(messages, "; ")))
			summary.InvalidRows++
			continue
		}

		name := assetName(table.headers, row, rowIdx)
		path := generatePath(req.System, req.AssetType, name, usedPaths)
		asset := domain.NewAsset(req.OrganizationID, name, req.AssetType, req.System, path, properties)

		if _, err := s.assetRepo.Create(ctx, asset); err != nil {
			s.rowError(&summary, req, rowNumber, fmt.Errorf("failed to insert asset: %w", err))
			summary.InvalidRows++
			continue
		}

		summary.ValidRows++
	}

	return summary, nil
}

// reconcileSchema loads or creates the asset type's schema, adding newly
// detected fields and recording type conflicts without failing the import.
func (s *Service) reconcileSchema(ctx context.Context, req Request, detectedFields []domain.FieldDefinition, summary *Summary) (domain.AssetSchema, error) {
	workingSchema, err := s.schemaRepo.GetByAssetType(ctx, req.OrganizationID, req.AssetType)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.AssetSchema{}, fmt.Errorf("failed to load schema: %w", err)
		}
		created, createErr := s.schemaRepo.Create(ctx, domain.NewAssetSchema(req.OrganizationID, req.AssetType, detectedFields))
		if createErr != nil {
			return domain.AssetSchema{}, fmt.Errorf("failed to create schema: %w", createErr)
		}
		summary.SchemaCreated = true
		summary.SchemaChanges = append(summary.SchemaChanges, SchemaChange{
			Message: fmt.Sprintf("schema for asset type %s created", req.AssetType),
		})
		return created, nil
	}

	fieldMap := make(map[string]domain.FieldDefinition, len(workingSchema.Fields))
	for _, field := range workingSchema.Fields {
		fieldMap[field.Name] = field
	}

	var schemaUpdated bool
	for _, detected := range detectedFields {
		existing, found := fieldMap[detected.Name]
		if !found {
			workingSchema = workingSchema.WithField(detected)
			fieldMap[detected.Name] = detected
			summary.NewFieldsDetected = append(summary.NewFieldsDetected, detected.Name)
			schemaUpdated = true
			continue
		}

		if !fieldTypesCompatible(existing.Type, detected.Type) {
			summary.SchemaChanges = append(summary.SchemaChanges, SchemaChange{
				Field:        detected.Name,
				ExistingType: string(existing.Type),
				DetectedType: string(detected.Type),
				Message:      fmt.Sprintf("field %s type mismatch: existing=%s, detected=%s", detected.Name, existing.Type, detected.Type),
			})
		}
	}

	if schemaUpdated {
		persisted, updateErr := s.schemaRepo.Update(ctx, workingSchema)
		if updateErr != nil {
			return domain.AssetSchema{}, fmt.Errorf("failed to update schema: %w", updateErr)
		}
		workingSchema = persisted
		summary.SchemaChanges = append(summary.SchemaChanges, SchemaChange{
			Message: fmt.Sprintf("schema for asset type %s updated with %d new field(s)", req.AssetType, len(summary.NewFieldsDetected)),
		})
	}

	return workingSchema, nil
}

func (s *Service) rowError(summary *Summary, req Request, rowNumber int, err error) {
	log.Printf("[INGEST] %s row %d skipped: %v", req.FileName, rowNumber, err)
	if len(summary.RowErrors) < maxRowErrors {
		summary.RowErrors = append(summary.RowErrors, RowError{RowNumber: rowNumber, Message: err.Error()})
	}
}

func parseTable(fileName string, payload []byte, headerRowIndex *int) (tableData, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload, headerRowIndex)
	case ".xlsx":
		return parseExcel(payload, headerRowIndex)
	default:
		return tableData{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte, headerRowIndex *int) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read csv: %w", err)
	}

	return normalizeTable(records, headerRowIndex)
}

func parseExcel(payload []byte, headerRowIndex *int) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return normalizeTable(rows, headerRowIndex)
}

func normalizeTable(records [][]string, headerRowIndex *int) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	var headerRow []string
	var dataRows [][]string
	headerIndex := -1

	if headerRowIndex != nil {
		if *headerRowIndex < 0 || *headerRowIndex >= len(records) {
			return tableData{}, fmt.Errorf("header row index %d out of range", *headerRowIndex)
		}
		if len(cleanRow(records[*headerRowIndex])) == 0 {
			return tableData{}, fmt.Errorf("selected header row %d is empty", *headerRowIndex+1)
		}
		headerRow = records[*headerRowIndex]
		headerIndex = *headerRowIndex
		for idx := *headerRowIndex + 1; idx < len(records); idx++ {
			row := records[idx]
			if len(cleanRow(row)) == 0 {
				continue
			}
			dataRows = append(dataRows, row)
		}
	} else {
		for idx, row := range records {
			if len(cleanRow(row)) == 0 {
				continue
			}
			if headerRow == nil {
				headerRow = row
				headerIndex = idx
				continue
			}
			dataRows = append(dataRows, row)
		}
	}

	if headerRow == nil {
		return tableData{}, errors.New("header row could not be detected")
	}

	headers := sanitizeHeaders(headerRow)

	for i := range dataRows {
		dataRows[i] = padRow(dataRows[i], len(headers))
	}

	return tableData{
		headers:        headers,
		rows:           dataRows,
		headerRowIndex: headerIndex,
	}, nil
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func inferFieldDefinitions(table tableData) []domain.FieldDefinition {
	definitions := make([]domain.FieldDefinition, 0, len(table.headers))
	for idx, header := range table.headers {
		fieldType := profileColumn(idx, table.rows)
		definitions = append(definitions, domain.FieldDefinition{
			Name: header,
			Type: fieldType,
		})
	}
	return definitions
}

func profileColumn(col int, rows [][]string) domain.FieldType {
	isBool := true
	isInt := true
	isFloat := true
	isTimestamp := true
	hasValue := false

	for _, row := range rows {
		if col >= len(row) {
			continue
		}

		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}

		hasValue = true

		if !looksLikeBool(value) {
			isBool = false
		}
		if !looksLikeInt(value) {
			isInt = false
		}
		if !looksLikeFloat(value) {
			isFloat = false
		}
		if !looksLikeTimestamp(value) {
			isTimestamp = false
		}
	}

	switch {
	case isBool && hasValue:
		return domain.FieldTypeBoolean
	case isInt && hasValue:
		return domain.FieldTypeInteger
	case isFloat && hasValue:
		return domain.FieldTypeFloat
	case isTimestamp && hasValue:
		return domain.FieldTypeTimestamp
	default:
		return domain.FieldTypeString
	}
}

func looksLikeBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "yes" || value == "no" {
		return true
	}
	_, err := strconv.ParseBool(value)
	return err == nil
}

func looksLikeInt(value string) bool {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return true
	}
	// Allow float representations that can be losslessly converted to int.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return math.Mod(f, 1) == 0
	}
	return false
}

func looksLikeFloat(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func looksLikeTimestamp(value string) bool {
	_, err := parseTimestamp(value)
	return err == nil
}

func fieldTypesCompatible(existing, detected domain.FieldType) bool {
	if existing == detected {
		return true
	}
	// Allow integer detections for float fields.
	if existing == domain.FieldTypeFloat && detected == domain.FieldTypeInteger {
		return true
	}
	// Everything stringifies.
	if existing == domain.FieldTypeString {
		return true
	}
	return false
}

func buildValidatorDefinitions(fields []domain.FieldDefinition) map[string]validator.FieldDefinition {
	defs := make(map[string]validator.FieldDefinition, len(fields))
	for _, field := range fields {
		defs[field.Name] = validator.FieldDefinition{
			Type:        string(field.Type),
			Required:    field.Required,
			Description: field.Description,
		}
	}
	return defs
}

func coerceValue(fieldType domain.FieldType, raw string) (any, error) {
	switch fieldType {
	case domain.FieldTypeString:
		return raw, nil
	case domain.FieldTypeInteger:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil && math.Mod(f, 1) == 0 {
			return int64(f), nil
		}
		return nil, fmt.Errorf("unable to coerce %q to integer", raw)
	case domain.FieldTypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("unable to coerce %q to float", raw)
	case domain.FieldTypeBoolean:
		value := strings.ToLower(strings.TrimSpace(raw))
		switch value {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("unable to coerce %q to boolean", raw)
		}
		return boolVal, nil
	case domain.FieldTypeTimestamp:
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to coerce %q to timestamp: %w", raw, err)
		}
		return ts.Format(time.RFC3339), nil
	case domain.FieldTypeJSON:
		var out any
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("invalid json payload: %w", err)
		}
		return out, nil
	default:
		// Fallback for unknown types; best effort interpretation.
		return raw, nil
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugPattern.ReplaceAllString(value, "_")
	value = strings.Trim(value, "_")
	return value
}

// assetName picks the row's "name" column when present, otherwise the first
// non-empty cell, otherwise a positional fallback.
func assetName(headers []string, row []string, index int) string {
	for colIdx, header := range headers {
		if header == "name" && colIdx < len(row) {
			if name := strings.TrimSpace(row[colIdx]); name != "" {
				return name
			}
		}
	}
	for _, cell := range row {
		if cell = strings.TrimSpace(cell); cell != "" {
			return cell
		}
	}
	return fmt.Sprintf("row_%d", index+1)
}

func generatePath(system string, assetType domain.AssetType, name string, used map[string]int) string {
	base := slugify(system)
	if base == "" {
		base = slugify(string(assetType))
	}
	if base == "" {
		base = "asset"
	}

	child := slugify(name)
	if child == "" {
		child = "asset"
	}

	path := pathManager.JoinPath(base, child)
	if count, ok := used[path]; ok {
		count++
		used[path] = count
		path = fmt.Sprintf("%s_%d", path, count)
	} else {
		used[path] = 1
	}
	return path
}
