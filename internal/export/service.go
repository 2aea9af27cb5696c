// Package export writes view snapshots out as downloadable files. Exports
// are synchronous; views hold interactive record counts, not bulk data.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/datalens/catalogd/internal/tabular"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats the exporter cannot produce.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat normalizes a user-supplied format string, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName builds a download file name from a base label.
func (f Format) FileName(base string) string {
	base = sanitizeFileComponent(base)
	if base == "" {
		base = "view-export"
	}
	return fmt.Sprintf("%s.%s", base, f)
}

// Service renders view snapshots to CSV or XLSX.
type Service struct{}

// NewService creates an exporter.
func NewService() *Service {
	return &Service{}
}

// Write encodes the records into the writer. Columns define header order;
// values are stringified the same way the view engine does.
func (s *Service) Write(w io.Writer, format Format, columns []tabular.Column, records []tabular.Record) error {
	switch format {
	case FormatCSV:
		return s.writeCSV(w, columns, records)
	case FormatXLSX:
		return s.writeXLSX(w, columns, records)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (s *Service) writeCSV(w io.Writer, columns []tabular.Column, records []tabular.Record) error {
	csvWriter := csv.NewWriter(w)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = columnHeader(column)
	}
	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, record := range records {
		for i, column := range columns {
			row[i] = record.StringValue(column.Name)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func (s *Service) writeXLSX(w io.Writer, columns []tabular.Column, records []tabular.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	headers := make([]any, len(columns))
	for i, column := range columns {
		headers[i] = columnHeader(column)
	}
	cell, err := excelize.CoordinatesToCellName(1, 1)
	if err != nil {
		return fmt.Errorf("resolve header cell: %w", err)
	}
	if err := stream.SetRow(cell, headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for rowIdx, record := range records {
		row := make([]any, len(columns))
		for i, column := range columns {
			row[i] = record.StringValue(column.Name)
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("resolve cell for row %d: %w", rowIdx+2, err)
		}
		if err := stream.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", rowIdx+2, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush stream: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func columnHeader(column tabular.Column) string {
	if column.Label != "" {
		return column.Label
	}
	return column.Name
}

func sanitizeFileComponent(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '-' || r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('-')
		}
	}
	return strings.Trim(builder.String(), "-")
}

// DefaultBaseName labels a download by date so repeated exports do not
// collide in the user's download directory.
func DefaultBaseName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, now.Format("2006-01-02"))
}
