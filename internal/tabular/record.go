package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one row of tabular data: a flat mapping from column name to a
// primitive value. Missing keys and nil values stringify to "".
type Record map[string]any

// Column describes one visible column of a tabular view.
type Column struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// StringValue returns the string form of the record's value for a column.
// Absent columns and nil values yield the empty string.
func (r Record) StringValue(column string) string {
	if r == nil {
		return ""
	}
	return valueString(r[column])
}

func valueString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return fmt.Sprint(value)
	}
}

// FilterableColumns returns the columns worth offering as filter options:
// a column that is blank (nil, missing or whitespace) across every record is
// excluded.
func FilterableColumns(records []Record, columns []Column) []Column {
	result := make([]Column, 0, len(columns))
	for _, col := range columns {
		for _, rec := range records {
			if strings.TrimSpace(rec.StringValue(col.Name)) != "" {
				result = append(result, col)
				break
			}
		}
	}
	return result
}

func columnNameSet(columns []Column) map[string]struct{} {
	set := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		set[col.Name] = struct{}{}
	}
	return set
}
