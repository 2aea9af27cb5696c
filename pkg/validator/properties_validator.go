package validator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PropertiesValidator handles validation of asset properties against field definitions
type PropertiesValidator struct{}

// NewPropertiesValidator creates a new properties validator
func NewPropertiesValidator() *PropertiesValidator {
	return &PropertiesValidator{}
}

// FieldDefinition represents a field definition for validation
type FieldDefinition struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	Validation  any    `json:"validation,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
}

// ValidateProperties validates asset properties against field definitions
func (pv *PropertiesValidator) ValidateProperties(properties map[string]any, fieldDefinitions map[string]FieldDefinition) ValidationResult {
	result := ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	for fieldName, fieldDef := range fieldDefinitions {
		value, exists := properties[fieldName]

		// Required field missing
		if fieldDef.Required && (!exists || value == nil) {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("required field '%s' is missing", fieldName),
			})
			continue
		}

		// Skip validation for missing optional fields
		if !exists || value == nil {
			continue
		}

		// Type validation
		if err := pv.validateFieldType(fieldName, value, fieldDef.Type); err != nil {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Message: err.Error(),
				Value:   value,
			})
		}

		// Custom validation rules
		if fieldDef.Validation != nil {
			if err := pv.validateCustomRules(fieldName, value, fieldDef.Validation); err != nil {
				result.Warnings = append(result.Warnings, ValidationError{
					Field:   fieldName,
					Message: err.Error(),
					Value:   value,
				})
			}
		}
	}

	// Check for extra properties not defined in the schema
	for propertyName := range properties {
		if _, exists := fieldDefinitions[propertyName]; !exists {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   propertyName,
				Message: fmt.Sprintf("property '%s' is not defined in schema", propertyName),
				Value:   properties[propertyName],
			})
		}
	}

	return result
}

// validateFieldType validates the type of a field value
func (pv *PropertiesValidator) validateFieldType(fieldName string, value any, expectedType string) error {
	switch strings.ToLower(strings.TrimSpace(expectedType)) {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field '%s' must be a string, got %T", fieldName, value)
		}
	case "integer":
		if !pv.isInteger(value) {
			return fmt.Errorf("field '%s' must be an integer, got %T", fieldName, value)
		}
	case "float":
		if !pv.isFloat(value) {
			return fmt.Errorf("field '%s' must be a float, got %T", fieldName, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field '%s' must be a boolean, got %T", fieldName, value)
		}
	case "timestamp":
		switch v := value.(type) {
		case string:
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return fmt.Errorf("field '%s' must be a valid timestamp (RFC3339): %v", fieldName, err)
			}
		case time.Time:
			// already parsed; accept value
		default:
			return fmt.Errorf("field '%s' must be a timestamp string, got %T", fieldName, value)
		}
	case "json":
		if _, err := json.Marshal(value); err != nil {
			return fmt.Errorf("field '%s' contains invalid JSON: %v", fieldName, err)
		}
	default:
		return fmt.Errorf("unknown field type: %s", expectedType)
	}

	return nil
}

// validateCustomRules validates optional field rules
func (pv *PropertiesValidator) validateCustomRules(fieldName string, value any, rules any) error {
	rulesMap, ok := rules.(map[string]any)
	if !ok {
		return fmt.Errorf("validation rules must be a map")
	}

	if minVal, exists := rulesMap["min"]; exists {
		if !pv.isGreaterThanOrEqual(value, minVal) {
			return fmt.Errorf("field '%s' value %v is less than minimum %v", fieldName, value, minVal)
		}
	}

	if maxVal, exists := rulesMap["max"]; exists {
		if !pv.isLessThanOrEqual(value, maxVal) {
			return fmt.Errorf("field '%s' value %v is greater than maximum %v", fieldName, value, maxVal)
		}
	}

	if minLen, exists := rulesMap["min_length"]; exists {
		if strVal, ok := value.(string); ok {
			if len(strVal) < int(minLen.(float64)) {
				return fmt.Errorf("field '%s' length %d is less than minimum %v", fieldName, len(strVal), minLen)
			}
		}
	}

	if maxLen, exists := rulesMap["max_length"]; exists {
		if strVal, ok := value.(string); ok {
			if len(strVal) > int(maxLen.(float64)) {
				return fmt.Errorf("field '%s' length %d is greater than maximum %v", fieldName, len(strVal), maxLen)
			}
		}
	}

	if pattern, exists := rulesMap["pattern"]; exists {
		if strVal, ok := value.(string); ok {
			if !strings.Contains(strings.ToLower(strVal), strings.ToLower(pattern.(string))) {
				return fmt.Errorf("field '%s' value '%s' does not match pattern '%s'", fieldName, strVal, pattern)
			}
		}
	}

	return nil
}

// Helper methods for type checking
func (pv *PropertiesValidator) isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == float64(int64(v))
	case string:
		_, err := strconv.Atoi(v)
		return err == nil
	default:
		return false
	}
}

func (pv *PropertiesValidator) isFloat(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		return false
	}
}

func (pv *PropertiesValidator) isGreaterThanOrEqual(value, min any) bool {
	switch v := value.(type) {
	case float64:
		if minFloat, ok := min.(float64); ok {
			return v >= minFloat
		}
	case int:
		if minInt, ok := min.(int); ok {
			return v >= minInt
		}
	}
	return false
}

func (pv *PropertiesValidator) isLessThanOrEqual(value, max any) bool {
	switch v := value.(type) {
	case float64:
		if maxFloat, ok := max.(float64); ok {
			return v <= maxFloat
		}
	case int:
		if maxInt, ok := max.(int); ok {
			return v <= maxInt
		}
	}
	return false
}
