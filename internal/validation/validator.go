// Package validation checks seed input before it reaches the session.
//
// Pack records and variable names are validated against field schemas. Problems that
// make an entry unusable are errors; suspicious but workable values are warnings that
// the caller may log. ValidationResult.ToAppError converts failures to the AppError
// shape used by the CLI and the TUI.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/models"
)

// Schema names registered by NewValidator.
const (
	SchemaPackRecord = "pack_record"
	SchemaVariable   = "variable"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Required  bool
	MaxLength int
	Pattern   *regexp.Regexp
	Custom    func(string) error
	// WarnIfEmpty reports an empty value as a warning instead of silently accepting it.
	WarnIfEmpty bool
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ValidationWarning represents a field validation warning
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Schema represents a validation schema
type Schema struct {
	Name   string
	Fields map[string]FieldValidator
	// Order fixes the order fields are checked in, so results are stable.
	Order []string
}

// Validator validates string fields against registered schemas.
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := &Validator{
		schemas: make(map[string]*Schema),
	}
	v.registerBuiltinSchemas()
	return v
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}
}

// Validate checks data against a schema. Field names in the result carry prefix.
func (v *Validator) Validate(schemaName, prefix string, data map[string]string) *ValidationResult {
	result := newResult()
	v.validateInto(result, schemaName, prefix, data)
	return result
}

func (v *Validator) validateInto(result *ValidationResult, schemaName, prefix string, data map[string]string) {
	schema, exists := v.schemas[schemaName]
	if !exists {
		result.addError("schema", "SCHEMA_NOT_FOUND", fmt.Sprintf("Validation schema '%s' not found", schemaName), "")
		return
	}
	for _, field := range schema.Order {
		v.validateField(prefix+field, schema.Fields[field], data[field], result)
	}
}

func (r *ValidationResult) addError(field, code, message, value string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Code: code, Message: message, Value: value})
}

func (r *ValidationResult) addWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message})
}

// validateField validates a single field
func (v *Validator) validateField(fieldName string, validator FieldValidator, value string, result *ValidationResult) {
	if strings.TrimSpace(value) == "" {
		switch {
		case validator.Required:
			result.addError(fieldName, "REQUIRED_FIELD_MISSING", fmt.Sprintf("Field '%s' is required", fieldName), value)
		case validator.WarnIfEmpty:
			result.addWarning(fieldName, fmt.Sprintf("Field '%s' is empty", fieldName))
		}
		return
	}

	if validator.MaxLength > 0 && len(value) > validator.MaxLength {
		result.addError(fieldName, "MAX_LENGTH_VIOLATION",
			fmt.Sprintf("Field '%s' must be at most %d characters long", fieldName, validator.MaxLength), value)
	}

	if validator.Pattern != nil && !validator.Pattern.MatchString(value) {
		result.addError(fieldName, "PATTERN_MISMATCH",
			fmt.Sprintf("Field '%s' does not match required pattern", fieldName), value)
	}

	if validator.Custom != nil {
		if err := validator.Custom(value); err != nil {
			result.addError(fieldName, "CUSTOM_VALIDATION_FAILED",
				fmt.Sprintf("Field '%s': %s", fieldName, err.Error()), value)
		}
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// registerBuiltinSchemas registers the pack and variable schemas
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name:  SchemaPackRecord,
		Order: []string{"id", "name", "pack_name", "goal", "directives", "system_notes"},
		Fields: map[string]FieldValidator{
			"id":           {MaxLength: 200, Pattern: identifierPattern},
			"name":         {MaxLength: 200, WarnIfEmpty: true},
			"pack_name":    {MaxLength: 200, WarnIfEmpty: true},
			"goal":         {WarnIfEmpty: true},
			"directives":   {WarnIfEmpty: true},
			"system_notes": {},
		},
	})

	v.RegisterSchema(&Schema{
		Name:  SchemaVariable,
		Order: []string{"name"},
		Fields: map[string]FieldValidator{
			"name": {Required: true, Custom: placeholderName},
		},
	})
}

// placeholderName rejects names that no {{ }} marker could ever produce.
func placeholderName(name string) error {
	if strings.ContainsAny(name, "{}") {
		return fmt.Errorf("must not contain braces")
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("must not start or end with whitespace")
	}
	return nil
}

var defaultValidator = NewValidator()

// ValidatePackRecord checks one pack record; index is its position in the seed.
func ValidatePackRecord(index int, rec models.PackRecord) *ValidationResult {
	return defaultValidator.Validate(SchemaPackRecord, fmt.Sprintf("packs[%d].", index), packData(rec))
}

func packData(rec models.PackRecord) map[string]string {
	return map[string]string{
		"id":           rec.ID,
		"name":         rec.Name,
		"pack_name":    rec.PackName,
		"goal":         rec.Goal,
		"directives":   rec.Directives,
		"system_notes": rec.SystemNotes,
	}
}

// ValidateVariableName returns a validation AppError when name can never match a placeholder.
func ValidateVariableName(name string) error {
	result := defaultValidator.Validate(SchemaVariable, "", map[string]string{"name": name})
	if !result.Valid {
		return result.ToAppError()
	}
	return nil
}

// ValidateSeed checks every variable name and pack record of a seed. It also warns when
// two records share a pack name, since lookups by pack name return the first.
func ValidateSeed(vars map[string]string, records []models.PackRecord) *ValidationResult {
	result := newResult()

	for _, name := range models.Variables(vars).Names() {
		defaultValidator.validateInto(result, SchemaVariable, fmt.Sprintf("variables[%q].", name), map[string]string{"name": name})
	}

	seen := make(map[string]int, len(records))
	for i, rec := range records {
		defaultValidator.validateInto(result, SchemaPackRecord, fmt.Sprintf("packs[%d].", i), packData(rec))
		if rec.PackName == "" {
			continue
		}
		if first, dup := seen[rec.PackName]; dup {
			result.addWarning(fmt.Sprintf("packs[%d].pack_name", i),
				fmt.Sprintf("pack name '%s' already used by packs[%d]", rec.PackName, first))
			continue
		}
		seen[rec.PackName] = i
	}
	return result
}

// ToAppError converts validation result to AppError
func (r *ValidationResult) ToAppError() *errors.AppError {
	if r.Valid {
		return nil
	}
	if len(r.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	appErr := errors.ValidationError(r.Errors[0].Message)

	var details []string
	for _, validationErr := range r.Errors {
		details = append(details, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
	}
	appErr.WithDetails(strings.Join(details, "; "))
	appErr.WithContext("validation_errors", r.Errors)
	if len(r.Warnings) > 0 {
		appErr.WithContext("validation_warnings", r.Warnings)
	}
	return appErr
}

// WarningMessages flattens the warnings for logging.
func (r *ValidationResult) WarningMessages() []string {
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.Field + ": " + w.Message
	}
	return out
}
