// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed field with structured detail.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the struct field name that failed validation.
func (e *FieldError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g. "100" for "max=100").
func (e *FieldError) Param() string {
	return e.param
}

// Value returns the value that failed validation.
func (e *FieldError) Value() interface{} {
	return e.value
}

func (e *FieldError) Error() string {
	return e.message
}

// StructError collects every failed field of one validated struct. The
// HTTP layer renders it as a 400 body; the importers render Error() as a
// per-row rejection reason.
type StructError struct {
	fields []FieldError
}

// Fields returns the individual field failures.
func (se *StructError) Fields() []FieldError {
	return se.fields
}

// Error joins the per-field messages with "; " in field order.
func (se *StructError) Error() string {
	if len(se.fields) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(se.fields))
	for i := range se.fields {
		messages[i] = se.fields[i].message
	}
	return strings.Join(messages, "; ")
}

// Details renders the failures as a map suitable for the error envelope's
// details object.
func (se *StructError) Details() map[string]interface{} {
	if len(se.fields) == 1 {
		f := se.fields[0]
		return map[string]interface{}{
			"field": f.field,
			"tag":   f.tag,
			"value": f.value,
		}
	}

	fields := make([]map[string]interface{}, len(se.fields))
	for i, f := range se.fields {
		fields[i] = map[string]interface{}{
			"field":   f.field,
			"tag":     f.tag,
			"message": f.message,
		}
	}
	return map[string]interface{}{"fields": fields}
}

// GetValidator returns the singleton validator instance, initialized once
// with WithRequiredStructEnabled. Thread-safe; the validator caches struct
// metadata so reusing one instance matters for the row-at-a-time importers.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct with the singleton validator. Returns
// nil when the struct passes, or a *StructError carrying every failed field.
func ValidateStruct(s interface{}) *StructError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &StructError{
			fields: []FieldError{{
				field:   "unknown",
				tag:     "unknown",
				message: err.Error(),
			}},
		}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fields[i] = FieldError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &StructError{fields: fields}
}

// errorMessageTemplates maps parameterless tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
}

// errorMessageWithParam maps tags to templates that include the parameter.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

// translateError converts a validator.FieldError to a stable human-readable
// message keyed by the failed tag.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max with type-specific wording: character
// counts for strings, plain bounds for numbers.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
