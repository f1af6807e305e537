/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"bpmn-token-engine/src/core/restapi/models"
)

// Validator provides request validation utilities
type Validator struct{}

// NewValidator creates new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRequired validates required fields
func (v *Validator) ValidateRequired(value interface{}, fieldName string) *models.ValidationError {
	if value == nil {
		return &models.ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("%s is required", fieldName),
		}
	}

	switch val := value.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return &models.ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("%s cannot be empty", fieldName),
			}
		}
	case []interface{}:
		if len(val) == 0 {
			return &models.ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("%s cannot be empty", fieldName),
			}
		}
	case map[string]interface{}:
		if len(val) == 0 {
			return &models.ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("%s cannot be empty", fieldName),
			}
		}
	}

	return nil
}

// ValidateStringLength validates string length constraints
func (v *Validator) ValidateStringLength(value string, fieldName string, minLen, maxLen int) *models.ValidationError {
	length := utf8.RuneCountInString(value)

	if minLen > 0 && length < minLen {
		return &models.ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("%s must be at least %d characters long", fieldName, minLen),
		}
	}

	if maxLen > 0 && length > maxLen {
		return &models.ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("%s must be at most %d characters long", fieldName, maxLen),
		}
	}

	return nil
}

// ValidatePattern validates string against regex pattern
func (v *Validator) ValidatePattern(value, fieldName, pattern, patternName string) *models.ValidationError {
	matched, err := regexp.MatchString(pattern, value)
	if err != nil {
		return &models.ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("invalid pattern validation for %s", fieldName),
		}
	}

	if !matched {
		return &models.ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: fmt.Sprintf("%s must match %s format", fieldName, patternName),
		}
	}

	return nil
}

// ValidateID validates ID format (NanoID)
func (v *Validator) ValidateID(value, fieldName string) *models.ValidationError {
	// NanoID pattern: 4-char prefix + hyphen + 18-char NanoID
	pattern := `^[a-zA-Z0-9]{4}-[a-zA-Z0-9_-]{18}$`
	return v.ValidatePattern(value, fieldName, pattern, "ID")
}

// ValidateHexMask validates a 0x-prefixed hex-encoded U128 bitmask field
// (pre_condition/post_condition/type_info/count_instances).
func (v *Validator) ValidateHexMask(value, fieldName string) *models.ValidationError {
	pattern := `^0x[0-9a-fA-F]{1,32}$`
	return v.ValidatePattern(value, fieldName, pattern, "0x-prefixed hex U128")
}

// ValidateMultiple validates multiple constraints and returns all errors
func (v *Validator) ValidateMultiple(validations ...func() *models.ValidationError) []models.ValidationError {
	var errors []models.ValidationError

	for _, validation := range validations {
		if err := validation(); err != nil {
			errors = append(errors, *err)
		}
	}

	return errors
}

// CreateValidationError creates validation error response
func (v *Validator) CreateValidationError(errors []models.ValidationError) *models.APIError {
	if len(errors) == 0 {
		return nil
	}

	message := fmt.Sprintf("Validation failed for %d field(s)", len(errors))
	return models.NewValidationError(message, errors)
}
