package common

import (
	"strings"
	"unicode/utf8"
)

type Validator struct {
	Errors map[string]string
}

func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	if _, ok := v.Errors[field]; !ok {
		v.Errors[field] = message
	}
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// CheckMinLength counts runes, not bytes.
func (v *Validator) CheckMinLength(s string, min int) bool {
	return utf8.RuneCountInString(s) >= min
}

func (v *Validator) NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func (v *Validator) ValidationError() error {
	return NewValidationError(v.Errors)
}
