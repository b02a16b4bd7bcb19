package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sarchlab/conveyor/pipe"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the rules that span
// several fields.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterStructValidation(validatePipeLength, Config{})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}

	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Field(),
			e.Tag(),
			e.Value(),
		))
	}

	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// validatePipeLength rejects pipes longer than the chosen kind can hold.
func validatePipeLength(sl validator.StructLevel) {
	var cfg Config

	switch c := sl.Current().Interface().(type) {
	case Config:
		cfg = c
	case *Config:
		cfg = *c
	default:
		return
	}

	kind, err := pipe.ParseKind(cfg.Simulation.PipeKind)
	if err != nil {
		return
	}

	if cfg.Scenario.PipeLength > pipe.MaxCapacityOf(kind) {
		sl.ReportError(cfg.Scenario.PipeLength, "PipeLength", "PipeLength",
			"max_for_"+kind.String(), "")
	}
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
