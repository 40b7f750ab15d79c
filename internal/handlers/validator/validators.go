package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator is a wrapper around the actual validator
// It sets up the validator and extract the rule error message from the underlying error
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &Validator{validator: v}
}

// NewReconstructionValidator returns a validator with the reconstruction rules registered.
func NewReconstructionValidator() *Validator {
	v := NewValidator()
	v.Register(NewReconstructionValidationRules()...)
	return v
}

func (v *Validator) Register(rules ...ValidationRule) {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = rules
}

func (v *Validator) Struct(s any) error {
	if err := v.validator.Struct(s); err != nil {
		return toErrInvalidField(err)
	}
	return nil
}

func toErrInvalidField(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), ruleMessage(fe)))
	}
	return NewErrInvalidField("%s", strings.Join(msgs, "; "))
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("has more than %s chars", fe.Param())
	case "path_segment":
		return fmt.Sprintf("%q is not a valid path segment", fe.Value())
	case "reconstruction_status":
		return fmt.Sprintf("unknown status %v", fe.Value())
	case "pose_status":
		return fmt.Sprintf("unknown pose %v", fe.Value())
	default:
		return fmt.Sprintf("failed on rule %q", fe.Tag())
	}
}
