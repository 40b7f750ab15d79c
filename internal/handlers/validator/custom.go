package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
)

// names, weeks and authors become object storage path segments
var pathSegmentRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9_])?$`)

func pathSegmentValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return pathSegmentRegex.MatchString(val)
}

func reconstructionStatusValidator(fl validator.FieldLevel) bool {
	switch val := fl.Field().Interface().(type) {
	case v1alpha1.ReconstructionStatus:
		return val.IsValid()
	case *v1alpha1.ReconstructionStatus:
		return val == nil || val.IsValid()
	default:
		return false
	}
}

func poseStatusValidator(fl validator.FieldLevel) bool {
	switch val := fl.Field().Interface().(type) {
	case v1alpha1.PoseStatus:
		return val.IsValid()
	case *v1alpha1.PoseStatus:
		return val == nil || val.IsValid()
	default:
		return false
	}
}
