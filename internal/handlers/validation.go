package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxTagLength = 256

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// SetTagsRequest is the body of POST /api/tags/file. Tags and TagList are
// merged; TagList is a comma separated string.
type SetTagsRequest struct {
	Path    string   `json:"path" validate:"required"`
	Tags    []string `json:"tags" validate:"max=1000,dive,max=256"`
	TagList string   `json:"tagList,omitempty"`
	Mode    string   `json:"mode,omitempty" validate:"omitempty,oneof=append replace APPEND REPLACE"`
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", strings.ToLower(fe.Field()), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s exceeds %s", fe.Namespace(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
