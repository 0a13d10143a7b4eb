package validator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// GetValidator returns the process-wide validator.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldIssue describes one failed struct tag.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Issues flattens validator.ValidationErrors, it returns nil for any other error.
func Issues(err error) []FieldIssue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldIssue, 0, len(verrs))
	for _, v := range verrs {
		issue := fmt.Sprintf("failed on tag '%s'", v.Tag())
		if v.Param() != "" {
			issue = fmt.Sprintf("failed on tag '%s' with param '%s'", v.Tag(), v.Param())
		}
		out = append(out, FieldIssue{Field: v.Field(), Issue: issue})
	}
	return out
}
