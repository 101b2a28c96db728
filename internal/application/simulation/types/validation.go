package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

var documentValidator = validator.New()

// ValidateDocument checks the structure of a world document. It does not
// resolve references between entities; that happens when the world is built.
func ValidateDocument(doc *WorldDocument) error {
	if doc == nil {
		return shared.NewValidationError("document", "cannot be nil")
	}

	if err := documentValidator.Struct(doc); err != nil {
		return formatValidationError(err)
	}

	for i, s := range doc.Ships {
		if s.Capacity == nil && strings.TrimSpace(s.Preset) == "" {
			return shared.NewValidationError(fmt.Sprintf("ships[%d].preset", i), "either preset or capacity is required")
		}
	}

	return nil
}

// formatValidationError converts validator errors into a single validation error
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return shared.NewValidationError("document", err.Error())
	}

	var messages []string
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Namespace(),
			e.Tag(),
			e.Value(),
		))
	}

	first := validationErrs[0]
	return shared.NewValidationError(first.Namespace(), strings.Join(messages, "; "))
}
