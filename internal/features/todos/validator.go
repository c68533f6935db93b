package todos

import (
	"strings"

	"github.com/xyz-asif/sheetodo/internal/pkg/validator"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

const maxTitleLength = 200

// ValidateInput trims and normalises in, and returns a
// *errors.ValidationError describing every rejected field.
func ValidateInput(in *TodoInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.Priority = string(NormalizePriority(in.Priority))

	verr := apperrors.NewValidationError()

	if validator.IsBlank(in.Title) {
		verr.Add("title", "Title is required.")
	} else if !validator.MaxRunes(in.Title, maxTitleLength) {
		verr.Add("title", "Title must be at most 200 characters.")
	}

	if in.DueDate != "" && !validator.IsValidDate(in.DueDate) {
		verr.Add("due_date", "Due date must be a valid date in YYYY-MM-DD format.")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
