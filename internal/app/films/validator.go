package films

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"filmorate/internal/models"
)

const (
	// MaxNameLength matches the width of the films.name column.
	MaxNameLength = 255
	// MaxDescriptionLength caps the description in characters.
	MaxDescriptionLength = 200
)

// EarliestReleaseDate is the date of the first public film screening.
var EarliestReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// FieldValidator enforces the film field rules.
type FieldValidator struct{}

// NewValidator returns the default film validator.
func NewValidator() FieldValidator {
	return FieldValidator{}
}

// ValidateFilm reports the first rule the film breaks, wrapped in ErrValidation.
func (FieldValidator) ValidateFilm(film models.Film) error {
	switch {
	case strings.TrimSpace(film.Name) == "":
		return fmt.Errorf("%w: name must not be blank", ErrValidation)
	case utf8.RuneCountInString(film.Name) > MaxNameLength:
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	case utf8.RuneCountInString(film.Description) > MaxDescriptionLength:
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	case film.ReleaseDate.IsZero():
		return fmt.Errorf("%w: release date is required", ErrValidation)
	case film.ReleaseDate.Before(EarliestReleaseDate):
		return fmt.Errorf("%w: release date must not be before %s", ErrValidation, EarliestReleaseDate.Format(models.DateLayout))
	case film.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	return nil
}

// ValidFilmID reports whether id falls within 1..count.
func (FieldValidator) ValidFilmID(count int, id int64) bool {
	return id > 0 && id <= int64(count)
}
