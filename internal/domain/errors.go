package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken is the persistence layer's unique index on products.slug
	// firing. Callers may retry the whole ingestion with a fresh slug.
	ErrSlugTaken = errors.New("slug already taken")

	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError rejects a request before it touches the AI service or the
// store. It maps to a client error at the HTTP boundary.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
