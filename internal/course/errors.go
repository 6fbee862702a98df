package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrTestNotFound   = errors.New("test not found")
	ErrResultNotFound = errors.New("test result not found")
)

// ValidationError reports a rejected authoring input. The whole operation
// did not happen; there is nothing to retry or roll back.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrResultNotFound)
}
