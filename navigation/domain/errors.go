package domain

import (
	"errors"
)

var (
	// ErrConnectivity means the store could not be reached.
	ErrConnectivity = errors.New("store unreachable")
	// ErrParse means a startup payload was malformed or a record was incomplete.
	ErrParse = errors.New("malformed payload")
	// ErrPersistence means a store operation failed after the store was reached.
	ErrPersistence = errors.New("store operation failed")
	// ErrNotInitialized means a read happened before the first successful initialize.
	ErrNotInitialized = errors.New("directory not initialized")
)

const (
	SubjectClassroom = "classroom"
	SubjectImages    = "images"
)

// NotFoundError reports that the requested classroom, or every image it
// references, is absent.
type NotFoundError struct {
	Subject string
}

func (e *NotFoundError) Error() string {
	return e.Subject + " not found"
}

// IsNotFound reports whether err is a NotFoundError for subject.
// An empty subject matches any NotFoundError.
func IsNotFound(err error, subject string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return false
	}
	return subject == "" || nf.Subject == subject
}
