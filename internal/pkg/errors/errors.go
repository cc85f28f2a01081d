package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalid         = errors.New("invalid")
	ErrConflict        = errors.New("conflict")
	ErrTooMany         = errors.New("too many requests")
	ErrInternal        = errors.New("internal")
	ErrLinkUnavailable = errors.New("link unavailable")
	ErrDocumentCorrupt = errors.New("document corrupt")
	ErrPersistence     = errors.New("persistence failure")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
