package errs

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid")
	ErrTooMany     = errors.New("too many requests")
	ErrInternal    = errors.New("internal")
	ErrInvalidFile = errors.New("invalid file")
	ErrNoContent   = errors.New("no content")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
