package errors

import "errors"

// ErrInvalid marks faults caused by the request itself rather than by an
// upstream service.
var ErrInvalid = errors.New("invalid")

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
