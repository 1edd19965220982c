package ai

import "errors"

var (
	// ErrUnavailable covers transport failures and non-2xx upstream replies.
	ErrUnavailable = errors.New("ai service unavailable")
	// ErrBadResponse covers replies that arrived but could not be decoded.
	ErrBadResponse = errors.New("ai response malformed")
)
