package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected means the server refused the request as malformed.
	ErrRejected = errors.New("request rejected")
)
