package ports

import "errors"

var (
	ErrUnavailable   = errors.New("collaborator unavailable")
	ErrRateLimited   = errors.New("collaborator budget exhausted")
	ErrInvalidReply  = errors.New("invalid collaborator reply")
	ErrNotConfigured = errors.New("collaborator not configured")
)
