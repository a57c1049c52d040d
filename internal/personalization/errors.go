package personalization

import "errors"

// Sentinel errors for the personalization engine.
var (
	ErrNoContent    = errors.New("no content available")
	ErrLimitReached = errors.New("prompt limit reached")
)
