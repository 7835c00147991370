package errors

import (
	"github.com/google/uuid"

	"github.com/matzehuels/spiderfy/pkg/spider"
)

// MaxCount bounds the marker count accepted from untrusted input.
// The layout itself has no limit; this keeps API responses bounded.
const MaxCount = 10000

// ValidateCount checks a marker count supplied by a caller.
// Zero is valid and produces an empty layout.
func ValidateCount(count int) error {
	if count < 0 {
		return New(ErrCodeInvalidCount, "count must not be negative, got %d", count)
	}
	if count > MaxCount {
		return New(ErrCodeInvalidCount, "count too large (max %d), got %d", MaxCount, count)
	}
	return nil
}

// ValidateParameters wraps [spider.Parameters.Validate] with an error code.
func ValidateParameters(p spider.Parameters) error {
	if err := p.Validate(); err != nil {
		return Wrap(ErrCodeInvalidParameters, err, "invalid layout parameters")
	}
	return nil
}

// ValidateSessionID checks that id is a well-formed session identifier (UUID).
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSession, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidSession, "malformed session id: %q", id)
	}
	return nil
}
