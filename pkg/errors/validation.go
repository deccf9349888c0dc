package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds member identifiers accepted from callers.
const maxIDLength = 128

// ValidateMemberID validates a member identifier supplied by a caller.
// IDs are opaque, but they end up in URLs, cache keys and Graphviz output,
// so control characters and path separators are rejected.
func ValidateMemberID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "member ID is required")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "member ID too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "member ID contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "member ID cannot contain path separators")
	}
	return nil
}

// ValidateActor validates the acting user identity. Authentication is handled
// elsewhere; an actor only has to be present.
func ValidateActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return New(ErrCodeUnauthorized, "user information is required")
	}
	return nil
}

// ValidateCoordinates rejects NaN and infinite canvas coordinates.
func ValidateCoordinates(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return New(ErrCodeInvalidPosition, "invalid position coordinates")
	}
	return nil
}
