package repository

import (
	"encoding/base64"
	"strings"

	"deskbook/internal/domain"
)

// Cursors issued by the drivers in this package are watermarks on the id
// sort key, wrapped in base64 so callers treat them as opaque.
const cursorPrefix = "id>"

func encodeCursor(lastID string) string {
	return base64.URLEncoding.EncodeToString([]byte(cursorPrefix + lastID))
}

func decodeCursor(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil || !strings.HasPrefix(string(raw), cursorPrefix) {
		return "", domain.NewValidationError("page_token", "malformed cursor")
	}
	return strings.TrimPrefix(string(raw), cursorPrefix), nil
}
