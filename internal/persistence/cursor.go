// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/insights/internal/domain"
)

// ErrBadCursor marks tokens that could not be decoded back into a cursor.
var ErrBadCursor = errors.New("malformed cursor token")

// Cursor tokens travel in query strings, so the encoding is URL-safe and
// unpadded.
var tokenEncoding = base64.RawURLEncoding

// EncodeCursor serialises a keyset position into an opaque page token.
// A nil cursor encodes to the empty string, meaning no further pages.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := c.RecordedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return tokenEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor. Blank tokens decode to nil, meaning
// start from the newest record.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	ts, id, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, ErrBadCursor
	}
	recordedAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return &domain.Cursor{RecordedAt: recordedAt, ID: id}, nil
}
