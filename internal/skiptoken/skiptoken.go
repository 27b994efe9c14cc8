// Package skiptoken encodes the resume position of a keyset-paginated listing
// as an opaque URL-safe string.
package skiptoken

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// SkipToken is the position after the last row of a page. Listings are sorted
// newest first, so the next page starts strictly below (CreatedAt, ID).
type SkipToken struct {
	ID        uint      `json:"k"`
	CreatedAt time.Time `json:"o"`
}

// Encode encodes a skip token into a base64-encoded JSON string
func Encode(token *SkipToken) (string, error) {
	if token == nil {
		return "", fmt.Errorf("token cannot be nil")
	}
	if token.ID == 0 {
		return "", fmt.Errorf("token must carry a key")
	}

	jsonBytes, err := json.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(jsonBytes), nil
}

// Decode decodes a base64-encoded JSON string into a SkipToken
func Decode(encoded string) (*SkipToken, error) {
	if encoded == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	jsonBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	var token SkipToken
	if err := json.Unmarshal(jsonBytes, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	if token.ID == 0 {
		return nil, fmt.Errorf("token is missing its key")
	}

	return &token, nil
}

// After returns the token positioned after a row with the given key and creation time.
func After(id uint, createdAt time.Time) *SkipToken {
	return &SkipToken{ID: id, CreatedAt: createdAt}
}
