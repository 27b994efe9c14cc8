package skiptoken

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestEncode(t *testing.T) {
	token := After(123, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))

	encoded, err := Encode(token)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if encoded == "" {
		t.Error("Expected non-empty encoded token")
	}

	if _, err := base64.RawURLEncoding.DecodeString(encoded); err != nil {
		t.Errorf("Encoded token is not valid base64: %v", err)
	}
}

func TestEncodeInvalid(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Error("Expected error when encoding nil token")
	}
	if _, err := Encode(&SkipToken{}); err == nil {
		t.Error("Expected error when encoding token without key")
	}
}

func TestRoundTripKeepsPosition(t *testing.T) {
	created := time.Date(2025, 2, 3, 4, 5, 6, 789, time.FixedZone("X", 3600))
	encoded, err := Encode(After(456, created))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.ID != 456 {
		t.Errorf("ID = %d, want 456", decoded.ID)
	}
	if !decoded.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, created)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not base64", "%%%"},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("nope"))},
		{"no key", base64.RawURLEncoding.EncodeToString([]byte(`{"o":"2024-01-01T00:00:00Z"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.encoded); err == nil {
				t.Errorf("Decode(%q) succeeded, want error", tt.encoded)
			}
		})
	}
}
