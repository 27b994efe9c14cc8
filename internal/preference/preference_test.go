package preference

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePrefer(t *testing.T) {
	tests := []struct {
		name        string
		headers     []string
		wantContent bool
		wantApplied string
	}{
		{"no header", nil, true, ""},
		{"representation", []string{"return=representation"}, true, "return=representation"},
		{"minimal", []string{"return=minimal"}, false, "return=minimal"},
		{"case and spacing", []string{" Return = Minimal "}, false, "return=minimal"},
		{"among other preferences", []string{"respond-async, return=minimal; foo=bar"}, false, "return=minimal"},
		{"last wins", []string{"return=minimal", "return=representation"}, true, "return=representation"},
		{"unknown only", []string{"wait=10"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			for _, h := range tt.headers {
				req.Header.Add("Prefer", h)
			}
			pref := ParsePrefer(req)

			if got := pref.ShouldReturnContent(); got != tt.wantContent {
				t.Errorf("ShouldReturnContent() = %v, want %v", got, tt.wantContent)
			}
			if got := pref.Applied(); got != tt.wantApplied {
				t.Errorf("Applied() = %q, want %q", got, tt.wantApplied)
			}
		})
	}
}
