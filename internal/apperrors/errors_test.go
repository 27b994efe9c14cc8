package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "message only", err: &Error{Message: "bad"}, want: "bad"},
		{name: "message and cause", err: &Error{Message: "bad", Err: errors.New("cause")}, want: "bad: cause"},
		{name: "cause only", err: &Error{Err: errors.New("cause")}, want: "cause"},
		{name: "empty", err: &Error{}, want: "posadmin error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("quantity", "must be at least 1"), http.StatusBadRequest},
		{"invalid transition", InvalidTransition("shipped", "new"), http.StatusBadRequest},
		{"not found", NotFound("product", 7), http.StatusNotFound},
		{"conflict", Conflict("stale"), http.StatusConflict},
		{"precondition", PreconditionFailed(), http.StatusPreconditionFailed},
		{"persistence", Persistence("save order", errors.New("disk full")), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSentinelChains(t *testing.T) {
	if !errors.Is(InvalidTransition("new", "new"), ErrValidation) {
		t.Error("invalid transition should be a validation error")
	}
	if !errors.Is(NotFound("customer", 1), ErrNotFound) {
		t.Error("NotFound should match ErrNotFound")
	}

	cause := errors.New("constraint failed")
	err := Persistence("commit", cause)
	if !errors.Is(err, ErrPersistence) {
		t.Error("Persistence should match ErrPersistence")
	}
	if !errors.Is(err, cause) {
		t.Error("Persistence should keep the driver error reachable")
	}
	if CodeOf(err) != CodePersistence {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(err), CodePersistence)
	}
}

func TestCodeOfSentinels(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", ErrConflict)); got != CodeConflict {
		t.Errorf("CodeOf(conflict) = %q", got)
	}
	if got := CodeOf(errors.New("boom")); got != CodeInternal {
		t.Errorf("CodeOf(unknown) = %q", got)
	}
}
