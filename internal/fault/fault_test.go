package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindMapping(t *testing.T) {
	cases := []struct {
		kind   Kind
		code   string
		status int
	}{
		{Unauthenticated, "UNAUTHENTICATED", http.StatusUnauthorized},
		{Forbidden, "FORBIDDEN", http.StatusForbidden},
		{NotFound, "NOT_FOUND", http.StatusNotFound},
		{InvalidInput, "INVALID_INPUT", http.StatusBadRequest},
		{Conflict, "CONFLICT", http.StatusConflict},
		{Internal, "INTERNAL", http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.kind.Code(); got != c.code {
			t.Errorf("code for %v: got %q, want %q", c.kind, got, c.code)
		}
		if got := c.kind.HTTPStatus(); got != c.status {
			t.Errorf("status for %v: got %d, want %d", c.kind, got, c.status)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := New(Conflict, "room already booked")
	if KindOf(err) != Conflict {
		t.Fatalf("expected Conflict")
	}
	if KindOf(fmt.Errorf("wrap: %w", err)) != Conflict {
		t.Fatalf("expected Conflict through wrapping")
	}
	if KindOf(errors.New("boom")) != Internal {
		t.Fatalf("expected Internal for foreign errors")
	}
}
