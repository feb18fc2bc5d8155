package dErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	base := New(CodeNotFound, "verdict not found")
	wrapped := fmt.Errorf("load entry: %w", base)

	if !HasCode(wrapped, CodeNotFound) {
		t.Fatalf("expected CodeNotFound through fmt wrapping")
	}
	if HasCode(wrapped, CodeConflict) {
		t.Fatalf("did not expect CodeConflict")
	}
	if HasCode(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeUnavailable, "could not save")

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}
	if Message(err) != "could not save" {
		t.Fatalf("expected message %q, got %q", "could not save", Message(err))
	}
	if CodeOf(err) != CodeUnavailable {
		t.Fatalf("expected CodeUnavailable, got %s", CodeOf(err))
	}
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	if CodeOf(errors.New("surprise")) != CodeInternal {
		t.Fatalf("non-domain errors must map to internal")
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:         http.StatusBadRequest,
		CodeValidation:         http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeUnavailable:        http.StatusServiceUnavailable,
		CodeInternal:           http.StatusInternalServerError,
		Code("something-else"): http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToHTTPStatus(code); got != want {
			t.Errorf("ToHTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}
