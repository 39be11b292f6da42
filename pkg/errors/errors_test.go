package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForMapsStatusAndVisibility(t *testing.T) {
	cases := map[Code]Metadata{
		CodeValidation:   {http.StatusBadRequest, false, "validation failed", true},
		CodeUnauthorized: {http.StatusUnauthorized, false, "authentication required", false},
		CodeForbidden:    {http.StatusForbidden, false, "access denied", false},
		CodeNotFound:     {http.StatusNotFound, false, "resource not found", false},
		CodeConflict:     {http.StatusConflict, false, "conflict detected", false},
		CodeServer:       {http.StatusInternalServerError, true, "internal server error", false},
		CodeDependency:   {http.StatusServiceUnavailable, true, "dependency unavailable", true},
	}

	for code, want := range cases {
		if got := MetadataFor(code); got != want {
			t.Fatalf("code %s: got %+v want %+v", code, got, want)
		}
	}

	if got := MetadataFor("SOMETHING_UNKNOWN"); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should render as server error, got %d", got.HTTPStatus)
	}
}

func TestNewAndWithDetails(t *testing.T) {
	err := New(CodeValidation, "missing foo")
	if err.Code() != CodeValidation || err.Message() != "missing foo" {
		t.Fatalf("unexpected error %v", err)
	}
	if err.Details() != nil {
		t.Fatalf("details should start nil")
	}
	if err.Error() != "VALIDATION_ERROR: missing foo" {
		t.Fatalf("unexpected Error() %q", err.Error())
	}

	err.WithDetails(map[string]any{"field": "foo"})
	if err.Details() == nil {
		t.Fatalf("WithDetails did not stick")
	}
}

func TestWrapKeepsCauseReachable(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "saving request")

	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("cause lost through Wrap")
	}

	rewrapped := fmt.Errorf("outer: %w", wrapped)
	if As(rewrapped) == nil {
		t.Fatalf("As should find typed error through further wrapping")
	}
}

func TestAsOnUntypedAndNil(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatalf("As should return nil for untyped errors")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestNilReceiverSafety(t *testing.T) {
	var e *Error
	if e.Code() != CodeServer {
		t.Fatalf("nil receiver should report server code")
	}
	if e.Message() != "" || e.Error() != "" || e.Details() != nil || e.Unwrap() != nil {
		t.Fatalf("nil receiver accessors should be zero-valued")
	}
}
