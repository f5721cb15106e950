package errcode

import (
	"io"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorString(t *testing.T) {
	err := NotFound("hobby not found")
	if got := err.Error(); got != "[NOT_FOUND] hobby not found" {
		t.Errorf("unexpected error string: %q", got)
	}

	wrapped := Internal("query failed", io.ErrUnexpectedEOF)
	if got := wrapped.Error(); got != "[INTERNAL] query failed: unexpected EOF" {
		t.Errorf("unexpected error string: %q", got)
	}
}

func TestIsCode(t *testing.T) {
	err := Unauthenticated("missing token")
	if !IsCode(err, CodeUnauthenticated) {
		t.Error("expected CodeUnauthenticated")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("did not expect CodeNotFound")
	}

	// Works through wrapping.
	wrapped := errors.Wrap(err, "handler")
	if !IsCode(wrapped, CodeUnauthenticated) {
		t.Error("IsCode should unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(NotFound("x")) != CodeNotFound {
		t.Error("expected CodeNotFound")
	}
	if CodeOf(io.EOF) != CodeInternal {
		t.Error("plain errors should default to CodeInternal")
	}
}

func TestUnwrap(t *testing.T) {
	cause := io.ErrClosedPipe
	err := Wrap(cause, CodeUnavailable, "index query")
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
