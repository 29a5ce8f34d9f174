package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}

	err := Wrap(ErrNotFound, "event %s", "abc")
	if err.Error() != "event abc: not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "event abc: not found")
	}
	if !Is(err, ErrNotFound) {
		t.Error("wrapped error should match ErrNotFound")
	}
}

func TestInvalidAndNotFound(t *testing.T) {
	if err := Invalid("amount %v", -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Invalid() = %v, want ErrInvalidInput", err)
	}
	if err := NotFound("drink %q", "mocha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("NotFound() = %v, want ErrNotFound", err)
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must(err) did not panic")
		}
	}()
	Must(nil)
	Must(ErrInternal)
}
