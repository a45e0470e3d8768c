package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeNetwork,
			expected: true,
		},
		{
			name:     "fetch error",
			err:      &FetchError{Ref: "https://img/x.jpg", Cause: errors.New("boom")},
			code:     ErrCodeFetch,
			expected: true,
		},
		{
			name:     "fmt wrapped name mismatch",
			err:      fmt.Errorf("lookup: %w", &NameMismatchError{Want: "a", Got: "b"}),
			code:     ErrCodeNameMismatch,
			expected: true,
		},
		{
			name:     "empty artifact",
			err:      &EmptyArtifactError{Artifact: "archive"},
			code:     ErrCodeEmptyArtifact,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidFormat, "test"), ErrCodeInvalidFormat},
		{"fetch", Fetch("ref", errors.New("x")), ErrCodeFetch},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
		{"empty artifact", &EmptyArtifactError{Artifact: "document"}, "could not build the document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	if Fetch("ref", nil) != nil {
		t.Error("Fetch(ref, nil) should return nil")
	}

	err := Fetch("https://img/a.jpg", context.DeadlineExceeded)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch() = %T, want *FetchError", err)
	}
	if fe.Ref != "https://img/a.jpg" {
		t.Errorf("Ref = %q, want %q", fe.Ref, "https://img/a.jpg")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("FetchError should unwrap to its cause")
	}
}

func TestEmptyArtifactErrorMessage(t *testing.T) {
	err := &EmptyArtifactError{Artifact: "archive", Failures: []string{"Card: Opt", "Token: Elf"}}
	if !strings.Contains(err.Error(), "Card: Opt, Token: Elf") {
		t.Errorf("Error() = %q, should list failures", err.Error())
	}
}

func TestNameMismatchError(t *testing.T) {
	err := &NameMismatchError{Want: "Opt", Got: "Optimus"}
	want := `card name mismatch: expected "Opt", got "Optimus"`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}
