package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidAlignment, "unknown alignment %q", "middle-left")

	if err.Code != ErrCodeInvalidAlignment {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidAlignment)
	}
	if err.Message != `unknown alignment "middle-left"` {
		t.Errorf("Message = %q", err.Message)
	}
	if want := `INVALID_ALIGNMENT: unknown alignment "middle-left"`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch %s", "http://example.test/layout.json")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeKeyNotFound, "item \"a\" not found"), ErrCodeKeyNotFound, true},
		{"other code", New(ErrCodeKeyNotFound, "item \"a\" not found"), ErrCodeSessionNotFound, false},
		{"outermost code wins", Wrap(ErrCodeInvalidLayout, New(ErrCodeInvalidBox, "negative width"), "item 0"), ErrCodeInvalidLayout, true},
		{"inner code hidden", Wrap(ErrCodeInvalidLayout, New(ErrCodeInvalidBox, "negative width"), "item 0"), ErrCodeInvalidBox, false},
		{"behind fmt wrap", fmt.Errorf("load layout: %w", New(ErrCodeFileNotFound, "missing")), ErrCodeFileNotFound, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
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
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidKey, "test"),
			expected: ErrCodeInvalidKey,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
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
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
		{
			name:     "wrapped causes",
			err:      Wrap(ErrCodeInvalidLayout, New(ErrCodeInvalidKey, "item key cannot be empty"), "item 3"),
			expected: "item 3: item key cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid alignment", New(ErrCodeInvalidAlignment, "bad"), http.StatusBadRequest},
		{"invalid layout", Wrap(ErrCodeInvalidLayout, errors.New("eof"), "decode"), http.StatusBadRequest},
		{"session not found", New(ErrCodeSessionNotFound, "gone"), http.StatusNotFound},
		{"key not found", New(ErrCodeKeyNotFound, "gone"), http.StatusNotFound},
		{"network", New(ErrCodeNetwork, "down"), http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.expected {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}
