package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidParameter, "test message: %s", "value")

	if err.Code != ErrCodeInvalidParameter {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidParameter)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_PARAMETER: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidRecipe, cause, "failed to decode")

	if err.Code != ErrCodeInvalidRecipe {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRecipe)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
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
			err:      New(ErrCodeInvalidParameter, "test"),
			code:     ErrCodeInvalidParameter,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidParameter, "test"),
			code:     ErrCodeUnknownPort,
			expected: false,
		},
		{
			name:     "outer code of wrapped error",
			err:      Wrap(ErrCodeInvalidRecipe, New(ErrCodeInfeasibleGeometry, "inner"), "outer"),
			code:     ErrCodeInvalidRecipe,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeInvalidRecipe, New(ErrCodeInfeasibleGeometry, "inner"), "outer"),
			code:     ErrCodeInfeasibleGeometry,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("build: %w", Infeasible("negative straight")),
			code:     ErrCodeInfeasibleGeometry,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidParameter,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidParameter,
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
	if got := GetCode(New(ErrCodeUnknownComponent, "x")); got != ErrCodeUnknownComponent {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUnknownComponent)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"structured", New(ErrCodeInvalidParameter, "bad width"), "bad width"},
		{"wrapped", Wrap(ErrCodeInvalidRecipe, New(ErrCodeUnknownComponent, "no such component"), "place 2"), "place 2: no such component"},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParameter(t *testing.T) {
	err := Parameter("racetrack", "numCouplers", "must be 1 or 2, got %d", 3)
	if err.Code != ErrCodeInvalidParameter {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidParameter)
	}
	want := "racetrack: numCouplers: must be 1 or 2, got 3"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}
