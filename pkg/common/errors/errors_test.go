package errors

import (
	"errors"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrPoolClosed", ErrPoolClosed, "pool is closed"},
		{"ErrTaskCancelled", ErrTaskCancelled, "task cancelled"},
		{"ErrTimeout", ErrTimeout, "operation timed out"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
		{"ErrCacheMiss", ErrCacheMiss, "cache miss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("error should not be nil")
			}
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrTimeout) {
		t.Error("ErrTimeout should be retryable")
	}
	if !IsRetryable(ErrCacheMiss) {
		t.Error("ErrCacheMiss should be retryable")
	}
	if IsRetryable(ErrPoolClosed) {
		t.Error("ErrPoolClosed should not be retryable")
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(ErrPoolClosed) {
		t.Error("ErrPoolClosed should be terminal")
	}
	if !IsTerminal(ErrTaskCancelled) {
		t.Error("ErrTaskCancelled should be terminal")
	}
	if IsTerminal(ErrTimeout) {
		t.Error("ErrTimeout should not be terminal")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "forkjoin",
				Field:  "workers",
				Value:  -1,
				Reason: "must be positive",
			},
			want: "forkjoin: invalid workers=-1 (must be positive)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "forkjoin",
				Field:  "queueSize",
				Value:  -2,
				Reason: "must be non-negative",
				Hint:   "use 0 for the default",
			},
			want: "forkjoin: invalid queueSize=-2 (must be non-negative) - use 0 for the default",
		},
		{
			name: "string value",
			err: &ValidationError{
				Module: "scheduler",
				Field:  "cron",
				Value:  "",
				Reason: "cannot be empty",
			},
			want: "scheduler: invalid cron= (cannot be empty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test reason")
	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should unwrap to ErrInvalidConfiguration")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("module", "field", 123, "test reason")
	if err.Module != "module" || err.Field != "field" || err.Reason != "test reason" {
		t.Errorf("unexpected fields: %+v", err)
	}

	withHint := NewValidationError("test", "field", 0, "invalid").
		WithHint("try something else")
	if withHint.Hint != "try something else" {
		t.Errorf("hint not set: %q", withHint.Hint)
	}
}
