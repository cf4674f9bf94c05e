package validation

import (
	"errors"
	"testing"

	fjerrors "github.com/vnykmshr/forkjoin/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive", 4, false},
		{"one", 1, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("forkjoin", "workers", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, fjerrors.ErrInvalidConfiguration) {
				t.Error("validation errors should unwrap to ErrInvalidConfiguration")
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("forkjoin", "queueSize", 0); err != nil {
		t.Errorf("unexpected error for 0: %v", err)
	}
	if err := ValidateNonNegative("forkjoin", "queueSize", -1); err == nil {
		t.Error("expected error for -1")
	}
}

func TestValidateNotNil(t *testing.T) {
	if err := ValidateNotNil("forkjoin", "task", struct{}{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateNotNil("forkjoin", "task", nil); err == nil {
		t.Error("expected error for nil")
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("scheduler", "id", "task-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateNotEmpty("scheduler", "id", ""); err == nil {
		t.Error("expected error for empty string")
	}
}
