package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Message: "initial_balance must be >= 0"}
	if err.Error() != "initial_balance must be >= 0" {
		t.Errorf("Error() = %q, want %q", err.Error(), "initial_balance must be >= 0")
	}
}

func TestValidationError_ImplementsError(t *testing.T) {
	var err error = &ValidationError{Message: "test"}
	if err == nil {
		t.Error("ValidationError should implement error interface")
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrStockNotFound,
		ErrUserNotFound,
		ErrWebhookNotFound,
		ErrStockAlreadyExists,
		ErrUserAlreadyExists,
		ErrInvalidQuantity,
		ErrInsufficientBalance,
		ErrInsufficientHoldings,
	}
	for i := 0; i < len(errs); i++ {
		for j := i + 1; j < len(errs); j++ {
			if errors.Is(errs[i], errs[j]) {
				t.Errorf("sentinel errors %d and %d should be distinct", i, j)
			}
		}
	}
}

func TestNotFoundKind(t *testing.T) {
	for _, err := range []error{ErrStockNotFound, ErrUserNotFound, ErrWebhookNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("errors.Is(%v, ErrNotFound) = false, want true", err)
		}
		wrapped := fmt.Errorf("lookup: %w", err)
		if !errors.Is(wrapped, ErrNotFound) {
			t.Errorf("wrapped %v should match ErrNotFound", err)
		}
		if !errors.Is(wrapped, err) {
			t.Errorf("wrapped %v should match itself", err)
		}
	}

	for _, err := range []error{ErrInvalidQuantity, ErrInsufficientBalance, ErrInsufficientHoldings} {
		if errors.Is(err, ErrNotFound) {
			t.Errorf("errors.Is(%v, ErrNotFound) = true, want false", err)
		}
	}
}
