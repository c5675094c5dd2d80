package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBenchError_Error(t *testing.T) {
	err := New(ErrCategoryConfig, CodeInvalidConfig, "step must be positive")
	expected := "[CONFIG:INVALID_CONFIG] step must be positive"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := Wrap(ErrCategorySetup, CodeSeedFailed, "insert sample rows", cause)
	expected := "[SETUP:SEED_FAILED] insert sample rows: disk I/O error"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryStorage, CodeUploadFailed, "publish report", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestBenchError_Is(t *testing.T) {
	err1 := New(ErrCategorySetup, CodeOpenFailed, "first")
	err2 := New(ErrCategorySetup, CodeOpenFailed, "second")
	err3 := New(ErrCategorySetup, CodeSchemaFailed, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIsSetupFailure(t *testing.T) {
	tests := []struct {
		err   error
		setup bool
	}{
		{NewSetupError(CodeOpenFailed, "open", nil), true},
		{fmt.Errorf("prepare: %w", NewSetupError(CodeSeedFailed, "seed", nil)), true},
		{NewQueryError(CodeConnectFailed, "connect", nil), false},
		{NewConfigError(CodeUnknownEngine, "duckdb"), false},
		{fmt.Errorf("plain error"), false},
	}

	for _, tt := range tests {
		if IsSetupFailure(tt.err) != tt.setup {
			t.Errorf("IsSetupFailure(%v) = %v, want %v", tt.err, IsSetupFailure(tt.err), tt.setup)
		}
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategoryQuery, CodeScanFailed, "rows")
	if GetCategory(err) != ErrCategoryQuery {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryQuery)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-BenchError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryQuery, CodeScanFailed, "rows")
	if GetCode(err) != CodeScanFailed {
		t.Errorf("got %q, want %q", GetCode(err), CodeScanFailed)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-BenchError should return empty code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCategoryConfig, CodeInvalidConfig, "bad step")
	detailed := err.WithDetails(map[string]interface{}{"step": 0})

	if detailed.Details["step"] != 0 {
		t.Error("WithDetails should set details")
	}
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	s := NewSetupError(CodeSchemaFailed, "create table", cause)
	if s.Category != ErrCategorySetup || !errors.Is(s, cause) {
		t.Error("NewSetupError mismatch")
	}

	q := NewQueryError(CodeConnectFailed, "open", cause)
	if q.Category != ErrCategoryQuery {
		t.Error("NewQueryError mismatch")
	}

	c := NewConfigError(CodeInvalidConfig, "bad")
	if c.Category != ErrCategoryConfig || c.Cause != nil {
		t.Error("NewConfigError mismatch")
	}

	st := NewStorageError(CodeObjectExists, "exists", nil)
	if st.Category != ErrCategoryStorage {
		t.Error("NewStorageError mismatch")
	}

	i := NewInternalError("unexpected", cause)
	if i.Category != ErrCategoryInternal || i.Code != CodeUnexpected {
		t.Error("NewInternalError mismatch")
	}
}
