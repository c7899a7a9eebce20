package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestNewRunIDOrdering tests that run IDs are unique and sort by creation
func TestNewRunIDOrdering(t *testing.T) {
	const n = 10000

	seen := make(map[RunID]bool, n)
	prev := NewRunID()
	for i := 0; i < n; i++ {
		id := NewRunID()
		if seen[id] {
			t.Fatalf("Generated duplicate run ID: %s", id)
		}
		if id.String() < prev.String() {
			t.Fatalf("Run ID %s sorts before earlier %s", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

// TestParseHash tests fingerprint validation
func TestParseHash(t *testing.T) {
	fp := ComputeParamsHash(map[string]interface{}{"oracle": "rational", "seed": 1})

	got, err := ParseHash("  " + strings.ToUpper(fp.String()) + " ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != fp {
		t.Errorf("Expected %s, got %s", fp, got)
	}

	for _, bad := range []string{"", "abc", strings.Repeat("z", 64)} {
		if _, err := ParseHash(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

// TestComputeParamsHashOrder tests that insertion order never changes the fingerprint
func TestComputeParamsHashOrder(t *testing.T) {
	a := map[string]interface{}{}
	a["tolerance"] = 1e-7
	a["alternative"] = "two-sided"
	b := map[string]interface{}{"alternative": "two-sided", "tolerance": 1e-7}
	if ComputeParamsHash(a) != ComputeParamsHash(b) {
		t.Error("Expected equal fingerprints")
	}
	b["tolerance"] = 1e-6
	if ComputeParamsHash(a) == ComputeParamsHash(b) {
		t.Error("Expected fingerprints to differ")
	}
}

// TestTimestampUnixNano tests the storage round trip
func TestTimestampUnixNano(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.FixedZone("x", 3600)))
	back := FromUnixNano(ts.UnixNano())
	if !back.Time().Equal(ts.Time()) {
		t.Errorf("Expected %v, got %v", ts.Time(), back.Time())
	}
	if got := back.Display(); got != "2024-03-09 13:05:07" {
		t.Errorf("Expected UTC display, got %q", got)
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"run-123", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestInvalidTableError tests that table errors name the argument and unwrap to the sentinel
func TestInvalidTableError(t *testing.T) {
	err := NewInvalidTableError("c", "-3", "must be non-negative")

	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("Expected error to wrap ErrInvalidTable, got %v", err)
	}
	if !IsValidationError(err) {
		t.Error("Expected table error to be a validation error")
	}

	var tableErr *InvalidTableError
	if !errors.As(err, &tableErr) {
		t.Fatalf("Expected *InvalidTableError, got %T", err)
	}
	if tableErr.Arg != "c" {
		t.Errorf("Expected Arg 'c', got '%s'", tableErr.Arg)
	}

	want := "invalid contingency table: c=-3 must be non-negative"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

// TestErrorHelpers tests the classification helpers
func TestErrorHelpers(t *testing.T) {
	alt := NewInvalidAlternativeError("both")
	if !IsValidationError(alt) {
		t.Error("Expected alternative error to be a validation error")
	}
	if IsInvalidTableError(alt) {
		t.Error("Alternative error must not classify as table error")
	}

	dis := NewDisagreementError("(2,3,0,2)", 0.5, 0.4)
	if !IsDisagreement(dis) {
		t.Error("Expected disagreement error to be classified")
	}
	if IsValidationError(dis) {
		t.Error("Disagreement must not classify as validation error")
	}
}
