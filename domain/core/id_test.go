package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if NewEntryID().String() == "" {
		t.Error("Expected entry ID to be populated")
	}
}

func TestParseSessionID(t *testing.T) {
	tests := []struct {
		input    string
		expected SessionID
		hasError bool
	}{
		{"session-1", SessionID("session-1"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseSessionID(test.input)
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

func TestSentinelWrapping(t *testing.T) {
	err := NewColumnNotFoundError("age")
	if !errors.Is(err, ErrNotFound) {
		t.Error("column-not-found should unwrap to ErrNotFound")
	}
	if !IsCollisionError(NewCollisionError("age")) {
		t.Error("collision error should be detected")
	}
	if !errors.Is(ErrIncompleteLabels, ErrDomainViolation) {
		t.Error("incomplete labels should be a domain violation")
	}
}

func TestFingerprintStable(t *testing.T) {
	a := NewHasher()
	a.WriteString("x")
	a.WriteString("1")
	b := NewHasher()
	b.WriteString("x")
	b.WriteString("1")
	if a.Sum() != b.Sum() {
		t.Error("identical inputs should hash identically")
	}

	c := NewHasher()
	c.WriteString("x1")
	if a.Sum() == c.Sum() {
		t.Error("separator should distinguish cell boundaries")
	}
}
