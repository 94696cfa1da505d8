package securemem

import "testing"

func TestNewString(t *testing.T) {
	s := NewString("test-token-123")
	defer s.Destroy()

	if s.String() != "test-token-123" {
		t.Errorf("expected %q, got %q", "test-token-123", s.String())
	}
	if s.IsEmpty() {
		t.Error("IsEmpty should be false for a non-empty string")
	}
}

func TestStringEqual(t *testing.T) {
	s := NewString("secret")
	defer s.Destroy()

	if !s.Equal("secret") {
		t.Error("Equal should return true for matching strings")
	}
	if s.Equal("different") {
		t.Error("Equal should return false for non-matching strings")
	}
	if s.Equal("") {
		t.Error("Equal should return false against empty string")
	}
}

func TestDestroy(t *testing.T) {
	s := NewString("ephemeral")
	s.Destroy()

	if !s.IsEmpty() {
		t.Error("destroyed string should be empty")
	}
	if s.String() != "" {
		t.Error("destroyed string should read as empty")
	}
	if s.Equal("ephemeral") {
		t.Error("destroyed string must not compare equal to its old value")
	}

	// Double destroy must be a no-op.
	s.Destroy()
}

func TestNilString(t *testing.T) {
	var s *String

	if !s.IsEmpty() {
		t.Error("nil string should be empty")
	}
	if !s.Equal("") {
		t.Error("nil string should equal empty plaintext")
	}
	if s.Equal("x") {
		t.Error("nil string should not equal non-empty plaintext")
	}
	s.Destroy()
}
