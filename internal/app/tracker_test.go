package app

import "testing"

func TestTrackerLazyCreation(t *testing.T) {
	tr := NewTracker()

	if got := tr.Get("R1", "bob"); got != 0 {
		t.Errorf("Get() before any message = %d, want 0", got)
	}
	if got := tr.Increment("R1", "bob"); got != 1 {
		t.Errorf("first Increment() = %d, want 1", got)
	}
	if got := tr.Increment("R1", "bob"); got != 2 {
		t.Errorf("second Increment() = %d, want 2", got)
	}
}

func TestTrackerMarkRead(t *testing.T) {
	tr := NewTracker()

	tr.Increment("R1", "bob")
	tr.Increment("R1", "bob")
	if got := tr.MarkRead("R1", "bob"); got != 0 {
		t.Errorf("MarkRead() = %d, want 0", got)
	}
	if got := tr.Get("R1", "bob"); got != 0 {
		t.Errorf("Get() after MarkRead = %d, want 0", got)
	}

	// no tracker yet: already-read, not an error
	if got := tr.MarkRead("R2", "bob"); got != 0 {
		t.Errorf("MarkRead() on missing tracker = %d, want 0", got)
	}
}

func TestTrackerKeysAreIndependent(t *testing.T) {
	tr := NewTracker()

	tr.Increment("R1", "bob")
	tr.Increment("R2", "bob")
	tr.Increment("R1", "carol")

	tr.MarkRead("R1", "bob")

	if got := tr.Get("R2", "bob"); got != 1 {
		t.Errorf("other room count = %d, want 1", got)
	}
	if got := tr.Get("R1", "carol"); got != 1 {
		t.Errorf("other user count = %d, want 1", got)
	}
}
