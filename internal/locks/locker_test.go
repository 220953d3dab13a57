package locks

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLockerExclusive(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.TryLock(ctx, "schedule:1")
	if err != nil {
		t.Fatalf("first TryLock failed: %v", err)
	}

	if _, err := l.TryLock(ctx, "schedule:1"); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}

	// Other keys are independent
	other, err := l.TryLock(ctx, "schedule:2")
	if err != nil {
		t.Fatalf("TryLock on other key failed: %v", err)
	}
	other()

	release()
	release() // double release is a no-op

	again, err := l.TryLock(ctx, "schedule:1")
	if err != nil {
		t.Fatalf("TryLock after release failed: %v", err)
	}
	again()
}
