package hooks

import (
	"context"
	"errors"
	"testing"
)

func TestEmitRunsListenersInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int
	b.On("insertNode", func(ctx context.Context, args ...any) error {
		order = append(order, 1)
		return nil
	})
	b.On("insertNode", func(ctx context.Context, args ...any) error {
		order = append(order, 2)
		return nil
	})
	if err := b.Emit(context.Background(), "insertNode"); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestEmitRunsRemainingListenersAfterError(t *testing.T) {
	b := New()
	ran := false
	errBoom := errors.New("boom")
	b.On("update", func(ctx context.Context, args ...any) error {
		return errBoom
	})
	b.On("update", func(ctx context.Context, args ...any) error {
		ran = true
		return nil
	})
	err := b.Emit(context.Background(), "update")
	if err != errBoom {
		t.Errorf("Emit err = %v, want %v", err, errBoom)
	}
	if !ran {
		t.Error("second listener did not run after first failed")
	}
}

func TestOffRemovesListener(t *testing.T) {
	b := New()
	calls := 0
	h := b.On("removeNodes", func(ctx context.Context, args ...any) error {
		calls++
		return nil
	})
	h.Off()
	_ = b.Emit(context.Background(), "removeNodes")
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after Off", calls)
	}
}

func TestEmitWithNoListenersIsNoop(t *testing.T) {
	b := New()
	if err := b.Emit(context.Background(), "nothingRegistered"); err != nil {
		t.Errorf("Emit with no listeners = %v, want nil", err)
	}
}
