package ringbuf

import "testing"

func TestRingBasic(t *testing.T) {
	r := New[int](4)
	if !r.Push(1) || !r.Push(2) {
		t.Fatal("push failed unexpectedly")
	}
	if v, ok := r.Pop(); !ok || v != 1 {
		t.Errorf("expected first pop to be 1, got %v ok=%v", v, ok)
	}
	if v, ok := r.Pop(); !ok || v != 2 {
		t.Errorf("expected second pop to be 2, got %v ok=%v", v, ok)
	}
	if _, ok := r.Pop(); ok {
		t.Error("expected empty ring to report ok=false")
	}
}

func TestRingFullReturnsFalse(t *testing.T) {
	r := New[int](2)
	if !r.Push(1) || !r.Push(2) {
		t.Fatal("expected first two pushes to succeed")
	}
	if r.Push(3) {
		t.Error("expected push into a full ring to fail")
	}
	if _, ok := r.Pop(); !ok {
		t.Fatal("expected a value after draining one slot")
	}
	if !r.Push(3) {
		t.Error("expected push to succeed once a slot frees up")
	}
}

func TestRingLenAndCapacity(t *testing.T) {
	r := New[int](8)
	if r.Capacity() != 8 {
		t.Errorf("expected capacity 8, got %d", r.Capacity())
	}
	r.Push(1)
	r.Push(2)
	if r.Len() != 2 {
		t.Errorf("expected len 2, got %d", r.Len())
	}
	r.Pop()
	if r.Len() != 1 {
		t.Errorf("expected len 1, got %d", r.Len())
	}
}

func TestRingWrapsAroundMask(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 10; i++ {
		if !r.Push(i) {
			t.Fatalf("push %d failed", i)
		}
		v, ok := r.Pop()
		if !ok || v != i {
			t.Fatalf("expected %d, got %v ok=%v", i, v, ok)
		}
	}
}

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-power-of-two capacity")
		}
	}()
	New[int](3)
}
