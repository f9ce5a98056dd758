package ring

import (
	"sync"
	"testing"
)

func TestNewRequiresPowerOfTwoCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two capacity")
		}
	}()
	New[int](3)
}

func TestWriteReadPreservesOrderAndContent(t *testing.T) {
	r := New[int](8)
	for i := 0; i < 8; i++ {
		slot, ok := r.NextWriteSlot()
		if !ok {
			t.Fatalf("write %d: ring unexpectedly full", i)
		}
		*slot = i
		r.CommitWrite()
	}

	if _, ok := r.NextWriteSlot(); ok {
		t.Fatal("expected ring to report full at capacity")
	}

	for i := 0; i < 8; i++ {
		slot, ok := r.NextReadSlot()
		if !ok {
			t.Fatalf("read %d: ring unexpectedly empty", i)
		}
		if *slot != i {
			t.Fatalf("read %d: got %d, want %d", i, *slot, i)
		}
		r.CommitRead()
	}

	if _, ok := r.NextReadSlot(); ok {
		t.Fatal("expected ring to report empty after draining")
	}
}

func TestFullRingReportsFullRatherThanOverwriting(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 4; i++ {
		slot, ok := r.NextWriteSlot()
		if !ok {
			t.Fatalf("write %d: unexpectedly full", i)
		}
		*slot = 100 + i
		r.CommitWrite()
	}

	if _, ok := r.NextWriteSlot(); ok {
		t.Fatal("expected full ring to refuse a 5th write")
	}

	// draining one slot frees exactly one write slot, not more.
	if _, ok := r.NextReadSlot(); !ok {
		t.Fatal("expected a readable slot")
	}
	r.CommitRead()

	slot, ok := r.NextWriteSlot()
	if !ok {
		t.Fatal("expected one free write slot after a single read")
	}
	*slot = 999
	r.CommitWrite()

	if _, ok := r.NextWriteSlot(); ok {
		t.Fatal("ring should be full again after refilling the freed slot")
	}
}

func TestConcurrentProducerConsumerPreservesOrder(t *testing.T) {
	const n = 1 << 16
	r := New[int](1 << 10)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for {
				slot, ok := r.NextWriteSlot()
				if ok {
					*slot = i
					r.CommitWrite()
					break
				}
			}
		}
	}()

	var mismatches int
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for {
				slot, ok := r.NextReadSlot()
				if ok {
					if *slot != i {
						mismatches++
					}
					r.CommitRead()
					break
				}
			}
		}
	}()

	wg.Wait()
	if mismatches != 0 {
		t.Fatalf("%d messages arrived out of order or corrupted", mismatches)
	}
}

func TestSizeReflectsOccupancy(t *testing.T) {
	r := New[int](8)
	if r.Size() != 0 {
		t.Fatalf("initial size = %d, want 0", r.Size())
	}
	for i := 0; i < 3; i++ {
		slot, _ := r.NextWriteSlot()
		*slot = i
		r.CommitWrite()
	}
	if r.Size() != 3 {
		t.Fatalf("size = %d, want 3", r.Size())
	}
	r.NextReadSlot()
	r.CommitRead()
	if r.Size() != 2 {
		t.Fatalf("size after one read = %d, want 2", r.Size())
	}
}
