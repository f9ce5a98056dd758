package pool

import "testing"

type widget struct {
	id int
}

func TestAllocateFillsSlotsAndTracksLiveCount(t *testing.T) {
	p := New[widget](4)
	if p.Cap() != 4 {
		t.Fatalf("cap = %d, want 4", p.Cap())
	}

	var got []*widget
	for i := 0; i < 4; i++ {
		w := p.Allocate()
		w.id = i
		got = append(got, w)
	}
	if p.Live() != 4 {
		t.Fatalf("live = %d, want 4", p.Live())
	}
	for i, w := range got {
		if w.id != i {
			t.Fatalf("slot %d: id = %d, want %d (stale value leaked in)", i, w.id, i)
		}
	}
}

func TestAllocateExhaustionIsFatal(t *testing.T) {
	p := New[widget](1)
	p.Allocate()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on pool exhaustion")
		}
	}()
	p.Allocate()
}

func TestDeallocateFreesSlotForReuse(t *testing.T) {
	p := New[widget](2)
	a := p.Allocate()
	b := p.Allocate()
	p.Deallocate(a)

	if p.Live() != 1 {
		t.Fatalf("live = %d, want 1", p.Live())
	}

	c := p.Allocate()
	if c != a {
		t.Fatalf("expected freed slot %p to be reused, got %p", a, c)
	}
	_ = b
}

func TestDeallocateDoubleFreeIsFatal(t *testing.T) {
	p := New[widget](2)
	a := p.Allocate()
	p.Deallocate(a)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double free")
		}
	}()
	p.Deallocate(a)
}

func TestDeallocateForeignPointerIsFatal(t *testing.T) {
	p := New[widget](2)
	foreign := &widget{}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on foreign pointer deallocate")
		}
	}()
	p.Deallocate(foreign)
}

func TestAllocateCursorRotatesPastUsedSlots(t *testing.T) {
	p := New[widget](3)
	a := p.Allocate()
	_ = p.Allocate()
	c := p.Allocate()

	p.Deallocate(a)
	p.Deallocate(c)

	// cursor should skip the still-live middle slot and reuse a free one.
	got1 := p.Allocate()
	got2 := p.Allocate()
	if got1 == got2 {
		t.Fatal("allocate returned the same slot twice")
	}
	if p.Live() != 3 {
		t.Fatalf("live = %d, want 3", p.Live())
	}
}
