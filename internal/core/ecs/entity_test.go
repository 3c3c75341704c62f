package ecs

import "testing"

// go test -run ^TestEntityIDRoundTrip$ . -count 1
func TestEntityIDRoundTrip(t *testing.T) {
	cases := []struct {
		index   uint32
		pool    PoolID
		version uint32
	}{
		{0, 0, 0},
		{1, 2, 3},
		{InvalidEntityIndex - 1, InvalidPoolID - 1, InvalidEntityVersion - 1},
		{12345, 77, 1 << 20},
	}
	for _, c := range cases {
		id := NewEntityID(c.index, c.pool, c.version)
		if id.Index() != c.index || id.Pool() != c.pool || id.Version() != c.version {
			t.Errorf("NewEntityID(%d,%d,%d) decoded as (%d,%d,%d)",
				c.index, c.pool, c.version, id.Index(), id.Pool(), id.Version())
		}
		if !id.IsValid() {
			t.Errorf("%s should be valid", id)
		}
	}
}

func TestEntityIDLayout(t *testing.T) {
	id := NewEntityID(1, 1, 1)
	want := EntityID(1<<40 | 1<<28 | 1)
	if id != want {
		t.Fatalf("layout = %#x, want %#x", uint64(id), uint64(want))
	}
}

func TestInvalidEntityID(t *testing.T) {
	if InvalidEntityID.IsValid() {
		t.Fatal("InvalidEntityID reports valid")
	}
	if InvalidEntityID.Index() != InvalidEntityIndex ||
		InvalidEntityID.Pool() != InvalidPoolID ||
		InvalidEntityID.Version() != InvalidEntityVersion {
		t.Fatalf("InvalidEntityID fields = %d/%d/%d", InvalidEntityID.Index(), InvalidEntityID.Pool(), InvalidEntityID.Version())
	}
	free := NewEntityID(InvalidEntityIndex, 3, 9)
	if free.IsValid() {
		t.Error("free-slot id reports valid")
	}
	if got := free.String(); got != "entity(free pool=3 v=9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEntityIDFieldsMasked(t *testing.T) {
	id := NewEntityID(1<<24|5, PoolID(1<<12|6), 1<<28|7)
	if id.Index() != 5 || id.Pool() != 6 || id.Version() != 7 {
		t.Fatalf("overflowing fields not masked: %d/%d/%d", id.Index(), id.Pool(), id.Version())
	}
}

func TestPoolMask(t *testing.T) {
	var m PoolMask
	m.Set(0)
	m.Set(64)
	m.Set(200)
	if !m.Has(64) || m.Has(63) || m.Count() != 3 {
		t.Fatalf("mask = %v", m)
	}
	var sub PoolMask
	sub.Set(200)
	if !m.Contains(sub) {
		t.Error("Contains(subset) = false")
	}
	sub.Set(1)
	if m.Contains(sub) {
		t.Error("Contains(non-subset) = true")
	}
	var got []ComponentID
	m.Each(func(id ComponentID) { got = append(got, id) })
	if len(got) != 3 || got[0] != 0 || got[1] != 64 || got[2] != 200 {
		t.Errorf("Each order = %v", got)
	}
	m.Clear(64)
	if m.Has(64) {
		t.Error("Clear did not clear")
	}
	if !(PoolMask{}).IsEmpty() {
		t.Error("zero mask not empty")
	}
}

func TestEntityMask(t *testing.T) {
	var m EntityMask
	if m.First() != InvalidLocalIndex {
		t.Error("First of empty mask")
	}
	m.Set(3)
	m.Set(63)
	if m.First() != 3 || !m.Has(63) || m.Has(64) {
		t.Fatalf("mask = %b", m)
	}
	if !m.Contains(1<<3) || m.Contains(1<<4) {
		t.Error("Contains")
	}
}

func TestPoolMaskAndOr(t *testing.T) {
	var a, b PoolMask
	a.Set(1)
	a.Set(130)
	b.Set(130)
	b.Set(254)
	and, or := a.And(b), a.Or(b)
	if and.Count() != 1 || !and.Has(130) {
		t.Errorf("And = %v", and)
	}
	if or.Count() != 3 || !or.Has(1) || !or.Has(254) {
		t.Errorf("Or = %v", or)
	}
	if !or.Contains(a) || !or.Contains(b) || and.Contains(a) {
		t.Error("Contains disagrees with And/Or")
	}
}
