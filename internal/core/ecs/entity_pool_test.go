package ecs

import (
	"errors"
	"slices"
	"testing"
	"time"
)

// go test -run ^TestPoolCapacityAndReuse$ . -count 1
func TestPoolCapacityAndReuse(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "A+B", 5, positionType, velocityType)

	ids := make([]EntityID, 0, 5)
	for i := 0; i < 5; i++ {
		id, err := w.CreateEntity(pid)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if id.Index() != uint32(i) || id.Version() != 0 || id.Pool() != pid {
			t.Fatalf("create %d returned %s", i, id)
		}
		ids = append(ids, id)
	}
	if _, err := w.CreateEntity(pid); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("6th create err = %v, want ErrPoolFull", err)
	}

	if err := w.DestroyEntity(ids[2]); err != nil {
		t.Fatal(err)
	}
	again, err := w.CreateEntity(pid)
	if err != nil {
		t.Fatal(err)
	}
	if again.Index() != 2 || again.Version() != ids[2].Version()+1 {
		t.Fatalf("reused id = %s, want slot 2 version %d", again, ids[2].Version()+1)
	}
	if !w.IsEntityDeleted(ids[2]) {
		t.Error("stale id reported alive")
	}
	if w.IsEntityDeleted(again) {
		t.Error("new id reported deleted")
	}
}

func TestStaleIDRejected(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 4, positionType)
	id, _ := w.CreateEntity(pid)
	if _, err := w.AssignComponent(id, positionType); err != nil {
		t.Fatal(err)
	}
	if err := w.DestroyEntity(id); err != nil {
		t.Fatal(err)
	}
	if _, err := w.GetComponent(id, positionType); !errors.Is(err, ErrEntityDestroyed) {
		t.Errorf("GetComponent on stale id err = %v", err)
	}
	if err := w.DestroyEntity(id); !errors.Is(err, ErrEntityDestroyed) {
		t.Errorf("double destroy err = %v", err)
	}
	if _, err := w.AssignComponent(id, positionType); !errors.Is(err, ErrEntityDestroyed) {
		t.Errorf("assign on stale id err = %v", err)
	}
	if w.HasComponent(id, positionType) {
		t.Error("HasComponent on stale id")
	}
}

func TestAssignGetRemove(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 4, healthType, tagType)
	id, _ := w.CreateEntity(pid)

	c, err := w.AssignComponent(id, healthType)
	if err != nil {
		t.Fatal(err)
	}
	h := c.(*health)
	if h.HP != 100 {
		t.Fatalf("Init not run: HP = %d", h.HP)
	}
	got, err := Get[health](w, id)
	if err != nil || got != h {
		t.Fatalf("Get = %p, %v; want %p", got, err, h)
	}
	if _, err := w.AssignComponent(id, healthType); !errors.Is(err, ErrComponentEnabled) {
		t.Errorf("second assign err = %v", err)
	}

	if err := w.RemoveComponent(id, healthType); err != nil {
		t.Fatal(err)
	}
	if err := w.RemoveComponent(id, healthType); !errors.Is(err, ErrComponentNotEnabled) {
		t.Errorf("second remove err = %v", err)
	}
	if _, err := w.GetComponent(id, healthType); !errors.Is(err, ErrComponentNotEnabled) {
		t.Errorf("get after remove err = %v", err)
	}
	if _, err := w.GetComponent(id, positionType); !errors.Is(err, ErrComponentNotRegistered) {
		t.Errorf("get of unregistered type err = %v", err)
	}
}

func TestRemoveDestructsOnce(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 2, healthType)
	id, _ := w.CreateEntity(pid)
	h, _ := Assign[health](w, id)
	count := 0
	h.destroyed = &count

	_ = w.RemoveComponent(id, healthType)
	_ = w.RemoveComponent(id, healthType)
	if count != 1 {
		t.Fatalf("Destroy ran %d times", count)
	}

	h, _ = Assign[health](w, id)
	h.destroyed = &count
	if err := w.DestroyEntity(id); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("DestroyEntity did not destruct component: %d", count)
	}
}

func TestAssignByCopy(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 2, healthType, tagType, positionType)
	id, _ := w.CreateEntity(pid)

	src := &health{HP: 7}
	c, err := w.AssignComponentByCopy(id, healthType, src)
	if err != nil {
		t.Fatal(err)
	}
	if c.(*health).HP != 7 || c == any(src) {
		t.Fatalf("copy = %+v", c)
	}
	tg, err := AssignCopy(w, id, &tag{V: 3})
	if err != nil || tg.V != 3 {
		t.Fatalf("AssignCopy = %+v, %v", tg, err)
	}
	_, err = w.AssignComponentByCopy(id, positionType, &position{})
	var ce *CapabilityError
	if !errors.As(err, &ce) || ce.Capability != CapCopy {
		t.Errorf("copy of non-copyable err = %v", err)
	}
	if !errors.Is(err, ErrMissingCapability) {
		t.Errorf("CapabilityError does not unwrap: %v", err)
	}
	if w.HasComponent(id, positionType) {
		t.Error("failed copy left component enabled")
	}
}

func TestCreateEntitiesClamps(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 3, tagType)
	ids, err := w.CreateEntities(pid, 5)
	if !errors.Is(err, ErrPoolFull) {
		t.Fatalf("err = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("created %d, want 3", len(ids))
	}
	for _, id := range ids {
		if w.IsEntityDeleted(id) {
			t.Errorf("%s not alive", id)
		}
	}
}

// go test -run ^TestPoolIterationExact$ . -count 1
func TestPoolIterationExact(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 16, positionType, velocityType, tagType)
	p, _ := w.EntityPool(pid)

	var want []EntityID
	for i := 0; i < 10; i++ {
		id, _ := w.CreateEntity(pid)
		_, _ = w.AssignComponent(id, positionType)
		if i%2 == 0 {
			_, _ = w.AssignComponent(id, velocityType)
			if i != 4 {
				want = append(want, id)
			}
		}
	}
	// destroyed entity with a matching mask must not be yielded
	_ = w.DestroyEntity(NewEntityID(4, pid, 0))

	posLi, _ := w.localIndex(p, positionType)
	velLi, _ := w.localIndex(p, velocityType)
	var mask EntityMask
	mask.Set(posLi)
	mask.Set(velLi)

	got := slices.Collect(p.Entities(mask))
	if !slices.Equal(got, want) {
		t.Fatalf("iterate = %v\nwant      %v", got, want)
	}

	if n := len(slices.Collect(p.Entities(0))); n != 9 {
		t.Errorf("empty mask yielded %d entities, want 9", n)
	}
}

func TestPoolIteratorEquality(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 8, tagType)
	p, _ := w.EntityPool(pid)
	for i := 0; i < 3; i++ {
		_, _ = w.CreateEntity(pid)
	}

	end := p.End(0)
	it := p.Begin(0)
	steps := 0
	for ; !it.Equal(end); it.Next() {
		steps++
	}
	if steps != 3 {
		t.Fatalf("steps = %d", steps)
	}
	// a cursor pushed past the end still equals End
	it.index += 5
	if !it.Equal(end) || !it.Done() {
		t.Error("overshot iterator not equal to End")
	}

	// backward walk visits the same slots in reverse
	var back []uint32
	for it := p.End(0); it.Prev(); {
		back = append(back, it.Slot())
	}
	if !slices.Equal(back, []uint32{2, 1, 0}) {
		t.Errorf("Prev order = %v", back)
	}
}

// go test -run ^TestVersionExhaustion$ . -count 1
func TestVersionExhaustion(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 2, tagType)
	p, _ := w.EntityPool(pid)
	id, _ := w.CreateEntity(pid)

	worn := NewEntityID(id.Index(), pid, InvalidEntityVersion-1)
	p.slots[id.Index()].ID = worn
	if _, err := w.AssignComponent(worn, tagType); err != nil {
		t.Fatal(err)
	}

	err := w.DestroyEntity(worn)
	if !errors.Is(err, ErrVersionExhausted) {
		t.Fatalf("err = %v, want ErrVersionExhausted", err)
	}
	if !w.IsEntityDeleted(worn) {
		t.Error("exhausted entity still alive")
	}
	if p.Retired() != 1 || p.Alive() != 0 {
		t.Errorf("retired=%d alive=%d", p.Retired(), p.Alive())
	}

	next, err := w.CreateEntity(pid)
	if err != nil {
		t.Fatal(err)
	}
	if next.Index() == worn.Index() {
		t.Fatal("retired slot was recycled")
	}
	if _, err := w.CreateEntity(pid); !errors.Is(err, ErrPoolFull) {
		t.Errorf("retired slot still counted as free: %v", err)
	}
}

func TestDestroyEntitiesAllOrNothing(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 4, tagType)
	a, _ := w.CreateEntity(pid)
	b, _ := w.CreateEntity(pid)
	_ = w.DestroyEntity(b)

	if err := w.DestroyEntities([]EntityID{a, b}); !errors.Is(err, ErrEntityDestroyed) {
		t.Fatalf("err = %v", err)
	}
	if w.IsEntityDeleted(a) {
		t.Fatal("partial destroy")
	}
	if err := w.DestroyEntities([]EntityID{a, a}); !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("duplicate err = %v", err)
	}
	if err := w.DestroyEntities([]EntityID{a}); err != nil {
		t.Fatal(err)
	}
}

// go test -run ^TestBatchAssignAllOrNothing$ . -count 1
func TestBatchAssignAllOrNothing(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 8, tagType, velocityType)
	ids, _ := w.CreateEntities(pid, 4)
	_, _ = w.AssignComponent(ids[3], tagType)

	if err := w.AssignComponentToEntities(ids, tagType); !errors.Is(err, ErrComponentEnabled) {
		t.Fatalf("err = %v", err)
	}
	for _, id := range ids[:3] {
		if w.HasComponent(id, tagType) {
			t.Fatalf("%s got tag from a failed batch", id)
		}
	}

	if err := w.AssignComponentToEntitiesByCopy(ids[:3], tagType, &tag{V: 9}); err != nil {
		t.Fatal(err)
	}
	for _, id := range ids[:3] {
		tg, err := Get[tag](w, id)
		if err != nil || tg.V != 9 {
			t.Errorf("%s tag = %+v, %v", id, tg, err)
		}
	}

	if err := w.AssignComponentToEntitiesByCopy(ids, velocityType, &velocity{}); !errors.Is(err, ErrMissingCapability) {
		t.Errorf("copy batch of non-copyable err = %v", err)
	}
	if err := w.AssignComponentToEntitiesByCopy(ids, velocityType, &tag{}); err == nil {
		t.Error("copy batch with wrong source type succeeded")
	}
}

func TestRemoveAllComponents(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 2, tagType, velocityType)
	id, err := w.CreateEntityWithComponents(pid, tagType, velocityType)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.RemoveAllComponents(id); err != nil {
		t.Fatal(err)
	}
	if w.HasComponent(id, tagType) || w.HasComponent(id, velocityType) {
		t.Fatal("components survived RemoveAllComponents")
	}
	if w.IsEntityDeleted(id) {
		t.Fatal("RemoveAllComponents destroyed the entity")
	}
}

func TestCreateEntityWithUnregisteredType(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 2, tagType)
	mustPool(t, w, "q", 2, velocityType)
	if _, err := w.CreateEntityWithComponents(pid, tagType, velocityType); !errors.Is(err, ErrComponentNotRegistered) {
		t.Fatalf("err = %v", err)
	}
	p, _ := w.EntityPool(pid)
	if p.Alive() != 0 {
		t.Fatal("entity created despite failure")
	}
}

// go test -run ^TestComponentPoolContract$ . -count 1
func TestComponentPoolContract(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 2, positionType, velocityType, spriteType)
	p, _ := w.EntityPool(pid)
	pos, _ := p.ComponentPool(0)
	vel, _ := p.ComponentPool(1)
	spr, _ := p.ComponentPool(2)

	cases := []struct {
		name    string
		call    func() error
		wantErr error
		wantCap Capability
	}{
		{"update without capability", func() error { return pos.Update(0, time.Second) }, ErrMissingCapability, CapUpdate},
		{"render without capability", func() error { return vel.Render(0, &position{}) }, ErrMissingCapability, CapRender},
		{"render with non-transform", func() error { return spr.Render(0, &velocity{}) }, ErrTypeMismatch, 0},
		{"get past capacity", func() error { _, err := pos.Get(2); return err }, ErrSlotOutOfRange, 0},
		{"construct past capacity", func() error { _, err := pos.Construct(7); return err }, ErrSlotOutOfRange, 0},
		{"update past capacity", func() error { return vel.Update(2, time.Second) }, ErrSlotOutOfRange, 0},
		{"get in range", func() error { _, err := pos.Get(1); return err }, nil, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.call()
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("err = %v, want %v", err, c.wantErr)
			}
			if c.wantCap == 0 {
				return
			}
			var ce *CapabilityError
			if !errors.As(err, &ce) || ce.Capability != c.wantCap {
				t.Errorf("capability error = %v, want %s", err, c.wantCap)
			}
		})
	}
}

// go test -run ^TestDestroyEntityAt$ . -count 1
func TestDestroyEntityAt(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 3, healthType)
	p, _ := w.EntityPool(pid)
	destroyed := 0
	id, _ := w.CreateEntityWithComponents(pid, healthType)
	h, _ := Get[health](w, id)
	h.destroyed = &destroyed

	cases := []struct {
		name string
		slot uint32
		want error
	}{
		{"live slot", id.Index(), nil},
		{"already free", id.Index(), ErrEntityDestroyed},
		{"never allocated", 2, ErrSlotOutOfRange},
	}
	for _, c := range cases {
		if err := p.DestroyEntityAt(c.slot); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
	if destroyed != 1 {
		t.Errorf("Destroy ran %d times, want 1", destroyed)
	}
	if !w.IsEntityDeleted(id) {
		t.Error("id still alive after DestroyEntityAt")
	}
	again, _ := w.CreateEntity(pid)
	if again.Index() != id.Index() || again.Version() != id.Version()+1 {
		t.Errorf("reused = %s, want slot %d version %d", again, id.Index(), id.Version()+1)
	}
}

// go test -run ^TestPoolIteratorValidAfterDestroy$ . -count 1
func TestPoolIteratorValidAfterDestroy(t *testing.T) {
	w := NewWorld()
	pid := mustPool(t, w, "p", 4, positionType)
	ids, _ := w.CreateEntities(pid, 3)
	p, _ := w.EntityPool(pid)

	it := p.Begin(0)
	it.Next()
	if !it.Valid() || it.Entity() != ids[1] {
		t.Fatalf("cursor on %s, want %s", it.Entity(), ids[1])
	}
	if err := w.DestroyEntity(ids[1]); err != nil {
		t.Fatal(err)
	}
	if it.Valid() {
		t.Error("Valid after destroying the current entity")
	}
	it.Next()
	if !it.Valid() || it.Entity() != ids[2] {
		t.Errorf("Next after destroy landed on %s, want %s", it.Entity(), ids[2])
	}
	it.Next()
	if it.Valid() || !it.Done() {
		t.Error("iterator not exhausted")
	}
}
