package event

import (
	"testing"

	"github.com/l1jgo/poolecs/internal/core/ecs"
)

type tagged struct{ N int }

func TestBusDeliversNextFrame(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev EntityCreated) { got = append(got, int(ev.Entity.Index())) })

	Emit(b, EntityCreated{Entity: ecs.NewEntityID(7, 0, 0)})
	if n := b.DispatchAll(); n != 0 || len(got) != 0 {
		t.Fatalf("event delivered before swap: %d", n)
	}
	if b.Pending() != 1 {
		t.Fatalf("pending = %d", b.Pending())
	}
	b.SwapBuffers()
	if n := b.DispatchAll(); n != 1 || len(got) != 1 || got[0] != 7 {
		t.Fatalf("got = %v", got)
	}
	b.SwapBuffers()
	if n := b.DispatchAll(); n != 0 {
		t.Fatalf("stale events redelivered: %d", n)
	}
}

func TestWorldObserverEmits(t *testing.T) {
	b := NewBus()
	w := ecs.NewWorld(ecs.WithObserver(WorldObserver{Bus: b}))
	var pools []string
	created, destroyed := 0, 0
	Subscribe(b, func(ev PoolCreated) { pools = append(pools, ev.Name) })
	Subscribe(b, func(EntityCreated) { created++ })
	Subscribe(b, func(EntityDestroyed) { destroyed++ })

	pid, err := w.CreateEntityPool("Bubble_Pool", 4, ecs.NewComponentType[tagged]())
	if err != nil {
		t.Fatal(err)
	}
	ids, _ := w.CreateEntities(pid, 3)
	_ = w.DestroyEntity(ids[1])

	b.SwapBuffers()
	b.DispatchAll()
	if len(pools) != 1 || pools[0] != "Bubble_Pool" || created != 3 || destroyed != 1 {
		t.Fatalf("pools=%v created=%d destroyed=%d", pools, created, destroyed)
	}
}
