package ecs

// Observer is told about structural changes made through a World. Calls are
// made synchronously, after the change is complete.
type Observer interface {
	PoolCreated(id PoolID, name string)
	EntityCreated(id EntityID)
	EntityDestroyed(id EntityID)
}

type nopObserver struct{}

func (nopObserver) PoolCreated(PoolID, string) {}
func (nopObserver) EntityCreated(EntityID)     {}
func (nopObserver) EntityDestroyed(EntityID)   {}
