package ecs

import (
	"fmt"
	"reflect"
)

// lookup finds the descriptor registered for T.
func lookup[T any](w *World) (*ComponentType, ComponentID, error) {
	rt := reflect.TypeFor[T]()
	id, ok := w.registry.lookupType(rt)
	if !ok {
		return nil, InvalidComponentID, fmt.Errorf("%s: %w", rt, ErrComponentNotRegistered)
	}
	t, _ := w.registry.Type(id)
	return t, id, nil
}

// IDOf returns the global id of T.
func IDOf[T any](w *World) (ComponentID, bool) {
	return w.registry.lookupType(reflect.TypeFor[T]())
}

// MaskOf returns a single-type query mask for T.
func MaskOf[T any](w *World) (PoolMask, error) {
	_, id, err := lookup[T](w)
	if err != nil {
		return PoolMask{}, err
	}
	var m PoolMask
	m.Set(id)
	return m, nil
}

// Assign default-constructs a T on id.
func Assign[T any](w *World, id EntityID) (*T, error) {
	t, _, err := lookup[T](w)
	if err != nil {
		return nil, err
	}
	c, err := w.AssignComponent(id, t)
	if err != nil {
		return nil, err
	}
	return c.(*T), nil
}

// AssignCopy copy-constructs a T on id from src.
func AssignCopy[T any](w *World, id EntityID, src *T) (*T, error) {
	t, _, err := lookup[T](w)
	if err != nil {
		return nil, err
	}
	c, err := w.AssignComponentByCopy(id, t, src)
	if err != nil {
		return nil, err
	}
	return c.(*T), nil
}

// Get returns id's live T.
func Get[T any](w *World, id EntityID) (*T, error) {
	t, _, err := lookup[T](w)
	if err != nil {
		return nil, err
	}
	c, err := w.GetComponent(id, t)
	if err != nil {
		return nil, err
	}
	return c.(*T), nil
}

func Has[T any](w *World, id EntityID) bool {
	t, _, err := lookup[T](w)
	return err == nil && w.HasComponent(id, t)
}

func Remove[T any](w *World, id EntityID) error {
	t, _, err := lookup[T](w)
	if err != nil {
		return err
	}
	return w.RemoveComponent(id, t)
}
