package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrEntityDestroyed        = errors.New("entity destroyed")
	ErrComponentNotRegistered = errors.New("component type not registered in pool")
	ErrComponentEnabled       = errors.New("component already enabled")
	ErrComponentNotEnabled    = errors.New("component not enabled")
	ErrSlotOutOfRange         = errors.New("slot index out of range")
	ErrPoolFull               = errors.New("entity pool full")
	ErrVersionExhausted       = errors.New("slot version exhausted")
	ErrMissingCapability      = errors.New("missing capability")
	ErrWrongPool              = errors.New("entity belongs to another pool")
	ErrUnknownPool            = errors.New("unknown entity pool")
	ErrAmbiguousTransform     = errors.New("pool registers more than one transform component")
	ErrTooManyComponents      = errors.New("too many component types")
	ErrTooManyPools           = errors.New("too many entity pools")
	ErrDuplicatePool          = errors.New("entity pool name already used")
	ErrNoComponents           = errors.New("entity pool needs at least one component type")
	ErrDuplicateComponent     = errors.New("component type listed twice")
	ErrInvalidCapacity        = errors.New("invalid pool capacity")
	ErrDuplicateEntity        = errors.New("entity listed twice")
	ErrTypeMismatch           = errors.New("value does not match component type")
	ErrSerializeFailed        = errors.New("component reported a failed field")
)

// CapabilityError reports a call into a function table slot the component
// type left empty.
type CapabilityError struct {
	Type       string
	Capability Capability
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s has no %s", ErrMissingCapability, e.Type, e.Capability)
}

func (e *CapabilityError) Unwrap() error { return ErrMissingCapability }
