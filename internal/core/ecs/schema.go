package ecs

import "go.uber.org/multierr"

// ComponentSchema records where a component type lives inside a pool.
type ComponentSchema struct {
	Name  string     `yaml:"name"`
	Index LocalIndex `yaml:"index"`
}

// PoolSchema describes a pool's layout: its name, id and the local index of
// every registered component type. It never carries entity data.
type PoolSchema struct {
	Name       string            `yaml:"name"`
	ID         PoolID            `yaml:"id"`
	Capacity   int               `yaml:"capacity"`
	Components []ComponentSchema `yaml:"components"`
}

// IndexOf returns the local index recorded for a component name.
func (s PoolSchema) IndexOf(name string) (LocalIndex, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c.Index, true
		}
	}
	return InvalidLocalIndex, false
}

// SchemaWriter receives one PoolSchema per pool the World creates.
type SchemaWriter interface {
	WritePoolSchema(s PoolSchema) error
}

// SchemaWriterFunc adapts a function to SchemaWriter.
type SchemaWriterFunc func(PoolSchema) error

func (f SchemaWriterFunc) WritePoolSchema(s PoolSchema) error { return f(s) }

// MultiSchemaWriter writes to every writer and combines their errors.
type MultiSchemaWriter []SchemaWriter

func (m MultiSchemaWriter) WritePoolSchema(s PoolSchema) error {
	var err error
	for _, w := range m {
		err = multierr.Append(err, w.WritePoolSchema(s))
	}
	return err
}

func (p *EntityPool) schema() PoolSchema {
	s := PoolSchema{
		Name:       p.name,
		ID:         p.id,
		Capacity:   int(p.capacity),
		Components: make([]ComponentSchema, len(p.components)),
	}
	for i, cp := range p.components {
		s.Components[i] = ComponentSchema{Name: cp.typ.name, Index: LocalIndex(i)}
	}
	return s
}
