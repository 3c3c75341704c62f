// Package prefab saves an entity's components to a YAML document and builds
// new entities from it. Component local indices are never stored; they are
// resolved by name through the schema document when the prefab is
// instantiated, and the pool fingerprint guards against layout drift.
package prefab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/schema"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Ext is the file extension of prefab documents.
const Ext = ".prefab.yaml"

var (
	ErrSchemaDrift = errors.New("prefab pool layout differs from the schema")
	ErrEmpty       = errors.New("prefab has no components")
)

// Component is one enabled component. Fields is nil for components that
// cannot be serialized.
type Component struct {
	Name   string     `yaml:"name"`
	Fields *yaml.Node `yaml:"fields,omitempty"`
}

type Prefab struct {
	Name        string      `yaml:"name"`
	Pool        string      `yaml:"pool"`
	Fingerprint string      `yaml:"fingerprint"`
	Components  []Component `yaml:"components"`
}

// FromEntity records every enabled component of id. doc supplies the pool's
// fingerprint.
func FromEntity(w *ecs.World, doc *schema.Document, id ecs.EntityID, name string) (*Prefab, error) {
	if w.IsEntityDeleted(id) {
		return nil, fmt.Errorf("prefab %s from %s: %w", name, id, ecs.ErrEntityDestroyed)
	}
	pool, err := w.EntityPool(id.Pool())
	if err != nil {
		return nil, err
	}
	entry, err := doc.Pool(pool.Name())
	if err != nil {
		return nil, fmt.Errorf("prefab %s: %w", name, err)
	}
	fields, err := w.SerializeEntity(id)
	if err != nil {
		return nil, fmt.Errorf("prefab %s: %w", name, err)
	}
	byIndex := make(map[ecs.LocalIndex]*yaml.Node, len(fields))
	for _, f := range fields {
		byIndex[f.Index] = f.Node
	}

	p := &Prefab{
		Name:        schema.Normalize(name),
		Pool:        entry.Name,
		Fingerprint: entry.Fingerprint,
	}
	for li := ecs.LocalIndex(0); int(li) < pool.ComponentCount(); li++ {
		if !pool.HasComponent(id.Index(), li) {
			continue
		}
		gid, _ := pool.GlobalID(li)
		t, _ := w.Registry().Type(gid)
		p.Components = append(p.Components, Component{Name: t.Name(), Fields: byIndex[li]})
	}
	return p, nil
}

// Instantiate creates an entity in the prefab's pool and assigns and loads
// every recorded component. On any failure the new entity is destroyed.
func (p *Prefab) Instantiate(w *ecs.World, doc *schema.Document) (ecs.EntityID, error) {
	if len(p.Components) == 0 {
		return ecs.InvalidEntityID, fmt.Errorf("prefab %s: %w", p.Name, ErrEmpty)
	}
	entry, err := doc.Pool(p.Pool)
	if err != nil {
		return ecs.InvalidEntityID, fmt.Errorf("prefab %s: %w", p.Name, err)
	}
	if p.Fingerprint != "" && p.Fingerprint != entry.Fingerprint {
		return ecs.InvalidEntityID, fmt.Errorf("prefab %s pool %s: %w", p.Name, p.Pool, ErrSchemaDrift)
	}
	pool, ok := w.PoolByName(entry.Name)
	if !ok {
		return ecs.InvalidEntityID, fmt.Errorf("prefab %s: %w: %s", p.Name, ecs.ErrUnknownPool, entry.Name)
	}
	types := make([]*ecs.ComponentType, len(p.Components))
	for i, c := range p.Components {
		li, err := doc.IndexOf(entry.Name, c.Name)
		if err != nil {
			return ecs.InvalidEntityID, fmt.Errorf("prefab %s: %w", p.Name, err)
		}
		gid, ok := pool.GlobalID(li)
		if !ok {
			return ecs.InvalidEntityID, fmt.Errorf("prefab %s component %s: %w", p.Name, c.Name, ErrSchemaDrift)
		}
		types[i], _ = w.Registry().Type(gid)
	}

	id, err := w.CreateEntity(pool.ID())
	if err != nil {
		return ecs.InvalidEntityID, fmt.Errorf("prefab %s: %w", p.Name, err)
	}
	if err := p.fill(w, id, types); err != nil {
		err = multierr.Append(err, w.DestroyEntity(id))
		return ecs.InvalidEntityID, fmt.Errorf("prefab %s: %w", p.Name, err)
	}
	return id, nil
}

func (p *Prefab) fill(w *ecs.World, id ecs.EntityID, types []*ecs.ComponentType) error {
	for i, t := range types {
		if _, err := w.AssignComponent(id, t); err != nil {
			return err
		}
		if f := p.Components[i].Fields; f != nil && t.Has(ecs.CapSerialize) {
			if err := w.LoadComponent(id, t, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the prefab to dir/<name>.prefab.yaml and returns the path.
func (p *Prefab) Save(dir string) (string, error) {
	data, err := p.Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prefab dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, p.Name+Ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write prefab %s: %w", path, err)
	}
	return path, nil
}

func (p *Prefab) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode prefab %s: %w", p.Name, err)
	}
	return data, nil
}

// Parse decodes a prefab document.
func Parse(data []byte) (*Prefab, error) {
	var p Prefab
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prefab: %w", err)
	}
	p.Name = schema.Normalize(p.Name)
	p.Pool = schema.Normalize(p.Pool)
	return &p, nil
}

// Load reads a prefab file.
func Load(path string) (*Prefab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
