// Package schema keeps the process-wide record of pool layouts: every pool a
// World creates, with the local index of each component type. Prefabs resolve
// component indices through it when they are loaded back.
package schema

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("schema entry not found")

// Pool is one pool's layout as stored in the document.
type Pool struct {
	Name        string      `yaml:"name"`
	ID          ecs.PoolID  `yaml:"id"`
	Capacity    int         `yaml:"capacity"`
	Fingerprint string      `yaml:"fingerprint"`
	Components  []Component `yaml:"components"`
}

type Component struct {
	Name  string         `yaml:"name"`
	Index ecs.LocalIndex `yaml:"index"`
}

// Document is the YAML schema file. It implements ecs.SchemaWriter; each
// write replaces the entry with the same pool name and, when the document
// has a path, saves the file.
type Document struct {
	mu    sync.Mutex
	path  string
	Pools []Pool `yaml:"pools"`
}

// New returns an empty document saved to path on every write. An empty path
// keeps the document in memory.
func New(path string) *Document {
	return &Document{path: path}
}

// Load reads a document from path. A missing file yields an empty document.
func Load(path string) (*Document, error) {
	d := New(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return d, nil
}

// Normalize puts names in NFC so that visually equal names compare equal.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Fingerprint hashes a pool's name and component layout. Two pools with the
// same fingerprint agree on every local index.
func Fingerprint(name string, components []Component) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(Normalize(name)))
	for _, c := range components {
		h.Write([]byte{0, byte(c.Index)})
		h.Write([]byte(Normalize(c.Name)))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// FromPoolSchema converts the World's record into a document entry.
func FromPoolSchema(s ecs.PoolSchema) Pool {
	p := Pool{
		Name:       Normalize(s.Name),
		ID:         s.ID,
		Capacity:   s.Capacity,
		Components: make([]Component, len(s.Components)),
	}
	for i, c := range s.Components {
		p.Components[i] = Component{Name: Normalize(c.Name), Index: c.Index}
	}
	p.Fingerprint = Fingerprint(p.Name, p.Components)
	return p
}

func (d *Document) WritePoolSchema(s ecs.PoolSchema) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := FromPoolSchema(s)
	if i := slices.IndexFunc(d.Pools, func(e Pool) bool { return e.Name == p.Name }); i >= 0 {
		d.Pools[i] = p
	} else {
		d.Pools = append(d.Pools, p)
	}
	if d.path == "" {
		return nil
	}
	return d.save()
}

// Save writes the document to its path.
func (d *Document) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save()
}

func (d *Document) save() error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if dir := filepath.Dir(d.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("schema dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write schema %s: %w", d.path, err)
	}
	return nil
}

// Pool finds a pool entry by name.
func (d *Document) Pool(name string) (Pool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name = Normalize(name)
	for _, p := range d.Pools {
		if p.Name == name {
			return p, nil
		}
	}
	return Pool{}, fmt.Errorf("pool %q: %w", name, ErrNotFound)
}

// IndexOf resolves a component name to its local index inside a pool.
func (d *Document) IndexOf(pool, component string) (ecs.LocalIndex, error) {
	p, err := d.Pool(pool)
	if err != nil {
		return ecs.InvalidLocalIndex, err
	}
	component = Normalize(component)
	for _, c := range p.Components {
		if c.Name == component {
			return c.Index, nil
		}
	}
	return ecs.InvalidLocalIndex, fmt.Errorf("component %q in pool %q: %w", component, p.Name, ErrNotFound)
}

// Len is the number of pools recorded.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Pools)
}

var _ ecs.SchemaWriter = (*Document)(nil)
