package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PoolEntry defines one entity pool: its name, fixed capacity and the
// component types it stores, by schema name and in local index order.
type PoolEntry struct {
	Name       string   `yaml:"name"`
	Capacity   int      `yaml:"capacity"`
	Components []string `yaml:"components"`
}

// PoolTable is the ordered list of pools a world is created with.
type PoolTable struct {
	pools  []PoolEntry
	byName map[string]int
}

// LoadPoolTable loads pools.yaml. A zero capacity falls back to
// defaultCapacity.
func LoadPoolTable(path string, defaultCapacity int) (*PoolTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool list: %w", err)
	}
	return ParsePoolTable(raw, defaultCapacity)
}

func ParsePoolTable(raw []byte, defaultCapacity int) (*PoolTable, error) {
	var doc struct {
		Pools []PoolEntry `yaml:"pools"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse pool list: %w", err)
	}
	t := &PoolTable{
		pools:  doc.Pools,
		byName: make(map[string]int, len(doc.Pools)),
	}
	for i := range t.pools {
		e := &t.pools[i]
		if e.Name == "" {
			return nil, fmt.Errorf("pool list entry %d: missing name", i)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("pool list: duplicate pool %q", e.Name)
		}
		if e.Capacity == 0 {
			e.Capacity = defaultCapacity
		}
		t.byName[e.Name] = i
	}
	return t, nil
}

// Get returns the entry for a pool name, or nil if none.
func (t *PoolTable) Get(name string) *PoolEntry {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return &t.pools[i]
}

// All returns the entries in file order.
func (t *PoolTable) All() []PoolEntry {
	return t.pools
}

// Count returns the total number of pools loaded.
func (t *PoolTable) Count() int {
	return len(t.pools)
}
