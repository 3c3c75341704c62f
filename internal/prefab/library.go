package prefab

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/l1jgo/poolecs/internal/schema"
)

// Library is the set of prefabs found in one directory, keyed by name.
type Library struct {
	prefabs map[string]*Prefab
}

func NewLibrary() *Library {
	return &Library{prefabs: make(map[string]*Prefab)}
}

// LoadDir loads every *.prefab.yaml file in dir. A missing directory yields
// an empty library.
func LoadDir(dir string) (*Library, error) {
	lib := NewLibrary()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return lib, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefab dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		p, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		lib.Add(p)
	}
	return lib, nil
}

func (l *Library) Add(p *Prefab) { l.prefabs[p.Name] = p }

func (l *Library) Get(name string) (*Prefab, bool) {
	p, ok := l.prefabs[schema.Normalize(name)]
	return p, ok
}

func (l *Library) Len() int { return len(l.prefabs) }

// Names returns the prefab names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.prefabs))
	for n := range l.prefabs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
