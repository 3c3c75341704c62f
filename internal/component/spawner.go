package component

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Spawner counts down and accumulates pending spawns; SpawnSystem turns them
// into entities built from one of Prefabs.
type Spawner struct {
	Interval time.Duration
	Prefabs  []string

	timer   time.Duration
	pending int
}

func (s *Spawner) Update(dt time.Duration) {
	if s.Interval <= 0 {
		return
	}
	s.timer -= dt
	for s.timer <= 0 {
		s.timer += s.Interval
		s.pending++
	}
}

// Take returns and clears the number of spawns due.
func (s *Spawner) Take() int {
	n := s.pending
	s.pending = 0
	return n
}

type spawnerDoc struct {
	Interval string   `yaml:"interval"`
	Prefabs  []string `yaml:"prefabs"`
}

func (s *Spawner) Serialize(n *yaml.Node) bool {
	return n.Encode(spawnerDoc{Interval: s.Interval.String(), Prefabs: s.Prefabs}) == nil
}

func (s *Spawner) Load(n *yaml.Node) bool {
	var doc spawnerDoc
	if err := n.Decode(&doc); err != nil {
		return false
	}
	d, err := time.ParseDuration(doc.Interval)
	if err != nil {
		return false
	}
	s.Interval, s.Prefabs = d, doc.Prefabs
	s.timer, s.pending = d, 0
	return true
}
