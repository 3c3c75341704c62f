package component

import (
	"time"

	"gopkg.in/yaml.v3"
)

// ScoreCounter measures how long the current run has lasted. Only the best
// score is persisted.
type ScoreCounter struct {
	Current time.Duration
	Best    time.Duration
	Running bool
}

func (s *ScoreCounter) Start() { s.Running = true }

// End stops the run and resets the current score.
func (s *ScoreCounter) End() {
	s.Running = false
	s.Current = 0
}

func (s *ScoreCounter) Update(dt time.Duration) {
	if !s.Running {
		return
	}
	s.Current += dt
	if s.Current > s.Best {
		s.Best = s.Current
	}
}

type scoreDoc struct {
	Best float64 `yaml:"best_seconds"`
}

func (s *ScoreCounter) Serialize(n *yaml.Node) bool {
	return n.Encode(scoreDoc{Best: s.Best.Seconds()}) == nil
}

func (s *ScoreCounter) Load(n *yaml.Node) bool {
	var doc scoreDoc
	if err := n.Decode(&doc); err != nil {
		return false
	}
	s.Best = time.Duration(doc.Best * float64(time.Second))
	return true
}
