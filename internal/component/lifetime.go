package component

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Lifetime expires its entity after Remaining has elapsed. LifetimeSystem
// queues expired owners for destruction.
type Lifetime struct {
	Remaining time.Duration
}

func (l *Lifetime) Update(dt time.Duration) {
	if l.Remaining > 0 {
		l.Remaining = max(l.Remaining-dt, 0)
	}
}

func (l *Lifetime) Expired() bool { return l.Remaining <= 0 }

func (l *Lifetime) Serialize(n *yaml.Node) bool {
	return n.Encode(map[string]string{"remaining": l.Remaining.String()}) == nil
}

func (l *Lifetime) Load(n *yaml.Node) bool {
	var doc map[string]string
	if err := n.Decode(&doc); err != nil {
		return false
	}
	d, err := time.ParseDuration(doc["remaining"])
	if err != nil {
		return false
	}
	l.Remaining = d
	return true
}
