package component

// PlayerController holds the latest horizontal input, -1, 0 or 1. PlayerSystem
// moves the entity and keeps it inside the screen.
type PlayerController struct {
	Input int
	Speed float64
}

func (p *PlayerController) Init() { p.Speed = 20 }
