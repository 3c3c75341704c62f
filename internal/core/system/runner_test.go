package system

import (
	"slices"
	"testing"
	"time"
)

type recorder struct {
	phase Phase
	name  string
	log   *[]string
}

func (p recorder) Phase() Phase { return p.phase }

func (p recorder) Update(time.Duration) { *p.log = append(*p.log, p.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseUpdate, "update-a", &log})
	r.Register(recorder{PhaseInput, "input", &log})
	r.Register(recorder{PhaseUpdate, "update-b", &log})
	r.Register(recorder{PhaseRender, "render", &log})

	r.Tick(time.Millisecond)
	want := []string{"input", "update-a", "update-b", "render", "cleanup"}
	if !slices.Equal(log, want) {
		t.Fatalf("order = %v, want %v", log, want)
	}
	if r.Frames() != 1 {
		t.Errorf("frames = %d", r.Frames())
	}

	log = log[:0]
	r.TickPhase(PhaseUpdate, time.Millisecond)
	if !slices.Equal(log, []string{"update-a", "update-b"}) {
		t.Errorf("TickPhase ran %v", log)
	}
	if r.Frames() != 1 {
		t.Error("TickPhase counted a frame")
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseRender.String() != "render" || Phase(99).String() != "unknown" {
		t.Fatal("Phase.String")
	}
}
