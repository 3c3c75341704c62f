package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const counterSrc = `
function update_counter(self, dt)
  self.ticks = (self.ticks or 0) + 1
  self.elapsed = (self.elapsed or 0) + dt
end

function update_broken(self, dt)
  error("boom")
end
`

func newEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "demo"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "demo", "counter.lua"), []byte(counterSrc), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngineLoadsNestedScripts(t *testing.T) {
	e := newEngine(t)
	if !e.HasFunction("update_counter") {
		t.Fatal("update_counter not loaded")
	}
	if e.HasFunction("update_missing") {
		t.Error("missing function reported")
	}
	if err := e.DoString(`x = API_VERSION`); err != nil {
		t.Fatal(err)
	}
}

func TestScriptComponentUpdates(t *testing.T) {
	e := newEngine(t)
	scriptType := ecs.NewComponentType[Script](
		ecs.WithName[Script]("Script"),
		ecs.WithConstructor(func(s *Script) { s.Attach(e) }),
	)
	w := ecs.NewWorld()
	pid, err := w.CreateEntityPool("Scripted", 4, scriptType)
	if err != nil {
		t.Fatal(err)
	}
	good, _ := w.CreateEntityWithComponents(pid, scriptType)
	bad, _ := w.CreateEntityWithComponents(pid, scriptType)
	gs, _ := ecs.Get[Script](w, good)
	gs.Name = "counter"
	bs, _ := ecs.Get[Script](w, bad)
	bs.Name = "broken"

	for i := 0; i < 3; i++ {
		w.UpdateComponents(500 * time.Millisecond)
	}
	if gs.Number("ticks") != 3 || gs.Number("elapsed") != 1.5 {
		t.Fatalf("ticks=%v elapsed=%v", gs.Number("ticks"), gs.Number("elapsed"))
	}
	if !bs.failed {
		t.Error("broken script not disabled")
	}

	out, err := w.SerializeEntity(good)
	if err != nil || len(out) != 1 {
		t.Fatalf("serialize = %v, %v", out, err)
	}
	var doc scriptDoc
	if err := out[0].Node.Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Name != "counter" || fmt.Sprint(doc.Vars["ticks"]) != "3" {
		t.Errorf("doc = %+v", doc)
	}

	copied, _ := w.CreateEntityWithComponents(pid, scriptType)
	if err := w.LoadComponent(copied, scriptType, out[0].Node); err != nil {
		t.Fatal(err)
	}
	cs, _ := ecs.Get[Script](w, copied)
	if cs.Name != "counter" || cs.Number("ticks") != 3 {
		t.Errorf("loaded script = %s ticks %v", cs.Name, cs.Number("ticks"))
	}
}

func TestScriptWithoutEngineIsInert(t *testing.T) {
	var s Script
	s.Name = "counter"
	s.Update(time.Second)
	var n yaml.Node
	if !s.Serialize(&n) {
		t.Fatal("serialize failed")
	}
	if !s.Load(&n) {
		t.Fatal("load failed")
	}
}
