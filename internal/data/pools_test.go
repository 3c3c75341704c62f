package data

import (
	"os"
	"path/filepath"
	"testing"
)

const poolsYAML = `
pools:
  - name: Background_Pool
    capacity: 5
    components: [Transform2D, Sprite]
  - name: Bubble_Pool
    components: [Transform2D, Rigidbody2D]
`

// go test -run ^TestLoadPoolTable$ . -count 1
func TestLoadPoolTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.yaml")
	if err := os.WriteFile(path, []byte(poolsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadPoolTable(path, 100)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 2 || tbl.All()[0].Name != "Background_Pool" {
		t.Fatalf("pools = %+v", tbl.All())
	}
	if b := tbl.Get("Bubble_Pool"); b == nil || b.Capacity != 100 || b.Components[1] != "Rigidbody2D" {
		t.Errorf("bubble pool = %+v", b)
	}
	if tbl.Get("Nope") != nil {
		t.Error("unknown pool found")
	}
}

func TestParsePoolTableRejectsDuplicates(t *testing.T) {
	raw := []byte("pools:\n  - name: A\n  - name: A\n")
	if _, err := ParsePoolTable(raw, 1); err == nil {
		t.Fatal("duplicate pool accepted")
	}
	if _, err := ParsePoolTable([]byte("pools:\n  - capacity: 3\n"), 1); err == nil {
		t.Fatal("nameless pool accepted")
	}
}

func TestLoadPoolTableMissingFile(t *testing.T) {
	if _, err := LoadPoolTable(filepath.Join(t.TempDir(), "none.yaml"), 1); err == nil {
		t.Fatal("missing file loaded")
	}
}
