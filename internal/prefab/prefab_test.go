package prefab

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/schema"
)

type fixture struct {
	w   *ecs.World
	doc *schema.Document
	cat *component.Catalogue
	bub ecs.PoolID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	doc := schema.New("")
	w := ecs.NewWorld(ecs.WithSchemaWriter(doc))
	cat := component.NewCatalogue(nil, nil)
	bub, err := w.CreateEntityPool("Bubble_Pool", 8, cat.Transform, cat.Rigidbody, cat.Collider, cat.Sprite, cat.Player)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{w: w, doc: doc, cat: cat, bub: bub}
}

func (f fixture) bubble(t *testing.T) ecs.EntityID {
	t.Helper()
	id, err := f.w.CreateEntityWithComponents(f.bub, f.cat.Transform, f.cat.Rigidbody, f.cat.Sprite, f.cat.Player)
	if err != nil {
		t.Fatal(err)
	}
	tr, _ := ecs.Get[component.Transform2D](f.w, id)
	tr.X, tr.Y = 12, 70
	rb, _ := ecs.Get[component.Rigidbody2D](f.w, id)
	rb.VX, rb.GravityScale = -3, 0.5
	sp, _ := ecs.Get[component.Sprite](f.w, id)
	sp.Glyph, sp.Color = "o", "red"
	return id
}

// go test -run ^TestPrefabRoundTrip$ . -count 1
func TestPrefabRoundTrip(t *testing.T) {
	f := newFixture(t)
	src := f.bubble(t)

	p, err := FromEntity(f.w, f.doc, src, "Red_Bubble")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Components) != 4 {
		t.Fatalf("components = %+v", p.Components)
	}
	for _, c := range p.Components {
		if c.Name == "PlayerController" && c.Fields != nil {
			t.Error("non-serializable component carries fields")
		}
	}

	dir := t.TempDir()
	path, err := p.Save(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "Red_Bubble"+Ext {
		t.Errorf("path = %s", path)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	id, err := loaded.Instantiate(f.w, f.doc)
	if err != nil {
		t.Fatal(err)
	}
	if id == src {
		t.Fatal("instantiate returned the source entity")
	}
	tr, err := ecs.Get[component.Transform2D](f.w, id)
	if err != nil || tr.X != 12 || tr.Y != 70 {
		t.Errorf("transform = %+v, %v", tr, err)
	}
	rb, _ := ecs.Get[component.Rigidbody2D](f.w, id)
	if rb.VX != -3 || rb.GravityScale != 0.5 {
		t.Errorf("rigidbody = %+v", rb)
	}
	if !ecs.Has[component.PlayerController](f.w, id) {
		t.Error("field-less component not assigned")
	}
	if ecs.Has[component.Collider2D](f.w, id) {
		t.Error("component missing from the prefab was assigned")
	}

	lib, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Get("Red_Bubble"); !ok || lib.Len() != 1 {
		t.Errorf("library = %v", lib.Names())
	}
}

func TestInstantiateDetectsDrift(t *testing.T) {
	f := newFixture(t)
	p, err := FromEntity(f.w, f.doc, f.bubble(t), "b")
	if err != nil {
		t.Fatal(err)
	}
	p.Fingerprint = "stale"
	before := alive(t, f)
	if _, err := p.Instantiate(f.w, f.doc); !errors.Is(err, ErrSchemaDrift) {
		t.Fatalf("err = %v", err)
	}
	if after := alive(t, f); after != before {
		t.Errorf("alive entities %d -> %d", before, after)
	}
}

func TestInstantiateIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	p, err := FromEntity(f.w, f.doc, f.bubble(t), "b")
	if err != nil {
		t.Fatal(err)
	}
	for i := range p.Components {
		if p.Components[i].Name == "Sprite" {
			// a sprite without a glyph fails to load
			p.Components[i].Fields.Content = nil
		}
	}
	before := alive(t, f)
	if _, err := p.Instantiate(f.w, f.doc); !errors.Is(err, ecs.ErrSerializeFailed) {
		t.Fatalf("err = %v", err)
	}
	if after := alive(t, f); after != before {
		t.Errorf("alive entities %d -> %d", before, after)
	}

	unknown := &Prefab{Name: "x", Pool: "Nope_Pool", Components: []Component{{Name: "Sprite"}}}
	if _, err := unknown.Instantiate(f.w, f.doc); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("unknown pool err = %v", err)
	}
	if _, err := (&Prefab{Name: "e"}).Instantiate(f.w, f.doc); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty err = %v", err)
	}
}

func alive(t *testing.T, f fixture) int {
	t.Helper()
	p, err := f.w.EntityPool(f.bub)
	if err != nil {
		t.Fatal(err)
	}
	return p.Alive()
}

func TestFromDestroyedEntity(t *testing.T) {
	f := newFixture(t)
	id := f.bubble(t)
	if err := f.w.DestroyEntity(id); err != nil {
		t.Fatal(err)
	}
	if _, err := FromEntity(f.w, f.doc, id, "gone"); !errors.Is(err, ecs.ErrEntityDestroyed) {
		t.Fatalf("err = %v", err)
	}
}
