// schemadump prints a pool schema document and checks it against a prefab
// directory: every stored fingerprint is recomputed, and every prefab must
// name a known pool with a matching fingerprint.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/l1jgo/poolecs/internal/prefab"
	"github.com/l1jgo/poolecs/internal/schema"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: schemadump <schema.yaml> [prefab_dir]")
		os.Exit(1)
	}

	doc, err := schema.Load(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	problems := dump(doc)

	if len(os.Args) > 2 {
		lib, err := prefab.LoadDir(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		problems += checkPrefabs(doc, lib)
	}

	if problems > 0 {
		fmt.Fprintf(os.Stderr, "%d problem(s)\n", problems)
		os.Exit(2)
	}
}

func dump(doc *schema.Document) int {
	pools := append([]schema.Pool(nil), doc.Pools...)
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })

	problems := 0
	for _, p := range pools {
		fmt.Printf("pool %d %s capacity=%d fingerprint=%s\n", p.ID, p.Name, p.Capacity, p.Fingerprint)
		for _, c := range p.Components {
			fmt.Printf("  [%2d] %s\n", c.Index, c.Name)
		}
		if want := schema.Fingerprint(p.Name, p.Components); want != p.Fingerprint {
			fmt.Printf("  ! fingerprint mismatch, recomputed %s\n", want)
			problems++
		}
	}
	return problems
}

func checkPrefabs(doc *schema.Document, lib *prefab.Library) int {
	problems := 0
	for _, name := range lib.Names() {
		p, _ := lib.Get(name)
		entry, err := doc.Pool(p.Pool)
		switch {
		case err != nil:
			fmt.Printf("prefab %s: %v\n", name, err)
			problems++
		case p.Fingerprint != "" && p.Fingerprint != entry.Fingerprint:
			fmt.Printf("prefab %s: pool %s changed since it was saved\n", name, p.Pool)
			problems++
		default:
			fmt.Printf("prefab %s -> %s (%d components)\n", name, p.Pool, len(p.Components))
		}
	}
	return problems
}
