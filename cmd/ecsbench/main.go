// Profiling:
// go build ./cmd/ecsbench
// ./ecsbench -mode cpu && go tool pprof -http=":8000" ./ecsbench cpu.pprof

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/pkg/profile"
)

type pos struct{ X, Y float64 }

func (p *pos) Position() (float64, float64) { return p.X, p.Y }

type vel struct{ DX, DY float64 }

func (v *vel) Update(dt time.Duration) {}

var (
	posType = ecs.NewComponentType[pos](ecs.WithName[pos]("pos"))
	velType = ecs.NewComponentType[vel](ecs.WithName[vel]("vel"))
)

func main() {
	mode := flag.String("mode", "mem", "profile mode: cpu or mem")
	rounds := flag.Int("rounds", 50, "worlds to build")
	iters := flag.Int("iters", 1000, "create/iterate/destroy cycles per world")
	entities := flag.Int("entities", 1000, "entities per pool")
	flag.Parse()

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(1)
	}
	start := time.Now()
	visited := run(*rounds, *iters, *entities)
	p.Stop()
	fmt.Printf("visited %d entities in %s\n", visited, time.Since(start))
}

func run(rounds, iters, n int) int {
	visited := 0
	for range rounds {
		w := ecs.NewWorld()
		a, _ := w.CreateEntityPool("a", n, posType, velType)
		b, _ := w.CreateEntityPool("b", n, posType)
		mask, _ := w.Mask(posType)
		gid, _ := w.ComponentID(posType)
		for range iters {
			for _, pool := range []ecs.PoolID{a, b} {
				ids, _ := w.CreateEntities(pool, n)
				_ = w.AssignComponentToEntities(ids, posType)
			}
			for it := w.Begin(mask); !it.Done(); it.Next() {
				c, _ := it.Component(gid)
				c.(*pos).X++
				visited++
			}
			w.UpdateComponents(time.Millisecond)
			_ = w.DestroyAllEntities(a)
			_ = w.DestroyAllEntities(b)
		}
	}
	return visited
}
