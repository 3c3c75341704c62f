package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/config"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	"github.com/l1jgo/poolecs/internal/core/event"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"github.com/l1jgo/poolecs/internal/data"
	"github.com/l1jgo/poolecs/internal/persist"
	"github.com/l1jgo/poolecs/internal/prefab"
	"github.com/l1jgo/poolecs/internal/render"
	"github.com/l1jgo/poolecs/internal/schema"
	"github.com/l1jgo/poolecs/internal/scripting"
	"github.com/l1jgo/poolecs/internal/system"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               poolecs demo                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       pooled entity component system      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-runewidth.StringWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-runewidth.StringWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Demo ──────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path("config/demo.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Dir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Dir), profile.NoShutdownHook).Stop()
	}

	printBanner()

	// 3. Optional PostgreSQL mirror of schema and prefabs
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc, err := schema.Load(cfg.Paths.SchemaFile)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	writers := ecs.MultiSchemaWriter{doc}
	var prefabRepo *persist.PrefabRepo

	if cfg.Database.DSN != "" {
		printSection("database")
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", int(version))
		writers = append(writers, persist.NewSchemaRepo(db))
		prefabRepo = persist.NewPrefabRepo(db)
		fmt.Println()
	}

	// 4. Data: pool table, prefabs, scripts
	printSection("data")
	table, err := data.LoadPoolTable(cfg.Paths.PoolFile, cfg.World.DefaultCapacity)
	if err != nil {
		return fmt.Errorf("load pool table: %w", err)
	}
	printStat("pool definitions", table.Count())

	lib, err := prefab.LoadDir(cfg.Paths.PrefabDir)
	if err != nil {
		return fmt.Errorf("load prefabs: %w", err)
	}
	if prefabRepo != nil {
		if err := prefabRepo.LoadAll(ctx, lib); err != nil {
			return fmt.Errorf("load stored prefabs: %w", err)
		}
	}
	printStat("prefabs", lib.Len())

	luaEngine, err := scripting.NewEngine(cfg.Paths.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua scripts loaded")
	fmt.Println()

	// 5. Terminal canvas
	var canvas *render.Canvas
	bounds := system.Bounds{W: float64(cfg.Render.Width), H: float64(cfg.Render.Height)}
	if cfg.Render.Enabled {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("screen init: %w", err)
		}
		canvas = render.NewCanvas(screen)
		defer canvas.Fini()
		w, h := canvas.Size()
		bounds = system.Bounds{W: float64(w), H: float64(h)}
	}

	// 6. World and scene
	bus := event.NewBus()
	world := ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithSchemaWriter(writers),
		ecs.WithObserver(event.WorldObserver{Bus: bus}),
		ecs.WithPoolLimit(cfg.World.MaxPools),
	)
	destroyed := 0
	event.Subscribe(bus, func(ev event.PoolCreated) {
		log.Debug("pool created", zap.String("pool", ev.Name), zap.Uint16("id", uint16(ev.Pool)))
	})
	event.Subscribe(bus, func(event.EntityDestroyed) { destroyed++ })

	types := component.NewCatalogue(canvas, luaEngine)
	scene, err := system.NewScene(world, types, doc, lib, table, system.SceneConfig{
		Bounds:        bounds,
		SpawnInterval: cfg.Game.SpawnInterval.Duration,
		BubblePrefabs: cfg.Game.BubblePrefabs,
		Script:        cfg.Game.Script,
		Seed:          cfg.Game.Seed,
	}, log)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	// 7. Systems
	quitCh := make(chan struct{})
	quit := func() {
		select {
		case <-quitCh:
		default:
			close(quitCh)
		}
	}
	var snapshotStore system.PrefabStore
	if prefabRepo != nil {
		snapshotStore = prefabRepo
	}
	snapshot := system.NewSnapshotSystem(scene, scene.Controller, "Background_Snapshot",
		cfg.Paths.PrefabDir, snapshotStore, log, cfg.Loop.SnapshotEvery)

	runner := coresys.NewRunner()
	if canvas != nil {
		commands := make(chan system.Command, 32)
		go pollKeys(canvas.Screen(), commands)
		runner.Register(system.NewInputSystem(scene, commands, 16, quit, log))
		runner.Register(system.NewRenderSystem(world, canvas, scene))
	}
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewUpdateSystem(world))
	runner.Register(system.NewSpawnSystem(scene, log))
	runner.Register(system.NewPhysicsSystem(scene))
	runner.Register(system.NewLifetimeSystem(world))
	runner.Register(system.NewPlayerSystem(scene, log))
	runner.Register(snapshot)
	runner.Register(system.NewCleanupSystem(world, log))

	// 8. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	tick := cfg.Loop.TickRate.Duration
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	printSection("ready")
	printStat("pools", world.PoolCount())
	printStat("systems", runner.Len())
	printReady(fmt.Sprintf("frame loop (tick: %s)", tick))
	fmt.Println()

loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(tick)
			if canvas == nil && !scene.Running() {
				if err := scene.Restart(); err != nil {
					return fmt.Errorf("restart: %w", err)
				}
			}
			if cfg.Loop.MaxFrames > 0 && runner.Frames() >= uint64(cfg.Loop.MaxFrames) {
				break loop
			}
		case <-quitCh:
			break loop
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			break loop
		}
	}

	if err := snapshot.Snapshot(); err != nil {
		log.Warn("final snapshot", zap.Error(err))
	}
	log.Info("demo stopped",
		zap.Uint64("frames", runner.Frames()),
		zap.Int("destroyed", destroyed),
		zap.Duration("best", scene.Score().Best),
	)
	return nil
}

// pollKeys forwards key presses until the screen is finalised.
func pollKeys(screen tcell.Screen, out chan<- system.Command) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if cmd := system.KeyCommand(ev); cmd != system.CmdNone {
				select {
				case out <- cmd:
				default:
				}
			}
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zapCfg.Build()
}
