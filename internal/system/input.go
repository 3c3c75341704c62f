package system

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/poolecs/internal/component"
	"github.com/l1jgo/poolecs/internal/core/ecs"
	coresys "github.com/l1jgo/poolecs/internal/core/system"
	"go.uber.org/zap"
)

// Command is a decoded player input.
type Command uint8

const (
	CmdNone Command = iota
	CmdLeft
	CmdRight
	CmdStop
	CmdRestart
	CmdQuit
)

// KeyCommand maps a terminal key to a command.
func KeyCommand(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyLeft:
		return CmdLeft
	case tcell.KeyRight:
		return CmdRight
	case tcell.KeyDown:
		return CmdStop
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	}
	switch ev.Rune() {
	case 'a', 'h':
		return CmdLeft
	case 'd', 'l':
		return CmdRight
	case 's', ' ':
		return CmdStop
	case 'r':
		return CmdRestart
	case 'q':
		return CmdQuit
	}
	return CmdNone
}

// direction is the horizontal input of a movement command.
func direction(cmd Command) int {
	switch cmd {
	case CmdLeft:
		return -1
	case CmdRight:
		return 1
	}
	return 0
}

// InputSystem drains queued commands and applies them to the scene. The
// queue is filled by the terminal event goroutine. Phase 0 (Input).
type InputSystem struct {
	scene      *Scene
	commands   <-chan Command
	maxPerTick int
	quit       func()
	log        *zap.Logger
}

func NewInputSystem(scene *Scene, commands <-chan Command, maxPerTick int, quit func(), log *zap.Logger) *InputSystem {
	return &InputSystem{
		scene:      scene,
		commands:   commands,
		maxPerTick: maxPerTick,
		quit:       quit,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case cmd := <-s.commands:
			s.apply(cmd)
		default:
			return
		}
	}
}

func (s *InputSystem) apply(cmd Command) {
	switch cmd {
	case CmdLeft, CmdRight, CmdStop:
		pc, err := ecs.Get[component.PlayerController](s.scene.World, s.scene.Player)
		if err != nil {
			s.log.Debug("input without player", zap.Error(err))
			return
		}
		pc.Input = direction(cmd)
	case CmdRestart:
		if s.scene.Running() {
			return
		}
		if err := s.scene.Restart(); err != nil {
			s.log.Error("restart failed", zap.Error(err))
		}
	case CmdQuit:
		if s.quit != nil {
			s.quit()
		}
	}
}
