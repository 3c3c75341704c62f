package scripting

import (
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Script is a component whose update runs the Lua function update_<Name>
// with a per-entity state table. Numeric and string fields of the table are
// persisted.
type Script struct {
	Name string

	engine *Engine
	self   *lua.LTable
	failed bool
}

// Attach binds the script to an engine. It is meant for a component type's
// constructor.
func (s *Script) Attach(e *Engine) { s.engine = e }

func (s *Script) fn() string { return "update_" + s.Name }

// State returns the script's self table, creating it on first use.
func (s *Script) State() *lua.LTable {
	if s.self == nil && s.engine != nil {
		s.self = s.engine.NewState()
	}
	return s.self
}

// Number reads a numeric field from the state table.
func (s *Script) Number(key string) float64 {
	st := s.State()
	if st == nil {
		return 0
	}
	return float64(lua.LVAsNumber(st.RawGetString(key)))
}

// Update runs the script. A script that errors is disabled after logging
// once so a broken script does not flood the log every frame.
func (s *Script) Update(dt time.Duration) {
	if s.engine == nil || s.Name == "" || s.failed {
		return
	}
	if err := s.engine.CallUpdate(s.fn(), s.State(), dt); err != nil {
		s.failed = true
		s.engine.log.Error("script disabled", zap.String("script", s.Name), zap.Error(err))
	}
}

func (s *Script) CopyFrom(src *Script) {
	s.Name = src.Name
	s.engine = src.engine
	if src.self == nil || s.engine == nil {
		return
	}
	st := s.State()
	src.self.ForEach(func(k, v lua.LValue) { st.RawSet(k, v) })
}

type scriptDoc struct {
	Name string         `yaml:"name"`
	Vars map[string]any `yaml:"vars,omitempty"`
}

func (s *Script) Serialize(node *yaml.Node) bool {
	doc := scriptDoc{Name: s.Name}
	if s.self != nil {
		doc.Vars = make(map[string]any)
		s.self.ForEach(func(k, v lua.LValue) {
			ks, ok := k.(lua.LString)
			if !ok {
				return
			}
			switch tv := v.(type) {
			case lua.LNumber:
				doc.Vars[string(ks)] = float64(tv)
			case lua.LString:
				doc.Vars[string(ks)] = string(tv)
			case lua.LBool:
				doc.Vars[string(ks)] = bool(tv)
			}
		})
	}
	return node.Encode(doc) == nil
}

func (s *Script) Load(node *yaml.Node) bool {
	var doc scriptDoc
	if err := node.Decode(&doc); err != nil {
		return false
	}
	s.Name = doc.Name
	s.failed = false
	st := s.State()
	if st == nil {
		return len(doc.Vars) == 0
	}
	for k, v := range doc.Vars {
		switch tv := v.(type) {
		case int:
			st.RawSetString(k, lua.LNumber(tv))
		case float64:
			st.RawSetString(k, lua.LNumber(tv))
		case string:
			st.RawSetString(k, lua.LString(tv))
		case bool:
			st.RawSetString(k, lua.LBool(tv))
		}
	}
	return true
}
