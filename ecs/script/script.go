// Package script runs system logic written in Lua. A LuaSystem calls the
// script's update(entity, dt) function for every entity in its set; the
// script reads and writes numeric component fields through get/set and may
// queue destruction with destroy.
package script

import (
	"errors"
	"fmt"

	"github.com/plus3/sigecs/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

var ErrNoUpdate = errors.New("script: update function not defined")

// Binding exposes one numeric component field to Lua under Name.
type Binding struct {
	Name string
	Get  func(c *ecs.Coordinator, e ecs.Entity) (float64, bool)
	Set  func(c *ecs.Coordinator, e ecs.Entity, v float64) bool
}

// Field binds a float64 view of a T component. set may be nil for read-only
// fields.
func Field[T any](name string, get func(*T) float64, set func(*T, float64)) Binding {
	b := Binding{
		Name: name,
		Get: func(c *ecs.Coordinator, e ecs.Entity) (float64, bool) {
			v, err := ecs.GetComponent[T](c, e)
			if err != nil {
				return 0, false
			}
			return get(v), true
		},
	}
	if set != nil {
		b.Set = func(c *ecs.Coordinator, e ecs.Entity, value float64) bool {
			v, err := ecs.GetComponent[T](c, e)
			if err != nil {
				return false
			}
			set(v, value)
			return true
		}
	}
	return b
}

// LuaSystem is a System whose per-entity logic lives in a Lua script. It owns
// a single Lua VM and must only be executed from the goroutine driving the
// Coordinator.
type LuaSystem struct {
	ecs.SystemBase

	vm       *lua.LState
	log      *zap.Logger
	update   lua.LValue
	bindings map[string]Binding
	frame    *ecs.UpdateFrame

	// Failures counts update calls that raised a Lua error.
	Failures int
}

// NewLuaSystem compiles source and looks up its update function.
func NewLuaSystem(source string, log *zap.Logger, bindings ...Binding) (*LuaSystem, error) {
	return newLuaSystem(log, bindings, func(vm *lua.LState) error {
		return vm.DoString(source)
	})
}

// NewLuaSystemFromFile is NewLuaSystem for a script on disk.
func NewLuaSystemFromFile(path string, log *zap.Logger, bindings ...Binding) (*LuaSystem, error) {
	return newLuaSystem(log, bindings, func(vm *lua.LState) error {
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	})
}

func newLuaSystem(log *zap.Logger, bindings []Binding, load func(*lua.LState) error) (*LuaSystem, error) {
	if log == nil {
		log = zap.NewNop()
	}

	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	s := &LuaSystem{
		vm:       vm,
		log:      log,
		bindings: make(map[string]Binding, len(bindings)),
	}
	for _, b := range bindings {
		s.bindings[b.Name] = b
	}

	vm.SetGlobal("get", vm.NewFunction(s.luaGet))
	vm.SetGlobal("set", vm.NewFunction(s.luaSet))
	vm.SetGlobal("has", vm.NewFunction(s.luaHas))
	vm.SetGlobal("destroy", vm.NewFunction(s.luaDestroy))

	if err := load(vm); err != nil {
		vm.Close()
		return nil, fmt.Errorf("script: %w", err)
	}

	s.update = vm.GetGlobal("update")
	if s.update.Type() != lua.LTFunction {
		vm.Close()
		return nil, ErrNoUpdate
	}

	log.Debug("lua system loaded", zap.Int("bindings", len(s.bindings)))
	return s, nil
}

// Execute calls update(entity, dt) for every entity in the system's set. A
// failing call is logged and counted; the remaining entities still run.
func (s *LuaSystem) Execute(frame *ecs.UpdateFrame) {
	s.frame = frame
	defer func() { s.frame = nil }()

	dt := lua.LNumber(frame.DeltaTime)
	for e := range s.Entities().All() {
		if err := s.vm.CallByParam(lua.P{
			Fn:      s.update,
			NRet:    0,
			Protect: true,
		}, lua.LNumber(e), dt); err != nil {
			s.Failures++
			s.log.Error("lua update error", zap.Uint32("entity", uint32(e)), zap.Error(err))
		}
	}
}

// Close releases the Lua VM.
func (s *LuaSystem) Close() {
	s.vm.Close()
}

func (s *LuaSystem) binding(L *lua.LState, arg int) Binding {
	name := L.CheckString(arg)
	b, ok := s.bindings[name]
	if !ok {
		L.ArgError(arg, "unknown field "+name)
	}
	return b
}

// get(entity, field) returns the field value, or nil if the entity lacks the
// component.
func (s *LuaSystem) luaGet(L *lua.LState) int {
	e := ecs.Entity(L.CheckInt(1))
	b := s.binding(L, 2)

	v, ok := b.Get(s.frame.Coordinator, e)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

// set(entity, field, value) returns whether the value was written.
func (s *LuaSystem) luaSet(L *lua.LState) int {
	e := ecs.Entity(L.CheckInt(1))
	b := s.binding(L, 2)
	v := float64(L.CheckNumber(3))

	if b.Set == nil {
		L.ArgError(2, "field "+b.Name+" is read-only")
		return 0
	}
	L.Push(lua.LBool(b.Set(s.frame.Coordinator, e, v)))
	return 1
}

// has(entity, field) reports whether the entity holds the bound component.
func (s *LuaSystem) luaHas(L *lua.LState) int {
	e := ecs.Entity(L.CheckInt(1))
	b := s.binding(L, 2)

	_, ok := b.Get(s.frame.Coordinator, e)
	L.Push(lua.LBool(ok))
	return 1
}

// destroy(entity) queues the entity for destruction at the end of the frame.
func (s *LuaSystem) luaDestroy(L *lua.LState) int {
	e := ecs.Entity(L.CheckInt(1))
	s.frame.Commands.Destroy(e)
	return 0
}
