package debugui

import (
	"github.com/plus3/sigecs/ecs"
	"go.uber.org/multierr"
)

// RegisterDebugUIComponents registers every panel component type on c.
func RegisterDebugUIComponents(c *ecs.Coordinator) error {
	var errs error
	for _, register := range []func(*ecs.Coordinator) (ecs.ComponentType, error){
		ecs.RegisterComponent[EntityBrowserComponent],
		ecs.RegisterComponent[ComponentInspectorComponent],
		ecs.RegisterComponent[SystemViewerComponent],
		ecs.RegisterComponent[PerformanceStatsComponent],
		ecs.RegisterComponent[SignatureDebuggerComponent],
	} {
		_, err := register(c)
		errs = multierr.Append(errs, err)
	}
	return errs
}

// SpawnDebugUI creates one entity per panel and registers the PanelSystem
// that renders them. scheduler feeds the per-system timings table and may be
// nil.
func SpawnDebugUI(c *ecs.Coordinator, scheduler *ecs.Scheduler) (*PanelSystem, error) {
	if err := RegisterDebugUIComponents(c); err != nil {
		return nil, err
	}

	spawns := []func(ecs.Entity) error{
		func(e ecs.Entity) error { return ecs.AddComponent(c, e, NewEntityBrowserComponent(100)) },
		func(e ecs.Entity) error { return ecs.AddComponent(c, e, NewComponentInspectorComponent()) },
		func(e ecs.Entity) error { return ecs.AddComponent(c, e, NewSystemViewerComponent()) },
		func(e ecs.Entity) error { return ecs.AddComponent(c, e, NewPerformanceStatsComponent(120, scheduler)) },
		func(e ecs.Entity) error { return ecs.AddComponent(c, e, NewSignatureDebuggerComponent()) },
	}
	for _, spawn := range spawns {
		e, err := c.CreateEntity()
		if err != nil {
			return nil, err
		}
		if err := spawn(e); err != nil {
			return nil, err
		}
	}

	return ecs.RegisterNewSystem[PanelSystem](c)
}

// PanelSystem draws every debug panel present in the world. It relies on the
// panel component stores rather than its own entity set, since each panel is
// a different component type.
type PanelSystem struct {
	ecs.SystemBase
}

// Execute defers panel rendering to the end of the frame so that edits made
// in the component inspector land after every system ran.
func (p *PanelSystem) Execute(frame *ecs.UpdateFrame) {
	c := frame.Coordinator
	dt := float32(frame.DeltaTime)
	frame.Commands.Defer(func() {
		p.render(c, dt)
	})
}

func (p *PanelSystem) render(c *ecs.Coordinator, dt float32) {
	var (
		browser  *EntityBrowserComponent
		selected ecs.Entity
		ok       bool
	)
	if store, err := ecs.ComponentStoreOf[EntityBrowserComponent](c); err == nil {
		for _, eb := range store.All() {
			eb.Render(c)
			browser = eb
			if e, has := eb.GetSelectedEntity(); has {
				selected, ok = e, true
			}
		}
	}

	if store, err := ecs.ComponentStoreOf[ComponentInspectorComponent](c); err == nil {
		for _, ci := range store.All() {
			ci.Render(c, selected, ok)
		}
	}

	if store, err := ecs.ComponentStoreOf[SystemViewerComponent](c); err == nil {
		for _, sv := range store.All() {
			if sig := sv.Render(c); sig != nil && browser != nil {
				browser.SetFilterSignature(*sig)
			}
		}
	}

	if store, err := ecs.ComponentStoreOf[PerformanceStatsComponent](c); err == nil {
		for _, ps := range store.All() {
			ps.Render(c, dt)
		}
	}

	if store, err := ecs.ComponentStoreOf[SignatureDebuggerComponent](c); err == nil {
		for _, sd := range store.All() {
			sd.Render(c)
		}
	}
}
