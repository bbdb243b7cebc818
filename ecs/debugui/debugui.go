// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It renders ImGui widgets from ECS components and ships a set of inspection
// panels for a Coordinator: an entity browser, a component inspector, a system
// viewer, performance stats and a signature debugger.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem processes every entity holding an ImguiItem and defers its
// render function to the end of the frame. InputState is refreshed on every
// Execute.
type ImguiSystem struct {
	ecs.SystemBase
	InputState ImguiInputState
}

// RegisterImguiSystem registers an ImguiSystem on c and sets its signature to
// ImguiItem.
func RegisterImguiSystem(c *ecs.Coordinator) (*ImguiSystem, error) {
	sys, err := ecs.RegisterNewSystem[ImguiSystem](c)
	if err != nil {
		return nil, err
	}
	sig, err := ecs.Require[ImguiItem](c, 0)
	if err != nil {
		return nil, err
	}
	if err := ecs.SetSystemSignature[*ImguiSystem](c, sig); err != nil {
		return nil, err
	}
	return sys, nil
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	i.InputState.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	i.InputState.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for _, item := range ecs.Each[ImguiItem](frame.Coordinator, i.Entities()) {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}
