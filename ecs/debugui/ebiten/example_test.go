package ebiten_test

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/sigecs/ecs"
	"github.com/plus3/sigecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/sigecs/ecs/debugui/ebiten"
)

func Example() {
	// Create Ebiten window and ImGui backend
	backend := debugui_ebiten.NewImguiBackend("ECS ImGui Example", 1280, 720)

	c := ecs.NewCoordinator()
	scheduler := ecs.NewScheduler(c)

	// ImguiSystem renders every entity that holds an ImguiItem
	if _, err := debugui.RegisterImguiSystem(c); err != nil {
		panic(err)
	}

	e, _ := c.CreateEntity()
	_ = ecs.AddComponent(c, e, debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from ECS!")
			imgui.End()
		},
	})

	// Inspection panels for the world itself
	if _, err := debugui.SpawnDebugUI(c, scheduler); err != nil {
		panic(err)
	}

	// Run the game
	if err := ebiten.RunGame(debugui_ebiten.NewGame(backend, scheduler)); err != nil {
		panic(err)
	}
}
