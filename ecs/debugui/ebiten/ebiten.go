// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/sigecs/ecs"
	"github.com/plus3/sigecs/ecs/debugui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window. The imgui.ini file is
// disabled so panel layout does not leak between runs.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: backend}
}

// Game implements ebiten.Game. Every Update runs one scheduler frame between
// the ImGui BeginFrame and EndFrame calls, so systems such as
// debugui.ImguiSystem and debugui.PanelSystem can issue ImGui widgets.
type Game struct {
	Backend   *ImguiBackend
	Scheduler *ecs.Scheduler

	// DrawWorld, if set, draws the game content beneath the ImGui overlay.
	DrawWorld func(screen *ebiten.Image)

	timer *debugui.FrameTimer
}

// NewGame wires backend and scheduler into an ebiten.Game.
func NewGame(backend *ImguiBackend, scheduler *ecs.Scheduler) *Game {
	return &Game{
		Backend:   backend,
		Scheduler: scheduler,
		timer:     debugui.NewFrameTimer(),
	}
}

func (g *Game) Update() error {
	g.Backend.BeginFrame()
	g.Scheduler.Once(float64(g.timer.GetDeltaTime()))
	g.Backend.EndFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	g.Backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.Backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

var _ ebiten.Game = (*Game)(nil)
