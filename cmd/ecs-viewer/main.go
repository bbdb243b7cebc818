// ecs-viewer opens an Ebiten window with a small bouncing-ball world and the
// Dear ImGui debug panels attached to its Coordinator.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/sigecs/ecs"
	"github.com/plus3/sigecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/sigecs/ecs/debugui/ebiten"
	"github.com/plus3/sigecs/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	balls := flag.Int("balls", 200, "Number of balls spawned at startup.")
	seed := flag.Uint64("seed", 1, "Seed for ball placement.")
	level := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	log, err := config.NewLogger(config.LoggingConfig{Level: *level, Format: "console"})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	backend := debugui_ebiten.NewImguiBackend("ECS Viewer", ScreenWidth, ScreenHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	c := ecs.NewCoordinator(ecs.WithLogger(log.Named("ecs")))
	render, err := buildWorld(c, *balls, *seed, log)
	if err != nil {
		return err
	}

	scheduler := ecs.NewScheduler(c)
	if _, err := debugui.SpawnDebugUI(c, scheduler); err != nil {
		return fmt.Errorf("spawn debug ui: %w", err)
	}

	game := debugui_ebiten.NewGame(backend, scheduler)
	game.DrawWorld = render.Draw

	log.Info("viewer started", zap.Int("balls", *balls), zap.Int("live", c.LiveEntities()))
	return ebiten.RunGame(game)
}

// buildWorld registers the simulation systems, the controls window and the
// initial balls.
func buildWorld(c *ecs.Coordinator, balls int, seed uint64, log *zap.Logger) (*RenderSystem, error) {
	controls := &Controls{Speed: 1, SpawnBatch: 25}
	rng := rand.New(rand.NewPCG(seed, seed))

	if _, err := debugui.RegisterImguiSystem(c); err != nil {
		return nil, err
	}

	movement, err := ecs.RegisterSystem(c, &MovementSystem{Controls: controls})
	if err != nil {
		return nil, err
	}
	lifespan, err := ecs.RegisterSystem(c, &LifespanSystem{Controls: controls})
	if err != nil {
		return nil, err
	}
	if _, err := ecs.RegisterSystem(c, &SpawnSystem{Controls: controls, rng: rng, log: log.Named("spawn")}); err != nil {
		return nil, err
	}
	render, err := ecs.RegisterSystem(c, &RenderSystem{coordinator: c})
	if err != nil {
		return nil, err
	}

	sig, err := requireAll(c, ecs.Require[Position], ecs.Require[Velocity])
	if err != nil {
		return nil, err
	}
	if err := ecs.SetSystemSignature[*MovementSystem](c, sig); err != nil {
		return nil, err
	}
	if sig, err = requireAll(c, ecs.Require[Lifespan]); err != nil {
		return nil, err
	}
	if err := ecs.SetSystemSignature[*LifespanSystem](c, sig); err != nil {
		return nil, err
	}
	if sig, err = requireAll(c, ecs.Require[Position], ecs.Require[Sprite]); err != nil {
		return nil, err
	}
	if err := ecs.SetSystemSignature[*RenderSystem](c, sig); err != nil {
		return nil, err
	}

	for range balls {
		e, err := c.CreateEntity()
		if err != nil {
			return nil, err
		}
		if err := spawnBall(c, e, rng); err != nil {
			return nil, err
		}
	}

	e, err := c.CreateEntity()
	if err != nil {
		return nil, err
	}
	err = ecs.AddComponent(c, e, debugui.ImguiItem{
		Render: func() { renderControls(c, controls, movement, lifespan) },
	})
	return render, err
}

func requireAll(c *ecs.Coordinator, reqs ...func(*ecs.Coordinator, ecs.Signature) (ecs.Signature, error)) (ecs.Signature, error) {
	var sig ecs.Signature
	for _, req := range reqs {
		var err error
		if sig, err = req(c, sig); err != nil {
			return 0, err
		}
	}
	return sig, nil
}

func renderControls(c *ecs.Coordinator, controls *Controls, movement *MovementSystem, lifespan *LifespanSystem) {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(280, 180), imgui.CondOnce)

	if imgui.BeginV("Simulation", nil, 0) {
		imgui.Text(fmt.Sprintf("Live entities: %d", c.LiveEntities()))
		imgui.Text(fmt.Sprintf("Moving: %d  Mortal: %d", movement.Entities().Len(), lifespan.Entities().Len()))
		imgui.Separator()

		if controls.Paused {
			if imgui.Button("Resume") {
				controls.Paused = false
			}
		} else if imgui.Button("Pause") {
			controls.Paused = true
		}
		imgui.SliderFloat("Speed", &controls.Speed, 0.1, 4)
		imgui.SliderInt("Batch", &controls.SpawnBatch, 1, 500)
		if imgui.Button("Spawn") {
			controls.pending += int(controls.SpawnBatch)
		}
	}
	imgui.End()
}
