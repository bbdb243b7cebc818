package main

import (
	"image/color"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/sigecs/ecs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

var pastelColors = []color.RGBA{
	{255, 179, 186, 255},
	{179, 229, 252, 255},
	{255, 223, 186, 255},
	{186, 255, 201, 255},
	{255, 200, 221, 255},
	{217, 186, 255, 255},
}

type Position struct {
	X, Y float32
}

type Velocity struct {
	X, Y float32
}

type Sprite struct {
	Color  color.RGBA
	Radius float32
}

type Lifespan struct {
	Remaining float64
}

// Controls is the simulation state edited from the controls window.
type Controls struct {
	Paused     bool
	Speed      float32
	SpawnBatch int32
	pending    int
}

// MovementSystem integrates velocity and bounces off the screen edges.
type MovementSystem struct {
	ecs.SystemBase
	Controls *Controls
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Controls.Paused {
		return
	}
	dt := float32(frame.DeltaTime) * s.Controls.Speed
	for _, item := range ecs.Each2[Position, Velocity](frame.Coordinator, s.Entities()) {
		pos, vel := item.First, item.Second
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		if pos.X < 0 || pos.X > ScreenWidth {
			vel.X = -vel.X
			pos.X = min(max(pos.X, 0), ScreenWidth)
		}
		if pos.Y < 0 || pos.Y > ScreenHeight {
			vel.Y = -vel.Y
			pos.Y = min(max(pos.Y, 0), ScreenHeight)
		}
	}
}

// LifespanSystem destroys entities once their lifespan runs out.
type LifespanSystem struct {
	ecs.SystemBase
	Controls *Controls
}

func (s *LifespanSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Controls.Paused {
		return
	}
	dt := frame.DeltaTime * float64(s.Controls.Speed)
	for e, life := range ecs.Each[Lifespan](frame.Coordinator, s.Entities()) {
		life.Remaining -= dt
		if life.Remaining <= 0 {
			frame.Commands.Destroy(e)
		}
	}
}

// SpawnSystem creates the entities requested from the controls window.
type SpawnSystem struct {
	ecs.SystemBase
	Controls *Controls
	rng      *rand.Rand
	log      *zap.Logger
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	for range s.Controls.pending {
		frame.Commands.Create(func(e ecs.Entity) {
			if err := spawnBall(frame.Coordinator, e, s.rng); err != nil {
				s.log.Warn("spawn ball", zap.Uint32("entity", uint32(e)), zap.Error(err))
			}
		})
	}
	s.Controls.pending = 0
}

// spawnBall gives e a random position, velocity and sprite. Half of the balls
// are mortal.
func spawnBall(c *ecs.Coordinator, e ecs.Entity, rng *rand.Rand) error {
	err := multierr.Combine(
		ecs.AddComponent(c, e, Position{X: rng.Float32() * ScreenWidth, Y: rng.Float32() * ScreenHeight}),
		ecs.AddComponent(c, e, Velocity{X: (rng.Float32() - 0.5) * 300, Y: (rng.Float32() - 0.5) * 300}),
		ecs.AddComponent(c, e, Sprite{
			Color:  pastelColors[rng.IntN(len(pastelColors))],
			Radius: 3 + rng.Float32()*6,
		}),
	)
	if rng.IntN(2) == 0 {
		err = multierr.Append(err, ecs.AddComponent(c, e, Lifespan{Remaining: 2 + rng.Float64()*10}))
	}
	return err
}

// RenderSystem has no Execute work of its own; its entity set selects what
// Draw paints.
type RenderSystem struct {
	ecs.SystemBase
	coordinator *ecs.Coordinator
}

func (s *RenderSystem) Execute(*ecs.UpdateFrame) {}

func (s *RenderSystem) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 36, 255})
	for _, item := range ecs.Each2[Position, Sprite](s.coordinator, s.Entities()) {
		vector.DrawFilledCircle(screen, item.First.X, item.First.Y, item.Second.Radius, item.Second.Color, true)
	}
}
