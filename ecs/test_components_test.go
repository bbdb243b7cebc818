package ecs_test

import "github.com/plus3/sigecs/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string
type Temperature float64

type MovementSystem struct {
	ecs.SystemBase
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for _, item := range ecs.Each2[Position, Velocity](frame.Coordinator, s.Entities()) {
		item.First.X += item.Second.DX * float32(frame.DeltaTime)
		item.First.Y += item.Second.DY * float32(frame.DeltaTime)
	}
}

type HealthSystem struct {
	ecs.SystemBase
	ExecuteCount int
	TotalHealth  int
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for _, health := range ecs.Each[Health](frame.Coordinator, s.Entities()) {
		s.TotalHealth += health.Current
	}
}

type NameSystem struct {
	ecs.SystemBase
}

func (s *NameSystem) Execute(frame *ecs.UpdateFrame) {}

// SharedBaseSystem embeds a pointer to its base, which may be left nil.
type SharedBaseSystem struct {
	*ecs.SystemBase
}

func (s *SharedBaseSystem) Execute(frame *ecs.UpdateFrame) {}

// movementSignature requires Position and Velocity.
func movementSignature(c *ecs.Coordinator) ecs.Signature {
	sig, err := ecs.Require[Position](c, 0)
	if err != nil {
		panic(err)
	}
	sig, err = ecs.Require[Velocity](c, sig)
	if err != nil {
		panic(err)
	}
	return sig
}

func healthSignature(c *ecs.Coordinator) ecs.Signature {
	sig, err := ecs.Require[Health](c, 0)
	if err != nil {
		panic(err)
	}
	return sig
}

// newTestCoordinator returns a coordinator with MovementSystem and
// HealthSystem registered and configured.
func newTestCoordinator(opts ...ecs.Option) (*ecs.Coordinator, *MovementSystem, *HealthSystem) {
	c := ecs.NewCoordinator(opts...)
	movement, err := ecs.RegisterNewSystem[MovementSystem](c)
	if err != nil {
		panic(err)
	}
	health, err := ecs.RegisterNewSystem[HealthSystem](c)
	if err != nil {
		panic(err)
	}
	if err := ecs.SetSystemSignature[*MovementSystem](c, movementSignature(c)); err != nil {
		panic(err)
	}
	if err := ecs.SetSystemSignature[*HealthSystem](c, healthSignature(c)); err != nil {
		panic(err)
	}
	return c, movement, health
}
