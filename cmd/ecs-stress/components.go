package main

import (
	"github.com/plus3/sigecs/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current, Max int
}

type Lifetime struct {
	Remaining float64
}

type Heat struct {
	Celsius float64
}

type Charge struct {
	Coulombs float64
}

type Mass struct {
	Kg float64
}

type Tag struct {
	Label string
}

type MovementSystem struct {
	ecs.SystemBase
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range ecs.Each2[Position, Velocity](frame.Coordinator, s.Entities()) {
		item.First.X += item.Second.DX * frame.DeltaTime
		item.First.Y += item.Second.DY * frame.DeltaTime
	}
}

// LifetimeSystem destroys entities whose lifetime ran out.
type LifetimeSystem struct {
	ecs.SystemBase
	Expired int
}

func (s *LifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	for e, life := range ecs.Each[Lifetime](frame.Coordinator, s.Entities()) {
		life.Remaining -= frame.DeltaTime
		if life.Remaining <= 0 {
			frame.Commands.Destroy(e)
			s.Expired++
		}
	}
}

// CoolingSystem moves heat toward 20°C, faster for light entities.
type CoolingSystem struct {
	ecs.SystemBase
}

func (s *CoolingSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range ecs.Each2[Heat, Mass](frame.Coordinator, s.Entities()) {
		rate := frame.DeltaTime / max(item.Second.Kg, 1)
		item.First.Celsius += (20 - item.First.Celsius) * min(rate, 1)
	}
}

// DischargeSystem drains charge into health damage.
type DischargeSystem struct {
	ecs.SystemBase
}

func (s *DischargeSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range ecs.Each2[Charge, Health](frame.Coordinator, s.Entities()) {
		if item.First.Coulombs > 1 {
			item.Second.Current--
			item.First.Coulombs /= 2
		}
	}
}

// CensusSystem counts tagged entities. Its signature requires three
// components, so membership changes often under churn.
type CensusSystem struct {
	ecs.SystemBase
	Last int
}

func (s *CensusSystem) Execute(frame *ecs.UpdateFrame) {
	s.Last = s.Entities().Len()
}

type requirement func(*ecs.Coordinator, ecs.Signature) (ecs.Signature, error)

// install registers sys and gives it the signature built from reqs.
func install[S ecs.System](c *ecs.Coordinator, sys S, reqs ...requirement) (S, error) {
	if _, err := ecs.RegisterSystem(c, sys); err != nil {
		return sys, err
	}
	var sig ecs.Signature
	for _, req := range reqs {
		var err error
		if sig, err = req(c, sig); err != nil {
			return sys, err
		}
	}
	return sys, ecs.SetSystemSignature[S](c, sig)
}

type systems struct {
	movement  *MovementSystem
	lifetime  *LifetimeSystem
	cooling   *CoolingSystem
	discharge *DischargeSystem
	census    *CensusSystem
}

// registerSystems registers every stress system and sets its signature.
func registerSystems(c *ecs.Coordinator) (*systems, error) {
	var (
		s   systems
		err error
	)
	if s.movement, err = install(c, &MovementSystem{}, ecs.Require[Position], ecs.Require[Velocity]); err != nil {
		return nil, err
	}
	if s.lifetime, err = install(c, &LifetimeSystem{}, ecs.Require[Lifetime]); err != nil {
		return nil, err
	}
	if s.cooling, err = install(c, &CoolingSystem{}, ecs.Require[Heat], ecs.Require[Mass]); err != nil {
		return nil, err
	}
	if s.discharge, err = install(c, &DischargeSystem{}, ecs.Require[Charge], ecs.Require[Health]); err != nil {
		return nil, err
	}
	if s.census, err = install(c, &CensusSystem{}, ecs.Require[Tag], ecs.Require[Position], ecs.Require[Health]); err != nil {
		return nil, err
	}
	return &s, nil
}
