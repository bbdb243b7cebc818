package main

import (
	"math/rand/v2"

	"github.com/plus3/sigecs/ecs"
	"go.uber.org/zap"
)

// mutator adds and removes one component type on behalf of the churner.
type mutator struct {
	add    func(c *ecs.Coordinator, e ecs.Entity, r *rand.Rand) error
	remove func(c *ecs.Coordinator, e ecs.Entity) error
	has    func(c *ecs.Coordinator, e ecs.Entity) bool
}

func mutatorFor[T any](gen func(r *rand.Rand) T) mutator {
	return mutator{
		add: func(c *ecs.Coordinator, e ecs.Entity, r *rand.Rand) error {
			return ecs.AddComponent(c, e, gen(r))
		},
		remove: ecs.RemoveComponent[T],
		has:    ecs.HasComponent[T],
	}
}

var mutators = []mutator{
	mutatorFor(func(r *rand.Rand) Position { return Position{X: r.Float64() * 1000, Y: r.Float64() * 1000} }),
	mutatorFor(func(r *rand.Rand) Velocity { return Velocity{DX: r.NormFloat64() * 10, DY: r.NormFloat64() * 10} }),
	mutatorFor(func(r *rand.Rand) Health { return Health{Current: 100, Max: 100} }),
	mutatorFor(func(r *rand.Rand) Lifetime { return Lifetime{Remaining: 0.5 + r.Float64()*5} }),
	mutatorFor(func(r *rand.Rand) Heat { return Heat{Celsius: r.Float64() * 300} }),
	mutatorFor(func(r *rand.Rand) Charge { return Charge{Coulombs: r.Float64() * 10} }),
	mutatorFor(func(r *rand.Rand) Mass { return Mass{Kg: 1 + r.Float64()*50} }),
	mutatorFor(func(r *rand.Rand) Tag { return Tag{Label: "stress"} }),
}

// registerComponents registers every component type the churner uses, in a
// fixed order so slots are stable between runs.
func registerComponents(c *ecs.Coordinator) error {
	for _, register := range []func(*ecs.Coordinator) (ecs.ComponentType, error){
		ecs.RegisterComponent[Position],
		ecs.RegisterComponent[Velocity],
		ecs.RegisterComponent[Health],
		ecs.RegisterComponent[Lifetime],
		ecs.RegisterComponent[Heat],
		ecs.RegisterComponent[Charge],
		ecs.RegisterComponent[Mass],
		ecs.RegisterComponent[Tag],
	} {
		if _, err := register(c); err != nil {
			return err
		}
	}
	return nil
}

type ChurnStats struct {
	Created   int64
	Destroyed int64
	Added     int64
	Removed   int64
	Failed    int64
}

// Churner applies random structural changes to a Coordinator between frames.
type Churner struct {
	c     *ecs.Coordinator
	r     *rand.Rand
	log   *zap.Logger
	slots int
	Stats ChurnStats
}

func NewChurner(c *ecs.Coordinator, seed uint64, log *zap.Logger) *Churner {
	return &Churner{
		c:     c,
		r:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:   log,
		slots: c.CollectStats().MaxEntities,
	}
}

// Spawn creates an entity carrying between one and five random components.
func (ch *Churner) Spawn() error {
	e, err := ch.c.CreateEntity()
	if err != nil {
		return err
	}
	ch.Stats.Created++

	n := ch.r.IntN(5) + 1
	for _, i := range ch.r.Perm(len(mutators))[:n] {
		if err := mutators[i].add(ch.c, e, ch.r); err != nil {
			return err
		}
		ch.Stats.Added++
	}
	return nil
}

// Step performs n random mutations. Picking a dead id spawns a new entity;
// picking a live one destroys it or toggles one of its components.
func (ch *Churner) Step(n int) {
	for range n {
		if err := ch.mutate(); err != nil {
			ch.Stats.Failed++
			ch.log.Debug("churn mutation failed", zap.Error(err))
		}
	}
}

func (ch *Churner) mutate() error {
	e := ecs.Entity(ch.r.IntN(ch.slots))
	if !ch.c.IsAlive(e) {
		if ch.c.LiveEntities() >= ch.slots {
			return nil
		}
		return ch.Spawn()
	}

	if ch.r.IntN(8) == 0 {
		if err := ch.c.DestroyEntity(e); err != nil {
			return err
		}
		ch.Stats.Destroyed++
		return nil
	}

	m := mutators[ch.r.IntN(len(mutators))]
	if m.has(ch.c, e) {
		if err := m.remove(ch.c, e); err != nil {
			return err
		}
		ch.Stats.Removed++
		return nil
	}
	if err := m.add(ch.c, e, ch.r); err != nil {
		return err
	}
	ch.Stats.Added++
	return nil
}
