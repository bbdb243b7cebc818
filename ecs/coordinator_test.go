package ecs_test

import (
	"math/rand/v2"
	"testing"

	"github.com/plus3/sigecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type floatSystem struct {
	ecs.SystemBase
}

func (s *floatSystem) Execute(frame *ecs.UpdateFrame) {}

func TestCoordinatorScenario(t *testing.T) {
	c := ecs.NewCoordinator()

	e1, err := c.CreateEntity()
	require.NoError(t, err)

	_, err = ecs.RegisterComponent[float32](c)
	require.NoError(t, err)
	require.NoError(t, ecs.AddComponent[float32](c, e1, 1.0))

	sys, err := ecs.RegisterNewSystem[floatSystem](c)
	require.NoError(t, err)

	sig, err := ecs.Require[float32](c, 0)
	require.NoError(t, err)
	require.NoError(t, ecs.SetSystemSignature[*floatSystem](c, sig))

	got, err := ecs.GetSystem[*floatSystem](c)
	require.NoError(t, err)
	assert.Same(t, sys, got)
	assert.True(t, got.Entities().Contains(e1))

	require.NoError(t, ecs.RemoveComponent[float32](c, e1))
	assert.False(t, got.Entities().Contains(e1))

	require.NoError(t, ecs.AddComponent[float32](c, e1, 2.0))
	assert.True(t, got.Entities().Contains(e1))

	require.NoError(t, c.DestroyEntity(e1))
	assert.False(t, got.Entities().Contains(e1))

	store, err := ecs.ComponentStoreOf[float32](c)
	require.NoError(t, err)
	assert.False(t, store.Has(e1))
	assert.Equal(t, 0, store.Len())
}

func TestCreateEntityUniqueAndReused(t *testing.T) {
	c := ecs.NewCoordinator(ecs.WithMaxEntities(8))

	seen := make(map[ecs.Entity]bool)
	var entities []ecs.Entity
	for range 8 {
		e, err := c.CreateEntity()
		require.NoError(t, err)
		assert.False(t, seen[e], "entity %d handed out twice", e)
		seen[e] = true
		entities = append(entities, e)
	}

	_, err := c.CreateEntity()
	assert.ErrorIs(t, err, ecs.ErrCapacityExceeded)

	require.NoError(t, c.DestroyEntity(entities[5]))
	require.NoError(t, c.DestroyEntity(entities[2]))

	// Freed ids come back in the order they were freed.
	e, err := c.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, entities[5], e)

	e, err = c.CreateEntity()
	require.NoError(t, err)
	assert.Equal(t, entities[2], e)
}

func TestCreateEntityCapacity(t *testing.T) {
	c := ecs.NewCoordinator()

	for range ecs.MaxEntities {
		_, err := c.CreateEntity()
		require.NoError(t, err)
	}
	assert.Equal(t, ecs.MaxEntities, c.LiveEntities())

	_, err := c.CreateEntity()
	assert.ErrorIs(t, err, ecs.ErrCapacityExceeded)
}

func TestDestroyEntityTwice(t *testing.T) {
	c := ecs.NewCoordinator()

	e, err := c.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, c.DestroyEntity(e))

	err = c.DestroyEntity(e)
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)
	assert.Equal(t, 0, c.LiveEntities())
}

func TestDestroyEntityOutOfRange(t *testing.T) {
	c := ecs.NewCoordinator()
	assert.ErrorIs(t, c.DestroyEntity(ecs.MaxEntities), ecs.ErrInvalidEntity)
	assert.ErrorIs(t, c.DestroyEntity(ecs.MaxEntities+42), ecs.ErrInvalidEntity)
}

func TestAddGetComponent(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, ecs.AddComponent(c, e, Position{X: 3, Y: 4}))
	require.NoError(t, ecs.AddComponent(c, e, Name{Value: "hero"}))
	require.NoError(t, ecs.AddComponent(c, e, Score(7)))

	pos, err := ecs.GetComponent[Position](c, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 3, Y: 4}, *pos)

	name, err := ecs.GetComponent[Name](c, e)
	require.NoError(t, err)
	assert.Equal(t, "hero", name.Value)

	score, err := ecs.GetComponent[Score](c, e)
	require.NoError(t, err)
	assert.Equal(t, Score(7), *score)

	// Writes through the pointer land in storage.
	pos.X = 10
	pos, err = ecs.GetComponent[Position](c, e)
	require.NoError(t, err)
	assert.Equal(t, float32(10), pos.X)
}

func TestAddRemoveComponent(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, ecs.AddComponent(c, e, Health{Current: 10, Max: 10}))
	assert.True(t, ecs.HasComponent[Health](c, e))

	require.NoError(t, ecs.RemoveComponent[Health](c, e))
	assert.False(t, ecs.HasComponent[Health](c, e))

	_, err = ecs.GetComponent[Health](c, e)
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)

	err = ecs.RemoveComponent[Health](c, e)
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)

	sig, err := c.SignatureOf(e)
	require.NoError(t, err)
	assert.True(t, sig.IsEmpty())
}

func TestAddDuplicateComponent(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, ecs.AddComponent(c, e, Position{X: 1}))
	err = ecs.AddComponent(c, e, Position{X: 2})
	assert.ErrorIs(t, err, ecs.ErrDuplicateComponent)

	pos, err := ecs.GetComponent[Position](c, e)
	require.NoError(t, err)
	assert.Equal(t, float32(1), pos.X)
}

func TestComponentOperationsOnDeadEntity(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, ecs.AddComponent(c, e, Position{}))
	require.NoError(t, c.DestroyEntity(e))

	assert.ErrorIs(t, ecs.AddComponent(c, e, Position{}), ecs.ErrInvalidEntity)
	assert.ErrorIs(t, ecs.RemoveComponent[Position](c, e), ecs.ErrInvalidEntity)
	assert.False(t, ecs.HasComponent[Position](c, e))

	_, err = c.SignatureOf(e)
	assert.ErrorIs(t, err, ecs.ErrInvalidEntity)

	// The store no longer holds the destroyed entity.
	store, err := ecs.ComponentStoreOf[Position](c)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestHasComponentNeverFails(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)

	assert.False(t, ecs.HasComponent[Temperature](c, e))
	assert.False(t, ecs.HasComponent[Temperature](c, ecs.MaxEntities+1))

	_, err = ecs.RegisterComponent[Temperature](c)
	require.NoError(t, err)
	assert.False(t, ecs.HasComponent[Temperature](c, e))
}

func TestRemoveUnregisteredComponent(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)

	assert.ErrorIs(t, ecs.RemoveComponent[Tag](c, e), ecs.ErrUnregisteredType)

	_, err = ecs.GetComponent[Tag](c, e)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredType)

	_, err = ecs.GetComponentType[Tag](c)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredType)
}

func TestRegisterComponentTwice(t *testing.T) {
	c := ecs.NewCoordinator()

	first, err := ecs.RegisterComponent[Position](c)
	require.NoError(t, err)
	second, err := ecs.RegisterComponent[Position](c)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := ecs.RegisterComponent[Velocity](c)
	require.NoError(t, err)
	assert.Equal(t, first+1, other)

	slot, err := ecs.GetComponentType[Position](c)
	require.NoError(t, err)
	assert.Equal(t, first, slot)
	assert.Len(t, c.ComponentTypes(), 2)
}

func TestAddComponentRegistersType(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, ecs.AddComponent(c, e, Velocity{DX: 1}))

	slot, err := ecs.GetComponentType[Velocity](c)
	require.NoError(t, err)
	assert.Equal(t, ecs.ComponentType(0), slot)

	sig, err := c.SignatureOf(e)
	require.NoError(t, err)
	assert.Equal(t, ecs.NewSignature(slot), sig)
}

func TestComponentSlotsAreIndependentPerCoordinator(t *testing.T) {
	a := ecs.NewCoordinator()
	b := ecs.NewCoordinator()

	_, err := ecs.RegisterComponent[Position](a)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Velocity](b)
	require.NoError(t, err)
	_, err = ecs.RegisterComponent[Position](b)
	require.NoError(t, err)

	slotA, err := ecs.GetComponentType[Position](a)
	require.NoError(t, err)
	slotB, err := ecs.GetComponentType[Position](b)
	require.NoError(t, err)

	assert.Equal(t, ecs.ComponentType(0), slotA)
	assert.Equal(t, ecs.ComponentType(1), slotB)
}

func TestRegisterSystemTwice(t *testing.T) {
	c := ecs.NewCoordinator()

	_, err := ecs.RegisterNewSystem[NameSystem](c)
	require.NoError(t, err)

	_, err = ecs.RegisterNewSystem[NameSystem](c)
	assert.ErrorIs(t, err, ecs.ErrAlreadyRegistered)

	_, err = ecs.RegisterSystem(c, &NameSystem{})
	assert.ErrorIs(t, err, ecs.ErrAlreadyRegistered)
}

func TestRegisterPrebuiltSystem(t *testing.T) {
	c := ecs.NewCoordinator()

	health := &HealthSystem{TotalHealth: -1}
	got, err := ecs.RegisterSystem(c, health)
	require.NoError(t, err)
	assert.Same(t, health, got)

	fetched, err := ecs.GetSystem[*HealthSystem](c)
	require.NoError(t, err)
	assert.Same(t, health, fetched)
	assert.Equal(t, -1, fetched.TotalHealth)
}

func TestRegisterNilSystem(t *testing.T) {
	c := ecs.NewCoordinator()
	_, err := ecs.RegisterSystem[*NameSystem](c, nil)
	assert.Error(t, err)

	_, err = ecs.GetSystem[*NameSystem](c)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	assert.NotPanics(t, func() {
		_, err = ecs.RegisterSystem(c, &SharedBaseSystem{})
	})
	assert.ErrorContains(t, err, "nil SystemBase")

	_, err = ecs.GetSystem[*SharedBaseSystem](c)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	_, err = ecs.RegisterSystem(c, &SharedBaseSystem{SystemBase: &ecs.SystemBase{}})
	assert.NoError(t, err)
}

func TestSystemInstanceBelongsToOneCoordinator(t *testing.T) {
	a := ecs.NewCoordinator()
	b := ecs.NewCoordinator()

	health := &HealthSystem{}
	_, err := ecs.RegisterSystem(a, health)
	require.NoError(t, err)
	sig, err := ecs.Require[Health](a, 0)
	require.NoError(t, err)
	require.NoError(t, ecs.SetSystemSignature[*HealthSystem](a, sig))

	e, err := a.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, ecs.AddComponent(a, e, Health{Current: 10}))
	require.Equal(t, 1, health.Entities().Len())

	_, err = ecs.RegisterSystem(b, health)
	assert.ErrorIs(t, err, ecs.ErrAlreadyRegistered)
	assert.Equal(t, 1, health.Entities().Len())
	assert.True(t, health.Entities().Contains(e))

	_, err = ecs.GetSystem[*HealthSystem](b)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	// A fresh instance of the same type is fine on the other coordinator.
	_, err = ecs.RegisterSystem(b, &HealthSystem{})
	assert.NoError(t, err)
}

func TestUnregisteredSystem(t *testing.T) {
	c := ecs.NewCoordinator()

	_, err := ecs.GetSystem[*NameSystem](c)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	err = ecs.SetSystemSignature[*NameSystem](c, ecs.NewSignature(1))
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)

	_, err = ecs.SystemSignature[*NameSystem](c)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredSystem)
}

func TestSystemMembershipFollowsSignature(t *testing.T) {
	c, movement, health := newTestCoordinator()

	e, err := c.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, ecs.AddComponent(c, e, Position{}))
	assert.False(t, movement.Entities().Contains(e))

	require.NoError(t, ecs.AddComponent(c, e, Velocity{}))
	assert.True(t, movement.Entities().Contains(e))
	assert.False(t, health.Entities().Contains(e))

	require.NoError(t, ecs.AddComponent(c, e, Health{Current: 5}))
	assert.True(t, movement.Entities().Contains(e))
	assert.True(t, health.Entities().Contains(e))

	require.NoError(t, ecs.RemoveComponent[Position](c, e))
	assert.False(t, movement.Entities().Contains(e))
	assert.True(t, health.Entities().Contains(e))

	require.NoError(t, c.DestroyEntity(e))
	assert.Equal(t, 0, movement.Entities().Len())
	assert.Equal(t, 0, health.Entities().Len())
}

func TestSystemWithoutSignatureMatchesNothing(t *testing.T) {
	c := ecs.NewCoordinator()
	names, err := ecs.RegisterNewSystem[NameSystem](c)
	require.NoError(t, err)

	e, err := c.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, ecs.AddComponent(c, e, Name{Value: "x"}))

	assert.Equal(t, 0, names.Entities().Len())
}

func TestSetSystemSignatureBackfillsExistingEntities(t *testing.T) {
	c := ecs.NewCoordinator()

	var withName []ecs.Entity
	for i := range 10 {
		e, err := c.CreateEntity()
		require.NoError(t, err)
		if i%2 == 0 {
			require.NoError(t, ecs.AddComponent(c, e, Name{Value: "n"}))
			withName = append(withName, e)
		}
	}

	names, err := ecs.RegisterNewSystem[NameSystem](c)
	require.NoError(t, err)
	sig, err := ecs.Require[Name](c, 0)
	require.NoError(t, err)
	require.NoError(t, ecs.SetSystemSignature[*NameSystem](c, sig))

	assert.ElementsMatch(t, withName, names.Entities().Slice())

	stored, err := ecs.SystemSignature[*NameSystem](c)
	require.NoError(t, err)
	assert.Equal(t, sig, stored)
}

func TestGetComponentAliasingAcrossRemove(t *testing.T) {
	c := ecs.NewCoordinator()

	first, err := c.CreateEntity()
	require.NoError(t, err)
	last, err := c.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, ecs.AddComponent(c, first, Score(1)))
	require.NoError(t, ecs.AddComponent(c, last, Score(2)))

	held, err := ecs.GetComponent[Score](c, first)
	require.NoError(t, err)
	assert.Equal(t, Score(1), *held)

	// Removing first moves last's value into the slot held points at.
	require.NoError(t, ecs.RemoveComponent[Score](c, first))
	assert.Equal(t, Score(2), *held)

	fresh, err := ecs.GetComponent[Score](c, last)
	require.NoError(t, err)
	assert.Equal(t, Score(2), *fresh)
}

// checkMembership asserts that every system holds exactly the live entities
// whose signature contains the system's signature.
func checkMembership(t *testing.T, c *ecs.Coordinator, live map[ecs.Entity]bool) {
	t.Helper()
	stats := c.CollectStats()
	i := 0
	for sys := range c.Systems() {
		want := stats.Systems[i].Signature
		i++

		base, ok := sys.(interface{ Entities() *ecs.EntitySet })
		require.True(t, ok)
		set := base.Entities()

		for e := range live {
			sig, err := c.SignatureOf(e)
			require.NoError(t, err)
			assert.Equal(t, sig.Contains(want), set.Contains(e),
				"entity %d signature %s system signature %s", e, sig, want)
		}
		for e := range set.All() {
			assert.True(t, live[e], "dead entity %d still in system", e)
		}
	}
}

func TestMembershipInvariantRandomized(t *testing.T) {
	c, _, _ := newTestCoordinator(ecs.WithMaxEntities(64))
	rng := rand.New(rand.NewPCG(1, 2))
	live := make(map[ecs.Entity]bool)
	var order []ecs.Entity

	for step := range 2000 {
		switch op := rng.IntN(6); {
		case op == 0 || len(order) == 0:
			e, err := c.CreateEntity()
			if err != nil {
				require.ErrorIs(t, err, ecs.ErrCapacityExceeded)
				continue
			}
			live[e] = true
			order = append(order, e)
		case op == 1:
			idx := rng.IntN(len(order))
			e := order[idx]
			require.NoError(t, c.DestroyEntity(e))
			delete(live, e)
			order = append(order[:idx], order[idx+1:]...)
		default:
			e := order[rng.IntN(len(order))]
			switch rng.IntN(3) {
			case 0:
				toggle[Position](t, c, e, Position{X: float32(step)})
			case 1:
				toggle[Velocity](t, c, e, Velocity{DX: 1})
			case 2:
				toggle[Health](t, c, e, Health{Current: step})
			}
		}
		checkMembership(t, c, live)
	}
}

func toggle[T any](t *testing.T, c *ecs.Coordinator, e ecs.Entity, value T) {
	t.Helper()
	if ecs.HasComponent[T](c, e) {
		require.NoError(t, ecs.RemoveComponent[T](c, e))
		return
	}
	require.NoError(t, ecs.AddComponent(c, e, value))
}

func TestComponentAt(t *testing.T) {
	c := ecs.NewCoordinator()
	e, err := c.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, ecs.AddComponent(c, e, Name{Value: "inspect"}))

	slot, err := ecs.GetComponentType[Name](c)
	require.NoError(t, err)

	got, ok := c.ComponentAt(e, slot).(*Name)
	require.True(t, ok)
	assert.Equal(t, "inspect", got.Value)

	assert.Nil(t, c.ComponentAt(e, slot+1))
}
