package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/plus3/sigecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 5 * time.Millisecond}}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 5*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func newStressWorld(t *testing.T, maxEntities int) (*ecs.Coordinator, *systems) {
	t.Helper()
	c := ecs.NewCoordinator(ecs.WithMaxEntities(maxEntities))
	require.NoError(t, registerComponents(c))
	sys, err := registerSystems(c)
	require.NoError(t, err)
	return c, sys
}

func TestChurnerIsDeterministic(t *testing.T) {
	run := func() ([]ecs.Signature, ChurnStats) {
		c, _ := newStressWorld(t, 256)
		ch := NewChurner(c, 7, zap.NewNop())
		for range 100 {
			require.NoError(t, ch.Spawn())
		}
		ch.Step(500)

		var sigs []ecs.Signature
		for e := range c.Entities() {
			sig, err := c.SignatureOf(e)
			require.NoError(t, err)
			sigs = append(sigs, sig)
		}
		return sigs, ch.Stats
	}

	sigsA, statsA := run()
	sigsB, statsB := run()
	assert.Equal(t, sigsA, sigsB)
	assert.Equal(t, statsA, statsB)
	assert.Zero(t, statsA.Failed)
	assert.Positive(t, statsA.Destroyed)
}

func TestChurnerRespectsCapacity(t *testing.T) {
	c, _ := newStressWorld(t, 32)
	ch := NewChurner(c, 1, zap.NewNop())
	for range 32 {
		require.NoError(t, ch.Spawn())
	}
	_, err := c.CreateEntity()
	require.ErrorIs(t, err, ecs.ErrCapacityExceeded)

	ch.Step(1000)
	assert.LessOrEqual(t, c.LiveEntities(), 32)
	assert.Zero(t, ch.Stats.Failed)
}

func TestSystemsTrackChurn(t *testing.T) {
	c, sys := newStressWorld(t, 512)
	ch := NewChurner(c, 3, zap.NewNop())
	for range 400 {
		require.NoError(t, ch.Spawn())
	}

	scheduler := ecs.NewScheduler(c)
	for range 5 {
		ch.Step(50)
		scheduler.Once(0.5)
		require.NoError(t, scheduler.LastFlushError())
	}

	for e := range sys.census.Entities().All() {
		assert.True(t, ecs.HasComponent[Tag](c, e))
		assert.True(t, ecs.HasComponent[Position](c, e))
		assert.True(t, ecs.HasComponent[Health](c, e))
	}
	for e := range sys.movement.Entities().All() {
		assert.True(t, ecs.HasComponent[Velocity](c, e))
	}
	// Lifetime expiry flushes after the census ran.
	assert.GreaterOrEqual(t, sys.census.Last, sys.census.Entities().Len())
}

func TestReportGenerate(t *testing.T) {
	c, _ := newStressWorld(t, 128)
	ch := NewChurner(c, 9, zap.NewNop())
	for range 50 {
		require.NoError(t, ch.Spawn())
	}
	scheduler := ecs.NewScheduler(c)

	report := &Report{
		Duration:       20 * time.Millisecond,
		Entities:       50,
		MaxEntities:    128,
		ChurnPerFrame:  10,
		Seed:           9,
		Script:         "wrap.lua",
		GCPauseMetrics: true,
	}
	ctx, cancel := context.WithTimeout(context.Background(), report.Duration)
	defer cancel()
	simulate(ctx, scheduler, ch, report.ChurnPerFrame, report)
	report.Churn = ch.Stats
	report.World = c.CollectStats()
	report.Systems = scheduler.GetStats().Systems
	report.UpdateTime.Finalize()

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	out := buf.String()

	assert.Positive(t, report.TotalUpdates)
	assert.Contains(t, out, "# ECS Stress Test Report")
	assert.Contains(t, out, "- **Max Entities:** 128")
	assert.Contains(t, out, "- **Script:** wrap.lua")
	assert.Contains(t, out, "| MovementSystem |")
	assert.Contains(t, out, "| CensusSystem |")
	assert.Contains(t, out, "main.Position")
	assert.Contains(t, out, "## GC Pause Durations")
}
