package ecs

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler executes the systems registered on a Coordinator one after
// another, in registration order, and flushes the frame's command buffer
// once all of them ran.
type Scheduler struct {
	coordinator *Coordinator
	log         *zap.Logger
	stats       map[reflect.Type]*systemStatsInternal
	order       []*systemStatsInternal
	lastFlush   error
}

// NewScheduler creates a new scheduler for the given coordinator.
func NewScheduler(c *Coordinator) *Scheduler {
	return &Scheduler{
		coordinator: c,
		log:         c.log.Named("scheduler"),
		stats:       make(map[reflect.Type]*systemStatsInternal),
	}
}

func (s *Scheduler) statsFor(system System) *systemStatsInternal {
	t := reflect.TypeOf(system)
	stats, ok := s.stats[t]
	if !ok {
		stats = &systemStatsInternal{
			name:        systemName(t),
			minDuration: time.Duration(1<<63 - 1),
		}
		s.stats[t] = stats
		s.order = append(s.order, stats)
	}
	return stats
}

// Once executes all registered systems once with the given delta time and
// applies the commands they queued. Command failures are logged and kept
// for LastFlushError.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.coordinator)

	for system := range s.coordinator.Systems() {
		start := time.Now()
		system.Execute(frame)
		duration := time.Since(start)

		stats := s.statsFor(system)
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	s.lastFlush = frame.Commands.Flush(s.coordinator)
	if s.lastFlush != nil {
		s.log.Warn("frame commands failed", zap.Error(s.lastFlush))
	}
}

// LastFlushError returns the combined command errors of the latest frame.
func (s *Scheduler) LastFlushError() error {
	return s.lastFlush
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: s.coordinator.systems.Len(),
		Systems:     make([]SystemStats, len(s.order)),
	}

	var totalExecs int64
	for i, internal := range s.order {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
