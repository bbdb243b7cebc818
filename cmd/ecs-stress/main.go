// ecs-stress drives a Coordinator with random structural churn for a fixed
// duration and prints a markdown report of frame times, system timings and
// memory usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/sigecs/ecs"
	"github.com/plus3/sigecs/ecs/script"
	"github.com/plus3/sigecs/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	configPath := flag.String("config", "", "Optional TOML or YAML config file.")
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	churn := flag.Int("churn", 100, "Random mutations applied before every frame.")
	seed := flag.Uint64("seed", 1, "Seed for the churn generator.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a cpu, mem or allocs profile.")
	scriptPath := flag.String("script", "", "Lua file whose update function runs as an extra system.")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "churn":
			cfg.Stress.ChurnPerFrame = *churn
		case "seed":
			cfg.Stress.Seed = *seed
		case "gc-pause-metrics":
			cfg.Stress.GCPauseMetrics = *gcPauseMetrics
		case "profile":
			cfg.Profile.Mode = *profileMode
		case "script":
			cfg.Stress.Script = *scriptPath
		}
	})

	return cfg, cfg.Validate()
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "allocs":
		mode = profile.MemProfileAllocs
	default:
		return nil
	}
	return profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
}

// scriptBindings expose the numeric fields a stress script may touch.
var scriptBindings = []script.Binding{
	script.Field("x", func(p *Position) float64 { return p.X }, func(p *Position, v float64) { p.X = v }),
	script.Field("y", func(p *Position) float64 { return p.Y }, func(p *Position, v float64) { p.Y = v }),
	script.Field("dx", func(v *Velocity) float64 { return v.DX }, func(v *Velocity, f float64) { v.DX = f }),
	script.Field("dy", func(v *Velocity) float64 { return v.DY }, func(v *Velocity, f float64) { v.DY = f }),
	script.Field("heat", func(h *Heat) float64 { return h.Celsius }, func(h *Heat, v float64) { h.Celsius = v }),
	script.Field("health", func(h *Health) float64 { return float64(h.Current) }, func(h *Health, v float64) { h.Current = int(v) }),
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	log.Info("starting ECS stress test",
		zap.Duration("duration", cfg.Stress.Duration),
		zap.Int("entities", cfg.Stress.Entities),
		zap.Int("max_entities", cfg.Stress.MaxEntities),
		zap.Uint64("seed", cfg.Stress.Seed),
	)

	c := ecs.NewCoordinator(ecs.WithLogger(log.Named("ecs")), ecs.WithMaxEntities(cfg.Stress.MaxEntities))
	if err := registerComponents(c); err != nil {
		return err
	}
	stressSystems, err := registerSystems(c)
	if err != nil {
		return err
	}
	if cfg.Stress.Script != "" {
		lua, err := script.NewLuaSystemFromFile(cfg.Stress.Script, log.Named("lua"), scriptBindings...)
		if err != nil {
			return err
		}
		defer lua.Close()
		if _, err := install(c, lua, ecs.Require[Position]); err != nil {
			return err
		}
	}
	scheduler := ecs.NewScheduler(c)

	churner := NewChurner(c, cfg.Stress.Seed, log.Named("churn"))
	log.Info("populating coordinator", zap.Int("entities", cfg.Stress.Entities))
	for range cfg.Stress.Entities {
		if err := churner.Spawn(); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
	}
	log.Info("population complete", zap.Int("live", c.LiveEntities()))

	report := &Report{
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		MaxEntities:    cfg.Stress.MaxEntities,
		ChurnPerFrame:  cfg.Stress.ChurnPerFrame,
		Seed:           cfg.Stress.Seed,
		Script:         cfg.Stress.Script,
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()
	simulate(ctx, scheduler, churner, cfg.Stress.ChurnPerFrame, report)

	report.Churn = churner.Stats
	report.Expired = stressSystems.lifetime.Expired
	report.Tagged = stressSystems.census.Last
	report.World = c.CollectStats()
	report.Systems = scheduler.GetStats().Systems
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("simulation finished",
		zap.Int64("updates", report.TotalUpdates),
		zap.Duration("avg_frame", report.UpdateTime.Avg),
		zap.Int("live", report.World.LiveEntities),
	)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")
	return nil
}

// simulate alternates churn and scheduler frames until ctx expires.
func simulate(ctx context.Context, scheduler *ecs.Scheduler, churner *Churner, churn int, report *Report) {
	startTime := time.Now()
	lastFrameTime := startTime

	for ctx.Err() == nil {
		churner.Step(churn)

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		scheduler.Once(deltaTime.Seconds())
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		report.TotalUpdates++

		if scheduler.LastFlushError() != nil {
			report.FlushErrors++
		}
	}
	report.TotalTime = time.Since(startTime)
}
