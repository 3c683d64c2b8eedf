package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/plus3/marionette/ecs"
	"github.com/plus3/marionette/scripting"
)

//go:embed behavior.js
var defaultBehavior string

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

// Pulse is broadcast to every scripted entity once per frame.
type Pulse struct {
	Frame    int
	Strength float64
}

// Config selects the scripted behavior under test. With no config file the
// embedded behavior.js is used.
type Config struct {
	Paths  []string `yaml:"paths"`
	Module string   `yaml:"module"`
	Class  string   `yaml:"class"`
	Args   []any    `yaml:"args"`
}

func defaultConfig() Config {
	return Config{
		Paths:  []string{"scripts"},
		Module: "behavior",
		Class:  "Drone",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 1000, "The number of scripted entities to create.")
	configPath := flag.String("config", "", "Optional YAML config selecting the script under test.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting script bridge stress test...")

	// 1. Setup the world and the script bridge
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	world := ecs.NewWorld(registry)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	opts := []scripting.Option{
		scripting.WithSearchPaths(cfg.Paths...),
		scripting.WithLogger(logger),
	}
	if *configPath == "" {
		opts = append(opts, scripting.WithSourceLoader(func(path string) ([]byte, error) {
			if path == "scripts/behavior.js" {
				return []byte(defaultBehavior), nil
			}
			return nil, scripting.ModuleUnavailableError
		}))
	}
	sys := scripting.NewSystem(world, opts...)
	scripting.ExposeComponent[Position](sys, "Position")
	scripting.ExposeComponent[Velocity](sys, "Velocity")
	scripting.ExposeEvent[Pulse](sys, "Pulse")
	scripting.AddBroadcastProxy[Pulse](sys, "onPulse")

	// 2. Populate the world with scripted entities
	log.Printf("Populating world with %d scripted entities (%s.%s)...\n", *entityCount, cfg.Module, cfg.Class)
	for i := 0; i < *entityCount; i++ {
		e := world.CreateEntity()
		if _, err := ecs.Assign(world, e, scripting.NewScript(cfg.Module, cfg.Class, cfg.Args...)); err != nil {
			log.Fatalf("Failed to realize %s.%s: %v", cfg.Module, cfg.Class, err)
		}
	}
	log.Println("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Module:         cfg.Module,
		Class:          cfg.Class,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
		BroadcastTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := sys.Advance(float64(deltaTime) / float64(time.Second)); err != nil {
				log.Fatalf("Script update failed: %v", err)
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

			broadcastStart := time.Now()
			if err := ecs.Publish(world.Events(), Pulse{Frame: frame, Strength: 0.01}); err != nil {
				log.Fatalf("Broadcast delivery failed: %v", err)
			}
			report.BroadcastTime.Samples = append(report.BroadcastTime.Samples, time.Since(broadcastStart))

			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.BroadcastTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
