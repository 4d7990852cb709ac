package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/config"
	"github.com/pthm-cable/arcglobe/scene"
	"github.com/pthm-cable/arcglobe/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	replay := flag.String("replay", "", "Snapshot file to replay links from")
	outputDir := flag.String("output-dir", "", "Output directory for CSV tables and config snapshot")
	seed := flag.Int64("seed", 0, "Sampling seed (0 = links.seed from config, then time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	dt := flag.Float64("dt", 1.0/60.0, "Headless frame step in seconds")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Links.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := scene.Options{
		Seed:        rngSeed,
		OutputDir:   *outputDir,
		LogStats:    *logStats,
		SnapshotDir: *snapshotDir,
		Replay:      *replay,
	}

	if *headless {
		// Headless mode - CPU kernels only, no raylib window
		s, err := scene.New(opts)
		if err != nil {
			slog.Error("failed to build scene", "error", err)
			os.Exit(1)
		}
		defer s.Unload()

		slog.Info("starting headless run",
			"seed", rngSeed,
			"max_frames", *maxFrames,
			"dt", *dt,
		)

		for {
			if err := s.Tick(*dt); err != nil {
				slog.Error("frame failed", "error", err)
				return
			}
			if *maxFrames > 0 && s.Frame() >= *maxFrames {
				slog.Info("max frames reached", "frame", s.Frame())
				if *snapshotDir != "" {
					if _, err := s.SaveSnapshot(); err != nil {
						slog.Error("snapshot failed", "error", err)
					}
				}
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Arc Globe")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := scene.New(opts)
	if err != nil {
		slog.Error("failed to build scene", "error", err)
		return
	}
	defer s.Unload()

	v := viewer.New(s)
	defer v.Unload()

	for !rl.WindowShouldClose() {
		if err := v.Update(); err != nil {
			slog.Error("frame failed", "error", err)
			break
		}
		v.Draw()

		if *maxFrames > 0 && s.Frame() >= *maxFrames {
			break
		}
	}
}
