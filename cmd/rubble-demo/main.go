package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gekko3d/rubble"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/segmentio/encoding/json"
)

// Keeps the config field names intact under obfuscated builds so the cli
// package still derives readable flags from them.
var _ = reflect.TypeOf(config{})

type config struct {
	Config      string        `cli:"" env:"RUBBLE_CONFIG"       help:"YAML simulation config file."`
	Preset      string        `cli:"" env:"RUBBLE_PRESET"       help:"JSON block layout to load instead of the built-in test scene."`
	SavePreset  string        `cli:"" env:"-"                   help:"Write the block layout to this JSON file before simulating."`
	Ticks       int           `cli:"" env:"RUBBLE_TICKS"        help:"Number of ticks to simulate."`
	Dt          time.Duration `cli:"" env:"RUBBLE_DT"           help:"Timestep of one tick."`
	Destroy     int           `cli:"" env:"RUBBLE_DESTROY"      help:"Number of blocks to shoot at before simulating."`
	Eternal     bool          `cli:"" env:"RUBBLE_ETERNAL"      help:"Keep debris forever."`
	SliceY      int           `cli:"" env:"-"                   help:"Grid layer written by -slice-out."`
	SliceOut    string        `cli:"" env:"-"                   help:"Write a PNG of one grid layer after simulating."`
	MetricsAddr string        `cli:"" env:"RUBBLE_METRICS_ADDR" help:"Serve Prometheus metrics on this address and keep simulating until a signal."`
	LogLevel    string        `cli:"" env:"RUBBLE_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	Help        bool          `cli:"" env:"-"                   help:"Show help."`
}

func main() {
	conf := config{
		Ticks:    600,
		Dt:       time.Second / 60,
		Destroy:  6,
		SliceY:   1,
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Destroys blocks of a voxel scene and simulates the debris headlessly.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	simConf, err := rubble.LoadConfig(conf.Config)
	if err != nil {
		logs.Fatal(errors.New("loading config failed").Wrap(err))
	}
	simConf.Fracture.Eternal = simConf.Fracture.Eternal || conf.Eternal
	simConf.Sim.Debug = simConf.Sim.Debug || conf.LogLevel == "debug"

	sim, err := rubble.NewSimulation(simConf, &toolingLogger{debug: simConf.Sim.Debug})
	if err != nil {
		logs.Fatal(errors.New("creating simulation failed").Wrap(err))
	}

	if conf.Preset != "" {
		n, err := rubble.LoadPreset(sim.World(), conf.Preset)
		if err != nil {
			logs.Fatal(errors.New("loading preset failed").Wrap(err))
		}
		logs.WithTag("preset", conf.Preset).
			WithTag("blocks", n).
			Info("preset loaded")
	} else {
		buildTestScene(sim)
	}

	if conf.SavePreset != "" {
		if err := rubble.SavePreset(sim.World(), "rubble-demo", conf.SavePreset); err != nil {
			logs.Warn(errors.New("saving preset failed").Wrap(err))
		}
	}

	eye := mgl32.Vec3{0, 2, -6}
	sim.Viewer().Position = eye
	shootBlocks(sim, eye, conf.Destroy)

	start := time.Now()
	for i := 0; i < conf.Ticks; i++ {
		sim.Step(conf.Dt)
	}
	frame := sim.Meshes()

	entry := logs.WithTag("ticks", conf.Ticks).
		WithTag("elapsed", time.Since(start).String()).
		WithTag("blocks_active", sim.World().ActiveCount()).
		WithTag("fragments_live", len(sim.Fragments())).
		WithTag("fractures", len(sim.Events()))
	if frame != nil {
		entry = entry.
			WithTag("block_triangles", frame.Blocks.TriangleCount()).
			WithTag("fragment_triangles", frame.Fragments.TriangleCount())
	}
	entry.Info("simulation finished")

	if conf.SliceOut != "" {
		img := rubble.ScaleImage(rubble.SliceImage(sim.World(), conf.SliceY), 4)
		rubble.LabelImage(img, fmt.Sprintf("y=%d", conf.SliceY))
		if err := rubble.WritePNG(conf.SliceOut, img); err != nil {
			logs.Warn(errors.New("writing grid slice failed").Wrap(err))
		}
	}

	if conf.MetricsAddr != "" && simConf.Metrics.Enabled {
		serveMetrics(ctx, conf.MetricsAddr, sim, conf.Dt)
	}
}

// buildTestScene lays a ground slab with a small tower in the middle.
func buildTestScene(sim *rubble.Simulation) {
	ground := mgl32.Vec3{0.35, 0.4, 0.3}
	stone := mgl32.Vec3{0.62, 0.6, 0.56}

	for x := -8; x <= 8; x++ {
		for z := -8; z <= 8; z++ {
			sim.AddBlock(mgl32.Vec3{float32(x), 0, float32(z)}, ground, rubble.BlockGround)
		}
	}
	for x := -1; x <= 1; x++ {
		for y := 1; y <= 5; y++ {
			for z := -1; z <= 1; z++ {
				sim.AddBlock(mgl32.Vec3{float32(x), float32(y), float32(z)}, stone, rubble.BlockBuilding)
			}
		}
	}
	sim.World().RebuildGrid()
}

// shootBlocks aims at the tower from eye, sweeping upwards, and destroys
// whatever each ray hits first.
func shootBlocks(sim *rubble.Simulation, eye mgl32.Vec3, n int) {
	for i := 0; i < n; i++ {
		target := mgl32.Vec3{0, 1 + float32(i%5), 0}
		hit, ok := sim.Raycast(eye, target.Sub(eye), rubble.DefaultReach)
		if !ok {
			logs.WithTag("target", target).Debug("no block in reach")
			continue
		}
		sim.DestroyBlock(hit.Block)
	}
}

// serveMetrics exposes the simulation metrics and keeps ticking the
// simulation on wall-clock time until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, sim *rubble.Simulation, dt time.Duration) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", sim.Metrics().Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logs.WithTag("addr", addr).Info("serving metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Warn(errors.New("metrics server stopped").Wrap(err))
		}
	}()

	sim.Run(ctx, dt)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Warn(errors.New("shutting down metrics server failed").Wrap(err))
	}
}

// toolingLogger routes simulation logs through the process logger.
type toolingLogger struct {
	debug bool
}

func (l *toolingLogger) DebugEnabled() bool    { return l.debug }
func (l *toolingLogger) SetDebug(enabled bool) { l.debug = enabled }

func (l *toolingLogger) Debugf(format string, args ...any) {
	if l.debug {
		logs.WithTag("component", "rubble").Debug(fmt.Sprintf(format, args...))
	}
}

func (l *toolingLogger) Infof(format string, args ...any) {
	logs.WithTag("component", "rubble").Info(fmt.Sprintf(format, args...))
}

func (l *toolingLogger) Warnf(format string, args ...any) {
	logs.Warn(errors.Newf(format, args...).WithTag("component", "rubble"))
}

func (l *toolingLogger) Errorf(format string, args ...any) {
	logs.Warn(errors.Newf(format, args...).
		WithTag("component", "rubble").
		WithTag("severity", "error"))
}
