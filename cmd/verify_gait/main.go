// Package main runs the gait scenarios headlessly and prints a YAML trace.
//
// Usage:
//
//	go run ./cmd/verify_gait [flags]
//
// Flags:
//
//	--config <path>     Rig config file (default data/rig.yaml)
//	--scenario <name>   walk | stationary | circle | reach (default walk)
//	--frames <n>        Number of frames to simulate (default 320)
//	--dt <seconds>      Frame time (default 0.0625)
//	--speed <m/s>       Root speed for walk/circle (default 1.0)
//	--trace             Include the per-frame trace in the output
//	--bones <path>      Named-bone fixture (YAML) instead of the default humanoid
//
// The program exits with status 1 when both feet were ever Moving at once
// or a swing took longer than 1/footMoveSpeed.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/rig"
	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/types"
)

var (
	configFlag   = flag.String("config", "data/rig.yaml", "Rig config file")
	scenarioFlag = flag.String("scenario", "walk", "Scenario: walk | stationary | circle | reach")
	framesFlag   = flag.Int("frames", 320, "Number of frames to simulate")
	dtFlag       = flag.Float64("dt", 1.0/16, "Frame time in seconds")
	speedFlag    = flag.Float64("speed", 1.0, "Root speed in m/s")
	traceFlag    = flag.Bool("trace", false, "Include the per-frame trace")
	bonesFlag    = flag.String("bones", "", "Named-bone fixture (YAML), empty uses the default humanoid")
)

// FootRecord 一只脚在某一帧的状态
type FootRecord struct {
	Mode     string     `yaml:"mode"`
	Phase    string     `yaml:"phase,omitempty"`
	Timer    float64    `yaml:"timer"`
	Position [3]float64 `yaml:"position,flow"`
}

// FrameRecord 一帧的记录
type FrameRecord struct {
	Frame int        `yaml:"frame"`
	Time  float64    `yaml:"time"`
	Root  [3]float64 `yaml:"root,flow"`
	Left  FootRecord `yaml:"left"`
	Right FootRecord `yaml:"right"`
}

// SwingRecord 一次迈步
type SwingRecord struct {
	Foot     string  `yaml:"foot"`
	Start    int     `yaml:"start"`
	End      int     `yaml:"end"`
	Duration float64 `yaml:"duration"`
}

// Summary 场景结果汇总
type Summary struct {
	Swings       int     `yaml:"swings"`
	Overlaps     int     `yaml:"overlaps"`
	LongSwings   int     `yaml:"longSwings"`
	MaxSwing     float64 `yaml:"maxSwing"`
	Alternating  bool    `yaml:"alternating"`
	FinalLeft    string  `yaml:"finalLeft"`
	FinalRight   string  `yaml:"finalRight"`
	LeftSteps    int     `yaml:"leftSteps"`
	RightSteps   int     `yaml:"rightSteps"`
	PhaseWrapsL  int     `yaml:"phaseWrapsLeft,omitempty"`
	PhaseWrapsR  int     `yaml:"phaseWrapsRight,omitempty"`
	ReachTrigger bool    `yaml:"reachTriggered,omitempty"`
}

// Report 输出文档
type Report struct {
	Scenario string            `yaml:"scenario"`
	Frames   int               `yaml:"frames"`
	Dt       float64           `yaml:"dt"`
	Config   *config.RigConfig `yaml:"config"`
	Summary  Summary           `yaml:"summary"`
	Swings   []SwingRecord     `yaml:"swings,omitempty"`
	Trace    []FrameRecord     `yaml:"trace,omitempty"`
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Printf("Warning: %v (using defaults)", err)
		cfg = config.Default()
	}

	skel := skeleton.NewDefaultHumanoid(types.IdentityPose(), true)
	if *bonesFlag != "" {
		if skel, err = loadNamedRig(*bonesFlag); err != nil {
			log.Fatalf("Failed to load bones: %v", err)
		}
	}

	report, err := run(*scenarioFlag, skel, cfg, *framesFlag, *dtFlag, *speedFlag)
	if err != nil {
		log.Fatalf("Scenario failed: %v", err)
	}
	if !*traceFlag {
		report.Trace = nil
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	enc.Close()

	if report.Summary.Overlaps > 0 || report.Summary.LongSwings > 0 {
		os.Exit(1)
	}
}

// run 执行一个场景
func run(scenario string, skel *skeleton.Humanoid, cfg *config.RigConfig, frames int, dt, speed float64) (*Report, error) {
	if frames <= 0 || dt <= 0 {
		return nil, fmt.Errorf("frames and dt must be positive")
	}

	table := solver.NewTable()
	ctrl := rig.NewController(skel, table, cfg)
	if !ctrl.Activate() {
		return nil, fmt.Errorf("controller did not activate")
	}
	defer ctrl.Deactivate()

	report := &Report{Scenario: scenario, Frames: frames, Dt: dt, Config: ctrl.Config()}
	tracker := newSwingTracker(dt, ctrl.Config().Placement.FootMoveSpeed)

	for frame := 1; frame <= frames; frame++ {
		var velocity mgl64.Vec3
		switch scenario {
		case "walk":
			velocity = mgl64.Vec3{0, 0, speed}
		case "circle":
			// 半径 2m 的圆周
			angle := float64(frame) * dt * speed / 2
			velocity = mgl64.Vec3{math.Cos(angle), 0, math.Sin(angle)}.Mul(speed)
		case "stationary":
		case "reach":
			if frame == frames/2 {
				if id, ok := ctrl.EndpointID(types.LimbLeftFoot); ok {
					table.ForceOutOfReach(id, true)
				}
			}
		default:
			return nil, fmt.Errorf("unknown scenario %q", scenario)
		}

		skel.Translate(velocity.Mul(dt))
		ctrl.Update(rig.FrameInput{Dt: dt, RootVelocity: &velocity})

		left, _ := ctrl.FootState(types.LimbLeftFoot)
		right, _ := ctrl.FootState(types.LimbRightFoot)
		tracker.observe(frame, left.Mode, right.Mode)

		if scenario == "reach" && frame == frames/2 && left.Mode == components.FootMoving {
			report.Summary.ReachTrigger = true
		}

		report.Trace = append(report.Trace, FrameRecord{
			Frame: frame,
			Time:  float64(frame) * dt,
			Root:  vec(skel.Root().Position),
			Left:  footRecord(ctrl, types.LimbLeftFoot),
			Right: footRecord(ctrl, types.LimbRightFoot),
		})
	}

	left, _ := ctrl.FootState(types.LimbLeftFoot)
	right, _ := ctrl.FootState(types.LimbRightFoot)
	gl, _ := ctrl.GaitState(types.LimbLeftFoot)
	gr, _ := ctrl.GaitState(types.LimbRightFoot)

	s := &report.Summary
	s.Swings = len(tracker.swings)
	s.Overlaps = tracker.overlaps
	s.LongSwings = tracker.long
	s.MaxSwing = tracker.maxSwing
	s.Alternating = tracker.alternating()
	s.FinalLeft, s.FinalRight = left.Mode.String(), right.Mode.String()
	s.LeftSteps, s.RightSteps = left.Steps, right.Steps
	if ctrl.Config().Strategy == config.StrategyPhase {
		s.PhaseWrapsL, s.PhaseWrapsR = gl.Wraps, gr.Wraps
	}
	report.Swings = tracker.swings
	return report, nil
}

func footRecord(ctrl *rig.Controller, limb types.Limb) FootRecord {
	rec := FootRecord{Position: vec(ctrl.Targets()[limb].Position)}
	if fp, ok := ctrl.FootState(limb); ok {
		rec.Mode = fp.Mode.String()
		rec.Timer = fp.Timer
	}
	if ctrl.Config().Strategy == config.StrategyPhase {
		if g, ok := ctrl.GaitState(limb); ok {
			rec.Phase = g.Phase.String()
		}
	}
	return rec
}

func vec(v mgl64.Vec3) [3]float64 {
	round := func(f float64) float64 { return math.Round(f*1e4) / 1e4 }
	return [3]float64{round(v.X()), round(v.Y()), round(v.Z())}
}

// swingTracker 统计迈步区间
type swingTracker struct {
	dt       float64
	limit    float64
	start    map[string]int
	prev     map[string]components.FootMode
	swings   []SwingRecord
	overlaps int
	long     int
	maxSwing float64
}

func newSwingTracker(dt, footMoveSpeed float64) *swingTracker {
	return &swingTracker{
		dt:    dt,
		limit: 1 / footMoveSpeed,
		start: map[string]int{},
		prev:  map[string]components.FootMode{},
	}
}

func (t *swingTracker) observe(frame int, left, right components.FootMode) {
	if left == components.FootMoving && right == components.FootMoving {
		t.overlaps++
	}
	for _, f := range []struct {
		name string
		mode components.FootMode
	}{{"left", left}, {"right", right}} {
		prev := t.prev[f.name]
		if prev != components.FootMoving && f.mode == components.FootMoving {
			t.start[f.name] = frame
		}
		if prev == components.FootMoving && f.mode != components.FootMoving {
			d := float64(frame-t.start[f.name]) * t.dt
			t.swings = append(t.swings, SwingRecord{Foot: f.name, Start: t.start[f.name], End: frame, Duration: d})
			if d > t.maxSwing {
				t.maxSwing = d
			}
			if d > t.limit+1e-9 {
				t.long++
			}
		}
		t.prev[f.name] = f.mode
	}
}

func (t *swingTracker) alternating() bool {
	for i := 1; i < len(t.swings); i++ {
		if t.swings[i].Foot == t.swings[i-1].Foot {
			return false
		}
	}
	return true
}
