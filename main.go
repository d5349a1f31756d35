// Package main provides an interactive viewer for the procedural limb targets.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--preset <name>    Start with an embedded preset (e.g., --preset=run)
//	--verbose          Enable verbose logging
//
// Controls:
//
//	Arrow keys   - Walk the character on the ground plane
//	Shift        - Run (double speed)
//	1 / 2 / 3 / 4 - Toggle hand IK / foot IK / hip IK / move feet
//	Tab          - Switch gait strategy (reactive / phase)
//	P            - Cycle embedded presets
//	S            - Save current tuning
//	R            - Re-activate (reset all gait state)
//	Q/Escape     - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/embedded"
	"github.com/gonewx/legwork/pkg/rig"
	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/tuning"
	"github.com/gonewx/legwork/pkg/types"
)

const (
	screenWidth  = 960
	screenHeight = 540

	// 俯视图和侧视图各占一半，每米像素数
	pixelsPerMeter = 120.0

	walkSpeed     = 1.2
	segmentLength = 0.45
)

var (
	presetFlag  = flag.String("preset", "", "Start with an embedded preset")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

var errQuit = errors.New("quit")

// 标记颜色
var markerColors = map[rig.MarkerTag]color.RGBA{
	rig.TagHeadTarget:  {R: 255, G: 220, B: 60, A: 255},
	rig.TagHandTarget:  {R: 90, G: 200, B: 255, A: 255},
	rig.TagFootIdle:    {R: 120, G: 230, B: 120, A: 255},
	rig.TagFootMoving:  {R: 255, G: 110, B: 90, A: 255},
	rig.TagFootTimeout: {R: 200, G: 160, B: 255, A: 255},
	rig.TagPole:        {R: 140, G: 140, B: 140, A: 255},
}

// ViewerGame implements ebiten.Game for the limb target viewer
type ViewerGame struct {
	skeleton   *skeleton.Humanoid
	solver     *solver.Table
	controller *rig.Controller
	tuning     *tuning.Manager

	presets     []string
	presetIndex int

	velocity      mgl64.Vec3
	statusMessage string
}

// NewViewerGame creates the viewer with the embedded default config
func NewViewerGame() (*ViewerGame, error) {
	base, err := embedded.LoadRigConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	tm := tuning.NewManager(tuning.Open(tuning.AppName), base)

	presets, err := embedded.PresetNames()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	skel := skeleton.NewDefaultHumanoid(types.IdentityPose(), true)
	table := solver.NewTable()
	table.Reach = solver.MaxReach(chainRootFor(skel), segmentLength)

	g := &ViewerGame{
		skeleton:    skel,
		solver:      table,
		controller:  rig.NewController(skel, table, tm.Config()),
		tuning:      tm,
		presets:     presets,
		presetIndex: -1,
	}

	if *presetFlag != "" {
		if err := g.applyPreset(*presetFlag); err != nil {
			return nil, err
		}
	}

	if !g.controller.Activate() {
		return nil, fmt.Errorf("failed to activate controller")
	}
	return g, nil
}

// chainRootFor 返回每个肢体 IK 链的根骨骼位置
func chainRootFor(skel *skeleton.Humanoid) func(types.Limb) (mgl64.Vec3, bool) {
	roles := map[types.Limb][]skeleton.BoneRole{
		types.LimbLeftHand:  {skeleton.BoneLeftShoulder, skeleton.BoneHead},
		types.LimbRightHand: {skeleton.BoneRightShoulder, skeleton.BoneHead},
		types.LimbLeftFoot:  {skeleton.BoneLeftUpperLeg},
		types.LimbRightFoot: {skeleton.BoneRightUpperLeg},
	}
	return func(limb types.Limb) (mgl64.Vec3, bool) {
		for _, role := range roles[limb] {
			if pose, ok := skel.Bone(role); ok {
				return pose.Position, true
			}
		}
		return mgl64.Vec3{}, false
	}
}

func (g *ViewerGame) applyPreset(name string) error {
	cfg, err := embedded.LoadPreset(name)
	if err != nil {
		return err
	}
	if err := g.controller.SetConfig(cfg); err != nil {
		return err
	}
	if err := g.tuning.SetConfig(cfg); err != nil {
		return err
	}
	g.statusMessage = "preset: " + name
	return nil
}

// Update advances the character and the controller by one tick
func (g *ViewerGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	g.handleToggles()

	dt := 1.0 / float64(ebiten.TPS())
	g.velocity = readVelocity()
	g.skeleton.Translate(g.velocity.Mul(dt))

	v := g.velocity
	g.controller.Update(rig.FrameInput{Dt: dt, RootVelocity: &v})
	return nil
}

func (g *ViewerGame) handleToggles() {
	flags := g.controller.Flags()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		flags.HandIK = !flags.HandIK
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		flags.FootIK = !flags.FootIK
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		flags.HipIK = !flags.HipIK
	case inpututil.IsKeyJustPressed(ebiten.Key4):
		flags.MoveFeet = !flags.MoveFeet
	}
	g.controller.SetFlags(flags)

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		cfg := g.controller.Config()
		if cfg.Strategy == config.StrategyPhase {
			cfg.Strategy = config.StrategyReactive
		} else {
			cfg.Strategy = config.StrategyPhase
		}
		if err := g.controller.SetConfig(cfg); err != nil {
			g.statusMessage = err.Error()
		} else {
			g.statusMessage = "strategy: " + string(cfg.Strategy)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) && len(g.presets) > 0 {
		g.presetIndex = (g.presetIndex + 1) % len(g.presets)
		if err := g.applyPreset(g.presets[g.presetIndex]); err != nil {
			g.statusMessage = err.Error()
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.tuning.SetConfig(g.controller.Config()); err != nil {
			g.statusMessage = err.Error()
		} else if err := g.tuning.Save(); err != nil {
			g.statusMessage = err.Error()
		} else {
			g.statusMessage = "tuning saved"
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.controller.Activate()
		g.statusMessage = "re-activated"
	}
}

func readVelocity() mgl64.Vec3 {
	var v mgl64.Vec3
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v[2]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v[2]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v[0]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v[0]--
	}
	if v.LenSqr() == 0 {
		return v
	}
	speed := walkSpeed
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		speed *= 2
	}
	return v.Normalize().Mul(speed)
}

// Draw renders a top view (left) and a side view (right) centred on the character
func (g *ViewerGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 26, B: 32, A: 255})

	half := float32(screenWidth / 2)
	vector.StrokeLine(screen, half, 0, half, screenHeight, 1, color.RGBA{R: 70, G: 70, B: 80, A: 255}, false)

	root := g.skeleton.Root().Position
	g.drawGrid(screen, root)

	// 俯视图：X → 右，Z → 上
	top := func(p mgl64.Vec3) (float32, float32) {
		return half/2 + float32((p.X()-root.X())*pixelsPerMeter),
			screenHeight/2 - float32((p.Z()-root.Z())*pixelsPerMeter)
	}
	// 侧视图：Z → 右，Y → 上
	side := func(p mgl64.Vec3) (float32, float32) {
		return half + half/2 + float32((p.Z()-root.Z())*pixelsPerMeter),
			screenHeight - 60 - float32((p.Y()-root.Y())*pixelsPerMeter)
	}

	vector.StrokeLine(screen, half, screenHeight-60, screenWidth, screenHeight-60, 1, color.RGBA{R: 90, G: 90, B: 90, A: 255}, false)

	for _, m := range g.controller.Diagnostics() {
		clr := markerColors[m.Tag]
		size := float32(8)
		if m.Tag == rig.TagPole {
			size = 5
		}
		x, y := top(m.Position)
		vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, clr, false)
		x, y = side(m.Position)
		vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, clr, false)
	}

	// 骨骼：髋部和头部
	for _, role := range []skeleton.BoneRole{skeleton.BoneHips, skeleton.BoneHead} {
		if pose, ok := g.skeleton.Bone(role); ok {
			x, y := side(pose.Position)
			vector.StrokeRect(screen, x-6, y-6, 12, 12, 1, color.White, false)
		}
	}

	ebitenutil.DebugPrint(screen, g.statusText())
}

func (g *ViewerGame) drawGrid(screen *ebiten.Image, root mgl64.Vec3) {
	cfg := g.controller.Config()
	step := cfg.Placement.MinStepDistance
	if step <= 0 {
		return
	}
	half := float32(screenWidth / 2)
	gridColor := color.RGBA{R: 40, G: 44, B: 52, A: 255}
	px := float32(step * pixelsPerMeter)
	if px < 4 {
		return
	}
	offX := float32(groundMod(root.X(), step) * pixelsPerMeter)
	offZ := float32(groundMod(root.Z(), step) * pixelsPerMeter)
	for x := half/2 - offX; x < half; x += px {
		vector.StrokeLine(screen, x, 0, x, screenHeight, 1, gridColor, false)
	}
	for x := half/2 - offX - px; x > 0; x -= px {
		vector.StrokeLine(screen, x, 0, x, screenHeight, 1, gridColor, false)
	}
	for y := float32(screenHeight/2) + offZ; y < screenHeight; y += px {
		vector.StrokeLine(screen, 0, y, half, y, 1, gridColor, false)
	}
	for y := float32(screenHeight/2) + offZ - px; y > 0; y -= px {
		vector.StrokeLine(screen, 0, y, half, y, 1, gridColor, false)
	}
}

// groundMod 返回 v 对 m 取模的非负余数
func groundMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

func (g *ViewerGame) statusText() string {
	cfg := g.controller.Config()
	flags := cfg.Flags
	var sb strings.Builder
	fmt.Fprintf(&sb, "strategy=%s  speed=%.2f m/s\n", cfg.Strategy, g.velocity.Len())
	fmt.Fprintf(&sb, "[1]handIK=%v [2]footIK=%v [3]hipIK=%v [4]moveFeet=%v\n",
		flags.HandIK, flags.FootIK, flags.HipIK, flags.MoveFeet)
	for _, limb := range []types.Limb{types.LimbLeftFoot, types.LimbRightFoot} {
		if cfg.Strategy == config.StrategyPhase {
			if st, ok := g.controller.GaitState(limb); ok {
				fmt.Fprintf(&sb, "%-9s phase=%-8s t=%.2f\n", limb, st.Phase, st.Progress())
			}
			continue
		}
		if st, ok := g.controller.FootState(limb); ok {
			fmt.Fprintf(&sb, "%-9s mode=%-7s timer=%.2f steps=%d\n", limb, st.Mode, st.Timer, st.Steps)
		}
	}
	if g.statusMessage != "" {
		sb.WriteString(g.statusMessage)
	}
	return sb.String()
}

// Layout returns the viewer's logical screen size
func (g *ViewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	embedded.Init(dataFS)

	game, err := NewViewerGame()
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Failed to create viewer: %v", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("legwork - limb target viewer")

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}
