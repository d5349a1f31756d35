package rig

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/types"
)

const frameDt = 1.0 / 16

func newTestController(t *testing.T, cfg *config.RigConfig) (*Controller, *skeleton.Humanoid, *solver.Table) {
	t.Helper()
	skel := skeleton.NewDefaultHumanoid(types.IdentityPose(), true)
	table := solver.NewTable()
	return NewController(skel, table, cfg), skel, table
}

func TestControllerActivateDeactivateCounts(t *testing.T) {
	ctrl, _, table := newTestController(t, nil)

	for i := 0; i < 4; i++ {
		require.True(t, ctrl.Activate())
		require.True(t, ctrl.Activate(), "re-activation tears down first")
		assert.Equal(t, 5, ctrl.EndpointCount())
		assert.Equal(t, 4, table.Len())
		assert.True(t, ctrl.Active())

		ctrl.Deactivate()
		ctrl.Deactivate()
		assert.Equal(t, 0, ctrl.EndpointCount())
		assert.Equal(t, 0, table.Len())
		assert.False(t, ctrl.Active())
	}
}

func TestControllerNonHumanoid(t *testing.T) {
	ctrl, skel, table := newTestController(t, nil)
	skel.RemoveBone(skeleton.BoneLeftFoot)

	assert.False(t, ctrl.Activate())
	assert.False(t, ctrl.Active())
	assert.Equal(t, 0, ctrl.EndpointCount())
	assert.Equal(t, 0, table.Len())

	// 未激活时的调用都是空操作
	ctrl.Update(FrameInput{Dt: frameDt})
	assert.Empty(t, ctrl.Diagnostics())
	assert.Empty(t, ctrl.Targets())
	ctrl.Deactivate()
}

func TestControllerStationaryScenario(t *testing.T) {
	ctrl, skel, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())

	zero := mgl64.Vec3{}
	for i := 0; i < 80; i++ {
		ctrl.Update(FrameInput{Dt: frameDt, RootVelocity: &zero})
	}

	for _, tc := range []struct {
		limb types.Limb
		side float64
	}{{types.LimbLeftFoot, -1}, {types.LimbRightFoot, 1}} {
		fp, ok := ctrl.FootState(tc.limb)
		require.True(t, ok)
		assert.Equal(t, components.FootIdle, fp.Mode, tc.limb.String())
		assert.Equal(t, 1, fp.Steps, tc.limb.String())

		want := skel.Root().Position.Add(mgl64.Vec3{tc.side * 0.1, 0, 0})
		assert.True(t, fp.Current.ApproxEqualThreshold(want, 1e-9), "%s settled at %v", tc.limb, fp.Current)
		assert.Equal(t, fp.Current, ctrl.Targets()[tc.limb].Position)
	}

	// 不再触发新的迈步
	for i := 0; i < 40; i++ {
		ctrl.Update(FrameInput{Dt: frameDt, RootVelocity: &zero})
	}
	left, _ := ctrl.FootState(types.LimbLeftFoot)
	right, _ := ctrl.FootState(types.LimbRightFoot)
	assert.Equal(t, 1, left.Steps)
	assert.Equal(t, 1, right.Steps)
}

func TestControllerWalkScenario(t *testing.T) {
	tests := []struct {
		name   string
		dt     float64
		frames int
	}{
		{"16Hz", 1.0 / 16, 400},
		{"60Hz", 1.0 / 60, 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Placement.MinStepDistance = 0.1
			cfg.Placement.FootMoveSpeed = 2.0
			ctrl, skel, _ := newTestController(t, cfg)
			require.True(t, ctrl.Activate())

			velocity := mgl64.Vec3{0, 0, 1.0}
			var order []types.Limb
			moving := map[types.Limb]int{}
			limit := 1 / cfg.Placement.FootMoveSpeed

			for frame := 1; frame <= tt.frames; frame++ {
				skel.Translate(velocity.Mul(tt.dt))
				ctrl.Update(FrameInput{Dt: tt.dt, RootVelocity: &velocity})

				left, _ := ctrl.FootState(types.LimbLeftFoot)
				right, _ := ctrl.FootState(types.LimbRightFoot)
				require.False(t, left.Mode == components.FootMoving && right.Mode == components.FootMoving,
					"frame %d: both feet Moving", frame)

				for limb, fp := range map[types.Limb]components.FootPlacementComponent{
					types.LimbLeftFoot: left, types.LimbRightFoot: right,
				} {
					if fp.Mode == components.FootMoving {
						if moving[limb] == 0 {
							order = append(order, limb)
						}
						moving[limb]++
						// 一次迈步最多 1/footMoveSpeed 秒
						require.LessOrEqual(t, float64(moving[limb])*tt.dt, limit+1e-9,
							"frame %d: %s swing too long (%d frames)", frame, limb, moving[limb])
					} else {
						moving[limb] = 0
					}
				}
			}

			require.GreaterOrEqual(t, len(order), 6, "feet should keep stepping")
			assert.Equal(t, types.LimbLeftFoot, order[0])
			for i := 1; i < len(order); i++ {
				assert.NotEqual(t, order[i-1], order[i], "swing %d repeats %s", i, order[i])
			}

			// 落点跟上了角色
			left, _ := ctrl.FootState(types.LimbLeftFoot)
			assert.InDelta(t, skel.Root().Position.Z(), left.Target.Z(), 1.5)
		})
	}
}

func TestControllerReachOverride(t *testing.T) {
	ctrl, _, table := newTestController(t, nil)
	require.True(t, ctrl.Activate())
	for i := 0; i < 80; i++ {
		ctrl.Update(FrameInput{Dt: frameDt})
	}
	left, _ := ctrl.FootState(types.LimbLeftFoot)
	require.Equal(t, components.FootIdle, left.Mode)

	id, ok := ctrl.EndpointID(types.LimbLeftFoot)
	require.True(t, ok)
	table.ForceOutOfReach(id, true)
	ctrl.Update(FrameInput{Dt: frameDt})

	left, _ = ctrl.FootState(types.LimbLeftFoot)
	assert.Equal(t, components.FootMoving, left.Mode)
}

func TestControllerHipRoundTrip(t *testing.T) {
	ctrl, skel, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())

	target := types.NewPose(mgl64.Vec3{0.2, 1.5, 0.1}, mgl64.QuatIdent())
	ctrl.SetHeadTarget(target)
	ctrl.Update(FrameInput{Dt: frameDt})

	rest := mgl64.Vec3{0, 0.65, 0}
	world := mgl64.TransformCoordinate(skel.HipsLocalPosition(), skel.HipsParent())
	assert.True(t, world.ApproxEqualThreshold(target.Position.Sub(rest), 1e-9), "hips at %v", world)

	head, _ := skel.Bone(skeleton.BoneHead)
	assert.True(t, head.Position.ApproxEqualThreshold(target.Position, 1e-9))
	assert.True(t, ctrl.HeadTarget().Position.ApproxEqualThreshold(target.Position, 1e-9))
}

func TestControllerTargetsFollowRoot(t *testing.T) {
	ctrl, skel, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())
	before := ctrl.Targets()

	skel.Translate(mgl64.Vec3{1, 0, 0})
	ctrl.Update(FrameInput{Dt: frameDt})
	after := ctrl.Targets()

	for _, limb := range []types.Limb{types.LimbHead, types.LimbLeftHand, types.LimbRightHand} {
		want := before[limb].Position.Add(mgl64.Vec3{1, 0, 0})
		assert.True(t, after[limb].Position.ApproxEqualThreshold(want, 1e-9), "%s at %v", limb, after[limb].Position)
	}

	ctrl.SetHandTarget(types.LimbLeftHand, types.NewPose(mgl64.Vec3{0.5, 1, 0.5}, mgl64.QuatIdent()))
	ctrl.Update(FrameInput{Dt: frameDt})
	assert.True(t, ctrl.Targets()[types.LimbLeftHand].Position.ApproxEqualThreshold(mgl64.Vec3{0.5, 1, 0.5}, 1e-9))
}

func TestControllerPushesTargetsToSolver(t *testing.T) {
	ctrl, _, table := newTestController(t, nil)
	require.True(t, ctrl.Activate())
	for i := 0; i < 5; i++ {
		ctrl.Update(FrameInput{Dt: frameDt})
	}

	targets := ctrl.Targets()
	require.Len(t, targets, 5)
	for _, limb := range []types.Limb{types.LimbLeftHand, types.LimbRightHand, types.LimbLeftFoot, types.LimbRightFoot} {
		id, _ := ctrl.EndpointID(limb)
		entry, ok := table.Entry(id)
		require.True(t, ok)
		assert.Equal(t, targets[limb], entry.Target, limb.String())
	}
}

func TestControllerFlags(t *testing.T) {
	t.Run("关闭手部和脚部 IK", func(t *testing.T) {
		ctrl, _, table := newTestController(t, nil)
		require.True(t, ctrl.Activate())
		flags := ctrl.Flags()
		flags.HandIK = false
		ctrl.SetFlags(flags)
		ctrl.Update(FrameInput{Dt: frameDt})

		hand, _ := ctrl.EndpointID(types.LimbLeftHand)
		foot, _ := ctrl.EndpointID(types.LimbLeftFoot)
		handEntry, _ := table.Entry(hand)
		footEntry, _ := table.Entry(foot)
		assert.False(t, handEntry.Enabled)
		assert.True(t, footEntry.Enabled)

		flags.FootIK = false
		ctrl.SetFlags(flags)
		ctrl.Update(FrameInput{Dt: frameDt})
		footEntry, _ = table.Entry(foot)
		assert.False(t, footEntry.Enabled)
	})

	t.Run("关闭移动脚部时脚部目标不动", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, nil)
		require.True(t, ctrl.Activate())
		flags := ctrl.Flags()
		flags.MoveFeet = false
		ctrl.SetFlags(flags)
		before := ctrl.Targets()[types.LimbLeftFoot]
		for i := 0; i < 10; i++ {
			ctrl.Update(FrameInput{Dt: frameDt})
		}
		assert.Equal(t, before, ctrl.Targets()[types.LimbLeftFoot])
		fp, _ := ctrl.FootState(types.LimbLeftFoot)
		assert.Equal(t, components.FootIdle, fp.Mode)
	})

	t.Run("关闭髋部 IK 时髋部不跟随头部", func(t *testing.T) {
		ctrl, skel, _ := newTestController(t, nil)
		require.True(t, ctrl.Activate())
		flags := ctrl.Flags()
		flags.HipIK = false
		ctrl.SetFlags(flags)
		hipsBefore := skel.HipsLocalPosition()

		ctrl.SetHeadTarget(types.NewPose(mgl64.Vec3{0.3, 1.4, 0}, mgl64.QuatIdent()))
		ctrl.Update(FrameInput{Dt: frameDt})
		assert.Equal(t, hipsBefore, skel.HipsLocalPosition())
	})
}

func TestControllerReactivationResetsState(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())
	for i := 0; i < 40; i++ {
		ctrl.Update(FrameInput{Dt: frameDt})
	}
	fp, _ := ctrl.FootState(types.LimbLeftFoot)
	require.Equal(t, 1, fp.Steps)

	ctrl.Deactivate()
	require.True(t, ctrl.Activate())

	fp, _ = ctrl.FootState(types.LimbLeftFoot)
	assert.Equal(t, components.FootIdle, fp.Mode)
	assert.Equal(t, 0, fp.Steps)
	assert.Zero(t, fp.Timer)
	assert.True(t, fp.PendingSettle)

	g, _ := ctrl.GaitState(types.LimbRightFoot)
	assert.Equal(t, components.GaitApex, g.Phase)
	assert.Zero(t, g.Offset)
	assert.Equal(t, 0.5, g.PhaseShift)
}

func TestControllerDiagnostics(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())
	ctrl.Update(FrameInput{Dt: frameDt})

	markers := ctrl.Diagnostics()
	require.Len(t, markers, 9, "five targets and four poles")

	counts := map[MarkerTag]int{}
	for _, m := range markers {
		counts[m.Tag]++
	}
	assert.Equal(t, 1, counts[TagHeadTarget])
	assert.Equal(t, 2, counts[TagHandTarget])
	assert.Equal(t, 4, counts[TagPole])
	// 首帧左脚开始落位，右脚等待
	assert.Equal(t, 1, counts[TagFootMoving])
	assert.Equal(t, 1, counts[TagFootIdle])
}

func TestControllerPhaseStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy = config.StrategyPhase
	ctrl, skel, _ := newTestController(t, cfg)
	require.True(t, ctrl.Activate())

	velocity := mgl64.Vec3{0, 0, 1}
	for i := 0; i < 64; i++ {
		skel.Translate(velocity.Mul(frameDt))
		ctrl.Update(FrameInput{Dt: frameDt})
	}

	g, ok := ctrl.GaitState(types.LimbLeftFoot)
	require.True(t, ok)
	assert.Greater(t, g.Wraps, 0)
	assert.GreaterOrEqual(t, g.Offset, -g.PhaseShift)
	assert.Less(t, g.Offset, 1-g.PhaseShift)

	// 脚部目标在角色附近
	foot := ctrl.Targets()[types.LimbLeftFoot].Position
	assert.InDelta(t, skel.Root().Position.Z(), foot.Z(), 0.5)
}

func TestControllerSetConfig(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())

	bad := config.Default()
	bad.Placement.FootMoveSpeed = 0
	assert.Error(t, ctrl.SetConfig(bad))

	good := config.Default()
	good.Strategy = config.StrategyPhase
	require.NoError(t, ctrl.SetConfig(good))
	assert.True(t, ctrl.Active())
	assert.Equal(t, config.StrategyPhase, ctrl.Config().Strategy)
	assert.Equal(t, 5, ctrl.EndpointCount())
}

func TestControllerTeleportSnapsFeet(t *testing.T) {
	ctrl, skel, _ := newTestController(t, nil)
	require.True(t, ctrl.Activate())
	for i := 0; i < 80; i++ {
		ctrl.Update(FrameInput{Dt: frameDt})
	}

	skel.Translate(mgl64.Vec3{10, 0, 10})
	ctrl.Update(FrameInput{Dt: frameDt})

	for _, tc := range []struct {
		limb types.Limb
		side float64
	}{{types.LimbLeftFoot, -1}, {types.LimbRightFoot, 1}} {
		fp, _ := ctrl.FootState(tc.limb)
		assert.Equal(t, components.FootIdle, fp.Mode, tc.limb.String())
		want := mgl64.Vec3{10 + tc.side*0.1, 0, 10}
		assert.True(t, fp.Current.ApproxEqualThreshold(want, 1e-9), "%s at %v", tc.limb, fp.Current)
		assert.Equal(t, 1, fp.Steps, "teleport is not a step")
	}

	// 之后不会再迈步
	for i := 0; i < 20; i++ {
		ctrl.Update(FrameInput{Dt: frameDt})
	}
	left, _ := ctrl.FootState(types.LimbLeftFoot)
	assert.Equal(t, components.FootIdle, left.Mode)
}
