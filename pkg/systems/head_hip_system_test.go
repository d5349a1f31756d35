package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/types"
)

func TestHeadHipRoundTrip(t *testing.T) {
	rotated := types.NewPose(mgl64.Vec3{2, 0.5, -3}, mgl64.QuatRotate(math.Pi/6, types.AxisUp))

	tests := []struct {
		name   string
		parent mgl64.Mat4
		head   mgl64.Vec3
	}{
		{"单位父节点", mgl64.Ident4(), mgl64.Vec3{0.3, 1.7, 0.2}},
		{"旋转平移父节点", rotated.Mat4(), mgl64.Vec3{2.5, 2.1, -2.6}},
		{"带缩放父节点", rotated.Mat4().Mul4(mgl64.Scale3D(0.01, 0.01, 0.01)), mgl64.Vec3{-1, 1.2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skel := skeleton.NewHumanoid(types.IdentityPose(), tt.parent, map[skeleton.BoneRole]types.Pose{
				skeleton.BoneHips: types.NewPose(mgl64.TransformCoordinate(mgl64.Vec3{0, 0.95, 0}, tt.parent), mgl64.QuatIdent()),
			})
			restOffset := mgl64.Vec3{0.05, 0.65, -0.02}
			target := types.NewPose(tt.head, mgl64.QuatRotate(0.2, types.AxisForward))

			NewHeadHipSystem(skel).Update(target, restOffset)

			world := mgl64.TransformCoordinate(skel.HipsLocalPosition(), skel.HipsParent())
			want := target.Position.Sub(restOffset)
			if !vecNear(world, want, 1e-7) {
				t.Errorf("Expected hips world %v, got %v", want, world)
			}
			hips, _ := skel.Bone(skeleton.BoneHips)
			if !vecNear(hips.Position, want, 1e-7) {
				t.Errorf("Expected hips bone at %v, got %v", want, hips.Position)
			}
			head, _ := skel.Bone(skeleton.BoneHead)
			if head != target {
				t.Errorf("Head should be pinned to the target, got %v", head)
			}
		})
	}
}

func TestHeadHipNoDrift(t *testing.T) {
	skel := skeleton.NewDefaultHumanoid(types.IdentityPose(), false)
	system := NewHeadHipSystem(skel)
	restOffset := mgl64.Vec3{0, 0.65, 0}
	target := types.NewPose(mgl64.Vec3{0, 1.6, 0}, mgl64.QuatIdent())

	for i := 0; i < 1000; i++ {
		system.Update(target, restOffset)
	}

	if !vecNear(skel.HipsLocalPosition(), mgl64.Vec3{0, 0.95, 0}, 1e-9) {
		t.Errorf("Hips drifted to %v", skel.HipsLocalPosition())
	}
}
