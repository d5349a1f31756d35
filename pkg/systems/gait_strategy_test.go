package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/types"
)

func TestNewGaitStrategy(t *testing.T) {
	tests := []struct {
		strategy config.Strategy
		want     config.Strategy
	}{
		{config.StrategyReactive, config.StrategyReactive},
		{config.StrategyPhase, config.StrategyPhase},
		{"unknown", config.StrategyReactive},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			cfg := config.Default()
			cfg.Strategy = tt.strategy
			got := NewGaitStrategy(ecs.NewEntityManager(), solver.NewTable(), cfg)
			if got.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Name())
			}
		})
	}
}

func TestGaitStrategyDrivesOnlyItsModel(t *testing.T) {
	tests := []struct {
		strategy      config.Strategy
		wantPhaseWrap bool
		wantSteps     bool
	}{
		{config.StrategyPhase, true, false},
		{config.StrategyReactive, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			em := ecs.NewEntityManager()
			table := solver.NewTable()
			cfg := config.Default()
			cfg.Strategy = tt.strategy
			set, _ := NewRigBuilderSystem(em, table).Build(skeleton.NewDefaultHumanoid(types.IdentityPose(), false), cfg)
			strategy := NewGaitStrategy(em, table, cfg)

			frame := GaitFrame{
				Dt:           1.0 / 16,
				HipsDelta:    mgl64.Vec3{0, 0, 1.0 / 16},
				Lead:         mgl64.Vec3{0, 0, 1.0 / 16},
				Root:         types.IdentityPose(),
				FootDistance: set.FootDistance,
			}
			for i := 0; i < 40; i++ {
				strategy.Update(frame)
			}

			id := set.IDs[types.LimbLeftFoot]
			phase, _ := ecs.GetComponent[*components.GaitPhaseComponent](em, id)
			fp, _ := ecs.GetComponent[*components.FootPlacementComponent](em, id)
			if (phase.Wraps > 0) != tt.wantPhaseWrap {
				t.Errorf("Unexpected oscillator activity: wraps=%d", phase.Wraps)
			}
			if (fp.Steps > 0) != tt.wantSteps {
				t.Errorf("Unexpected placement activity: steps=%d", fp.Steps)
			}
		})
	}
}
