package systems

import (
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/solver"
	"github.com/gonewx/legwork/pkg/types"
)

// GaitFrame 一帧的步态输入
type GaitFrame struct {
	// Dt 帧时间（秒）
	Dt float64
	// HipsDelta 本帧髋部世界位移（跟随系统更新后）
	HipsDelta mgl64.Vec3
	// Lead 本帧根节点位移，宿主提供速度时为 velocity·dt，否则等于 HipsDelta
	Lead mgl64.Vec3
	// Root 根节点位姿
	Root types.Pose
	// FootDistance 构建时两脚间距
	FootDistance float64
}

// GaitStrategy 脚部步态模型
//
// 两种模型写入同一组脚部末端，同一时刻只运行其中一种。
type GaitStrategy interface {
	// Name 返回配置中对应的模型名
	Name() config.Strategy
	// Update 推进步态并写入脚部目标
	Update(frame GaitFrame)
}

// phaseStrategy 相位振荡器模型
type phaseStrategy struct {
	system *GaitPhaseSystem
}

func (s *phaseStrategy) Name() config.Strategy { return config.StrategyPhase }

func (s *phaseStrategy) Update(frame GaitFrame) {
	s.system.Update(frame.Dt, frame.HipsDelta, frame.Root, frame.FootDistance)
}

// reactiveStrategy 反应式落脚模型
type reactiveStrategy struct {
	system *FootPlacementSystem
}

func (s *reactiveStrategy) Name() config.Strategy { return config.StrategyReactive }

func (s *reactiveStrategy) Update(frame GaitFrame) {
	s.system.Update(frame.Dt, frame.Lead, frame.Root, frame.FootDistance)
}

// NewGaitStrategy 根据配置创建步态模型
//
// 参数:
//   - em: 实体管理器（脚部末端所在）
//   - s: IK 求解器（反应式模型查询可达性）
//   - cfg: 配置
//
// 返回:
//   - GaitStrategy: 对应的模型，无法识别时使用反应式模型
func NewGaitStrategy(em *ecs.EntityManager, s solver.Solver, cfg *config.RigConfig) GaitStrategy {
	switch cfg.Strategy {
	case config.StrategyPhase:
		return &phaseStrategy{system: NewGaitPhaseSystem(em, cfg)}
	case config.StrategyReactive:
		return &reactiveStrategy{system: NewFootPlacementSystem(em, s, cfg)}
	default:
		log.Printf("[NewGaitStrategy] Warning: Unknown strategy '%s', defaulting to %s", cfg.Strategy, config.StrategyReactive)
		return &reactiveStrategy{system: NewFootPlacementSystem(em, s, cfg)}
	}
}
