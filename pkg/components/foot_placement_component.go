package components

import "github.com/go-gl/mathgl/mgl64"

// FootMode 反应式落脚状态
type FootMode int

const (
	FootIdle    FootMode = iota // 站定，逐帧检查是否需要迈步
	FootMoving                  // 迈步中
	FootTimeout                 // 落地后的冷却
)

func (m FootMode) String() string {
	switch m {
	case FootIdle:
		return "Idle"
	case FootMoving:
		return "Moving"
	case FootTimeout:
		return "Timeout"
	}
	return "Unknown"
}

// FootPlacementComponent 单只脚的反应式落脚状态
//
// 不变量：Mode 为 Timeout，或 Mode 为 Idle 且没有待触发的迈步时，Current == Target
type FootPlacementComponent struct {
	Mode FootMode

	Source  mgl64.Vec3 // 迈步起点
	Target  mgl64.Vec3 // 迈步终点
	Current mgl64.Vec3 // 当前脚部目标位置

	// Timer Moving 时为迈步进度 [0,1]，Timeout 时为已冷却秒数
	Timer float64

	// PendingSettle 激活后首次落位（把脚放到网格上）
	PendingSettle bool

	// Steps 累计完成的迈步次数（诊断用）
	Steps int
}
