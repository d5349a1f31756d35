package components

// GaitPhase 步态相位
type GaitPhase int

const (
	GaitApex     GaitPhase = iota // 最高点
	GaitBuildup                   // 蓄力下落
	GaitContact                   // 触地
	GaitThruApex                  // 越过最高点（向后摆）
	// GaitFollowThru 保留相位：有速率和关键帧，但没有任何转移会进入它。
	// 若被直接设置，会停留在自身（后继为自身）。
	GaitFollowThru
)

func (p GaitPhase) String() string {
	switch p {
	case GaitApex:
		return "Apex"
	case GaitBuildup:
		return "Buildup"
	case GaitContact:
		return "Contact"
	case GaitThruApex:
		return "ThruApex"
	case GaitFollowThru:
		return "FollowThru"
	}
	return "Unknown"
}

// Next 返回相位循环中的后继相位
// Apex → Buildup → Contact → ThruApex → Apex
func (p GaitPhase) Next() GaitPhase {
	switch p {
	case GaitApex:
		return GaitBuildup
	case GaitBuildup:
		return GaitContact
	case GaitContact:
		return GaitThruApex
	case GaitThruApex:
		return GaitApex
	}
	return p
}

// Rate 返回相位推进速率（offset 每秒增量）
func (p GaitPhase) Rate() float64 {
	switch p {
	case GaitApex:
		return 1.5
	case GaitBuildup:
		return 2.0
	case GaitContact:
		return 2.0
	case GaitThruApex:
		return 1.0
	case GaitFollowThru:
		return 0.5
	}
	return 0
}

// Keyframe 返回相位的单位关键帧 (x=前后, y=高度)，使用时乘以水平速度
func (p GaitPhase) Keyframe() (x, y float64) {
	switch p {
	case GaitApex:
		return 1, 0.7
	case GaitBuildup:
		return 0.8, 0.5
	case GaitContact:
		return 0.3, 0
	case GaitThruApex:
		return -1, 0.4
	case GaitFollowThru:
		return -0.1, 0
	}
	return 0, 0
}

// GaitPhaseComponent 单只脚的相位振荡器状态
type GaitPhaseComponent struct {
	Phase GaitPhase

	// Offset 相位内进度偏移，取值范围 [-PhaseShift, 1-PhaseShift)
	// 插值参数为 Offset + PhaseShift ∈ [0, 1)
	Offset float64

	// PhaseShift 相位差（左脚 0，右脚 0.5）
	PhaseShift float64

	// Wraps 累计相位切换次数（诊断用）
	Wraps int
}

// Progress 返回当前相位内的插值参数 ∈ [0, 1)
func (g *GaitPhaseComponent) Progress() float64 {
	return g.Offset + g.PhaseShift
}
