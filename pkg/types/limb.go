package types

// Limb 标识一个末端执行器（endpoint）所属的肢体
type Limb int

const (
	LimbLeftHand Limb = iota
	LimbRightHand
	LimbLeftFoot
	LimbRightFoot
	LimbHead
)

// AllLimbs 按创建顺序列出全部五个末端
var AllLimbs = []Limb{LimbLeftHand, LimbRightHand, LimbLeftFoot, LimbRightFoot, LimbHead}

// IsHand 是否为手部末端
func (l Limb) IsHand() bool {
	return l == LimbLeftHand || l == LimbRightHand
}

// IsFoot 是否为脚部末端
func (l Limb) IsFoot() bool {
	return l == LimbLeftFoot || l == LimbRightFoot
}

// Side 返回侧向符号：左侧 -1，右侧 +1，头部 0
func (l Limb) Side() float64 {
	switch l {
	case LimbLeftHand, LimbLeftFoot:
		return -1
	case LimbRightHand, LimbRightFoot:
		return 1
	}
	return 0
}

func (l Limb) String() string {
	switch l {
	case LimbLeftHand:
		return "LeftHand"
	case LimbRightHand:
		return "RightHand"
	case LimbLeftFoot:
		return "LeftFoot"
	case LimbRightFoot:
		return "RightFoot"
	case LimbHead:
		return "Head"
	}
	return "Unknown"
}
