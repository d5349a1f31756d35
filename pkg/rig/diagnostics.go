package rig

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/config"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/types"
)

// MarkerTag 诊断标记的颜色分类，由渲染端决定具体颜色
type MarkerTag int

const (
	TagHeadTarget  MarkerTag = iota // 头部目标
	TagHandTarget                   // 手部目标
	TagFootIdle                     // 脚部目标（Idle / 相位模型）
	TagFootMoving                   // 脚部目标（迈步中）
	TagFootTimeout                  // 脚部目标（冷却中）
	TagPole                         // pole
)

func (t MarkerTag) String() string {
	switch t {
	case TagHeadTarget:
		return "head"
	case TagHandTarget:
		return "hand"
	case TagFootIdle:
		return "foot-idle"
	case TagFootMoving:
		return "foot-moving"
	case TagFootTimeout:
		return "foot-timeout"
	case TagPole:
		return "pole"
	}
	return "unknown"
}

// Marker 一个诊断标记
type Marker struct {
	Position mgl64.Vec3
	Tag      MarkerTag
	Limb     types.Limb
}

// Diagnostics 返回当前所有末端和 pole 的位置
//
// 纯查询，不修改状态；未激活时返回空列表。
// 结果按肢体顺序排列，每个肢体先目标后 pole。
func (c *Controller) Diagnostics() []Marker {
	set := c.builder.Current()
	if set == nil {
		return nil
	}

	markers := make([]Marker, 0, 2*len(types.AllLimbs))
	for _, limb := range types.AllLimbs {
		id, ok := set.IDs[limb]
		if !ok {
			continue
		}
		ep, ok := ecs.GetComponent[*components.EndpointComponent](c.entityManager, id)
		if !ok {
			continue
		}

		markers = append(markers, Marker{
			Position: ep.Target.Position,
			Tag:      c.targetTag(id, limb),
			Limb:     limb,
		})
		if ep.HasPole {
			markers = append(markers, Marker{Position: ep.Pole, Tag: TagPole, Limb: limb})
		}
	}
	return markers
}

func (c *Controller) targetTag(id ecs.EntityID, limb types.Limb) MarkerTag {
	switch {
	case limb == types.LimbHead:
		return TagHeadTarget
	case limb.IsHand():
		return TagHandTarget
	}
	if c.strategy == nil || c.strategy.Name() != config.StrategyReactive {
		return TagFootIdle
	}
	fp, ok := ecs.GetComponent[*components.FootPlacementComponent](c.entityManager, id)
	if !ok {
		return TagFootIdle
	}
	switch fp.Mode {
	case components.FootMoving:
		return TagFootMoving
	case components.FootTimeout:
		return TagFootTimeout
	}
	return TagFootIdle
}
