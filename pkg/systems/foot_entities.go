package systems

import (
	"github.com/gonewx/legwork/pkg/components"
	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/types"
)

// footEntity 一只脚的末端实体及其组件
type footEntity struct {
	id        ecs.EntityID
	endpoint  *components.EndpointComponent
	phase     *components.GaitPhaseComponent
	placement *components.FootPlacementComponent
}

// collectFeet 按 左脚、右脚 的顺序返回脚部末端
// 左脚为主脚，总是先更新
func collectFeet(em *ecs.EntityManager) []footEntity {
	feet := make([]footEntity, 0, 2)
	for _, limb := range []types.Limb{types.LimbLeftFoot, types.LimbRightFoot} {
		for _, id := range ecs.GetEntitiesWith1[*components.EndpointComponent](em) {
			ep, _ := ecs.GetComponent[*components.EndpointComponent](em, id)
			if ep.Limb != limb {
				continue
			}
			f := footEntity{id: id, endpoint: ep}
			f.phase, _ = ecs.GetComponent[*components.GaitPhaseComponent](em, id)
			f.placement, _ = ecs.GetComponent[*components.FootPlacementComponent](em, id)
			feet = append(feet, f)
			break
		}
	}
	return feet
}
