package solver

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/ecs"
	"github.com/gonewx/legwork/pkg/types"
)

// ReachFunc 判断绑定是否超出可达范围
type ReachFunc func(id ecs.EntityID, b Binding) bool

// Entry 绑定表中的一条记录
type Entry struct {
	Binding
	Enabled bool
}

// Table 内存中的绑定表，实现 Solver 接口
//
// 不做真正的链求解，只记录绑定、启用状态和每帧推送的目标。
// 可达性由 Reach 回调决定，并可通过 ForceOutOfReach 针对单个末端强制覆盖。
type Table struct {
	entries map[ecs.EntityID]*Entry
	forced  map[ecs.EntityID]bool

	// Reach 可选的可达性判定，为 nil 时总是可达
	Reach ReachFunc
}

// NewTable 创建绑定表
func NewTable() *Table {
	return &Table{
		entries: make(map[ecs.EntityID]*Entry),
		forced:  make(map[ecs.EntityID]bool),
	}
}

// Bind 注册末端；重复注册返回错误
func (t *Table) Bind(id ecs.EntityID, b Binding) error {
	if _, exists := t.entries[id]; exists {
		return fmt.Errorf("endpoint %d already bound", id)
	}
	if b.ChainLength <= 0 {
		return fmt.Errorf("endpoint %d: invalid chain length %d", id, b.ChainLength)
	}
	t.entries[id] = &Entry{Binding: b, Enabled: true}
	return nil
}

// Unbind 注销末端
func (t *Table) Unbind(id ecs.EntityID) {
	delete(t.entries, id)
	delete(t.forced, id)
}

// IsOutOfReach 强制覆盖优先，其次 Reach 回调
func (t *Table) IsOutOfReach(id ecs.EntityID) bool {
	if forced, ok := t.forced[id]; ok {
		return forced
	}
	e, ok := t.entries[id]
	if !ok || t.Reach == nil {
		return false
	}
	return t.Reach(id, e.Binding)
}

// SetEnabled 启用/禁用末端
func (t *Table) SetEnabled(id ecs.EntityID, enabled bool) {
	if e, ok := t.entries[id]; ok {
		e.Enabled = enabled
	}
}

// SetTarget 更新目标与 pole
func (t *Table) SetTarget(id ecs.EntityID, target types.Pose, pole mgl64.Vec3) {
	if e, ok := t.entries[id]; ok {
		e.Target = target
		e.Pole = pole
	}
}

// ForceOutOfReach 强制某个末端的可达性结果
func (t *Table) ForceOutOfReach(id ecs.EntityID, out bool) {
	t.forced[id] = out
}

// ClearForced 取消某个末端的强制结果
func (t *Table) ClearForced(id ecs.EntityID) {
	delete(t.forced, id)
}

// Entry 查询绑定记录
func (t *Table) Entry(id ecs.EntityID) (Entry, bool) {
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len 已绑定的末端数量
func (t *Table) Len() int {
	return len(t.entries)
}

// IDs 已绑定的末端ID（升序）
func (t *Table) IDs() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FindLimb 按肢体查找绑定ID
func (t *Table) FindLimb(limb types.Limb) (ecs.EntityID, bool) {
	for _, id := range t.IDs() {
		if t.entries[id].Limb == limb {
			return id, true
		}
	}
	return ecs.InvalidEntity, false
}

// MaxReach 返回按链长估算可达性的 ReachFunc
//
// 链根位置由 chainRoot 提供，每节骨骼长度为 segmentLength，
// 目标与链根的距离超过 ChainLength*segmentLength 即视为超出范围。
func MaxReach(chainRoot func(limb types.Limb) (mgl64.Vec3, bool), segmentLength float64) ReachFunc {
	return func(_ ecs.EntityID, b Binding) bool {
		root, ok := chainRoot(b.Limb)
		if !ok {
			return false
		}
		reach := float64(b.ChainLength) * segmentLength
		return b.Target.Position.Sub(root).Len() > reach
	}
}
