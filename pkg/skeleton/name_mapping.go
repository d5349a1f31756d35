package skeleton

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/legwork/pkg/types"
)

// maxNameDistance 模糊匹配允许的最大编辑距离
const maxNameDistance = 2

// boneAliases 各角色的常见骨骼命名（已归一化：小写、去除分隔符）
// 覆盖 VRM humanoid、Mixamo、Unity Humanoid 以及 _l/_r 后缀风格
var boneAliases = map[BoneRole][]string{
	BoneHips:          {"hips", "pelvis", "hip", "jbipchips"},
	BoneHead:          {"head", "jbipchead"},
	BoneLeftHand:      {"lefthand", "handl", "lhand", "jbiplhand"},
	BoneRightHand:     {"righthand", "handr", "rhand", "jbiprhand"},
	BoneLeftFoot:      {"leftfoot", "footl", "lfoot", "jbiplfoot"},
	BoneRightFoot:     {"rightfoot", "footr", "rfoot", "jbiprfoot"},
	BoneLeftUpperLeg:  {"leftupperleg", "leftupleg", "thighl", "lthigh", "jbiplupperleg"},
	BoneRightUpperLeg: {"rightupperleg", "rightupleg", "thighr", "rthigh", "jbiprupperleg"},
	BoneLeftShoulder:  {"leftshoulder", "shoulderl", "claviclel", "lshoulder", "jbiplshoulder"},
	BoneRightShoulder: {"rightshoulder", "shoulderr", "clavicler", "rshoulder", "jbiprshoulder"},
}

// namePrefixes 常见的骨骼名前缀（归一化后），匹配前去除
var namePrefixes = []string{"mixamorig", "bip01", "armature"}

// NormalizeBoneName 归一化骨骼名：转小写，去掉非字母数字字符和常见前缀
func NormalizeBoneName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	for _, prefix := range namePrefixes {
		if strings.HasPrefix(normalized, prefix) && len(normalized) > len(prefix) {
			normalized = strings.TrimPrefix(normalized, prefix)
			break
		}
	}
	return normalized
}

// MapBoneNames 将任意骨骼名映射到人形角色
//
// 先做归一化后的精确匹配，再对剩余角色做编辑距离不超过 maxNameDistance 的模糊匹配。
// 每个骨骼名最多分配给一个角色，距离相同时按名称字典序决定。
//
// 参数:
//   - names: 骨骼名列表
//
// 返回:
//   - map[BoneRole]string: 角色 → 原始骨骼名（未找到的角色不出现在结果中）
func MapBoneNames(names []string) map[BoneRole]string {
	result := make(map[BoneRole]string)
	used := make(map[string]bool)

	normalized := make(map[string]string, len(names))
	sortedNames := append([]string{}, names...)
	sort.Strings(sortedNames)
	for _, name := range sortedNames {
		normalized[name] = NormalizeBoneName(name)
	}

	// 精确匹配
	for _, role := range AllBones {
		for _, name := range sortedNames {
			if used[name] {
				continue
			}
			if containsString(boneAliases[role], normalized[name]) {
				result[role] = name
				used[name] = true
				break
			}
		}
	}

	// 模糊匹配
	for _, role := range AllBones {
		if _, ok := result[role]; ok {
			continue
		}
		bestName := ""
		bestDistance := maxNameDistance + 1
		for _, name := range sortedNames {
			if used[name] {
				continue
			}
			for _, alias := range boneAliases[role] {
				d := levenshtein.ComputeDistance(alias, normalized[name])
				if d < bestDistance {
					bestDistance = d
					bestName = name
				}
			}
		}
		if bestName != "" {
			result[role] = bestName
			used[bestName] = true
		}
	}

	return result
}

// NewHumanoidFromNamedBones 根据命名骨骼表构建人形骨骼
// 未能映射的骨骼会被忽略；缺少必需骨骼时 IsHumanoid 返回 false
func NewHumanoidFromNamedBones(root types.Pose, hipsParent mgl64.Mat4, named map[string]types.Pose) *Humanoid {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	mapping := MapBoneNames(names)

	bones := make(map[BoneRole]types.Pose, len(mapping))
	for role, name := range mapping {
		bones[role] = named[name]
	}
	return NewHumanoid(root, hipsParent, bones)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
