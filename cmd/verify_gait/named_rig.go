package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/legwork/pkg/skeleton"
	"github.com/gonewx/legwork/pkg/types"
)

// NamedRig 命名骨骼夹具
//
// 骨骼名沿用导出工具的命名（Mixamo、VRM、Unity 等），
// 坐标为根节点位于原点时的世界坐标：
//
//	bones:
//	  mixamorig:Hips: [0, 0.95, 0]
//	  mixamorig:Head: [0, 1.6, 0]
type NamedRig struct {
	Bones map[string][]float64 `yaml:"bones"`
}

// loadNamedRig 从文件加载命名骨骼夹具
func loadNamedRig(path string) (*skeleton.Humanoid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bone fixture: %w", err)
	}
	return parseNamedRig(data)
}

// parseNamedRig 解析夹具并按骨骼名模糊映射到人形角色
func parseNamedRig(data []byte) (*skeleton.Humanoid, error) {
	var fixture NamedRig
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse bone fixture: %w", err)
	}

	named := make(map[string]types.Pose, len(fixture.Bones))
	for name, p := range fixture.Bones {
		if len(p) != 3 {
			return nil, fmt.Errorf("bone %q: expected 3 coordinates, got %d", name, len(p))
		}
		named[name] = types.NewPose(mgl64.Vec3{p[0], p[1], p[2]}, mgl64.QuatIdent())
	}

	root := types.IdentityPose()
	skel := skeleton.NewHumanoidFromNamedBones(root, root.Mat4(), named)
	if !skel.IsHumanoid() {
		return nil, fmt.Errorf("bone fixture does not map to a humanoid (%d bones)", len(named))
	}
	log.Printf("[verify_gait] Loaded %d named bones from fixture", len(named))
	return skel, nil
}
