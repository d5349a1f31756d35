// Package embedded 提供嵌入数据文件的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的配置。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gonewx/legwork/pkg/config"
)

// 嵌入文件路径
const (
	RigConfigPath = "data/rig.yaml"
	PresetsDir    = "data/presets"
)

var (
	dataFS      fs.FS
	initialized bool
)

// Init 初始化数据文件系统
// 必须在 main() 开始时、任何配置加载之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = data != nil
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 标准化路径：正斜杠、去掉 "./" 前缀，并要求以 "data/" 开头
func normalize(p string) (string, error) {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	if !strings.HasPrefix(p, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", p)
	}
	return p, nil
}

// ReadFile 读取嵌入文件内容
// 路径必须以 "data/" 开头
func ReadFile(p string) ([]byte, error) {
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在
func Exists(p string) bool {
	if !initialized {
		return false
	}
	p, err := normalize(p)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, p)
	return err == nil
}

// LoadRigConfig 加载嵌入的默认配置
//
// 返回:
//   - *config.RigConfig: 解析并验证后的配置
//   - error: 未初始化、文件缺失或配置无效时返回错误
func LoadRigConfig() (*config.RigConfig, error) {
	data, err := ReadFile(RigConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded rig config: %w", err)
	}
	return config.Parse(data)
}

// PresetNames 返回嵌入的预设名（不含扩展名，按名称排序）
func PresetNames() ([]string, error) {
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}
	matches, err := fs.Glob(dataFS, PresetsDir+"/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// LoadPreset 加载嵌入的预设配置
// 预设文件只需包含与默认值不同的字段
func LoadPreset(name string) (*config.RigConfig, error) {
	data, err := ReadFile(path.Join(PresetsDir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %q: %w", name, err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return cfg, nil
}
