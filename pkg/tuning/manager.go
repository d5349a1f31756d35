// Package tuning 持久化用户调整过的 RigConfig
package tuning

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/legwork/pkg/config"
)

// AppName gdata 存储使用的应用名
const AppName = "legwork"

// 存储路径常量
const (
	tuningObject  = "tuning"
	activePreset  = "active"
	presetPrefix  = "preset_"
	maxPresetName = 32
)

// Open 打开 gdata 存储
//
// 打开失败时返回 nil（降级模式），调用方仍可正常创建 Manager
func Open(appName string) *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[TuningManager] Warning: Failed to open storage: %v (tuning will not persist)", err)
		return nil
	}
	return m
}

// Manager 调参管理器
// 负责当前配置和命名预设的加载、保存
type Manager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存）
	base         *config.RigConfig
	current      *config.RigConfig
}

// NewManager 创建调参管理器并加载上次保存的配置
//
// 参数：
//   - gdataManager: gdata 存储，可为 nil
//   - base: 没有保存记录时使用的配置，为 nil 时使用默认配置
func NewManager(gdataManager *gdata.Manager, base *config.RigConfig) *Manager {
	if base == nil {
		base = config.Default()
	}
	m := &Manager{
		gdataManager: gdataManager,
		base:         base.Clone(),
		current:      base.Clone(),
	}
	if err := m.Load(); err != nil {
		log.Printf("[TuningManager] Warning: Failed to load tuning: %v (using base config)", err)
	}
	return m
}

// Config 返回当前配置的副本
func (m *Manager) Config() *config.RigConfig {
	return m.current.Clone()
}

// SetConfig 验证并替换当前配置（仅内存，需调用 Save 持久化）
func (m *Manager) SetConfig(cfg *config.RigConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to set tuning: %w", err)
	}
	m.current = cfg.Clone()
	return nil
}

// Reset 恢复为基础配置
func (m *Manager) Reset() {
	m.current = m.base.Clone()
}

// Load 加载上次保存的配置；没有记录时恢复基础配置
func (m *Manager) Load() error {
	cfg, err := m.load(activePreset)
	if err != nil {
		m.current = m.base.Clone()
		return err
	}
	if cfg == nil {
		m.current = m.base.Clone()
		return nil
	}
	m.current = cfg
	log.Printf("[TuningManager] Tuning loaded successfully")
	return nil
}

// Save 保存当前配置
func (m *Manager) Save() error {
	return m.save(activePreset, m.current)
}

// SavePreset 把当前配置保存为命名预设
func (m *Manager) SavePreset(name string) error {
	if err := validPresetName(name); err != nil {
		return err
	}
	return m.save(presetPrefix+name, m.current)
}

// LoadPreset 加载命名预设为当前配置
//
// 返回：
//   - bool: 预设是否存在
//   - error: 读取或解析失败
func (m *Manager) LoadPreset(name string) (bool, error) {
	if err := validPresetName(name); err != nil {
		return false, err
	}
	cfg, err := m.load(presetPrefix + name)
	if err != nil || cfg == nil {
		return false, err
	}
	m.current = cfg
	return true, nil
}

// HasPreset 预设是否存在
func (m *Manager) HasPreset(name string) bool {
	if m.gdataManager == nil || validPresetName(name) != nil {
		return false
	}
	return m.gdataManager.ObjectPropExists(tuningObject, presetPrefix+name)
}

func (m *Manager) load(prop string) (*config.RigConfig, error) {
	if m.gdataManager == nil || !m.gdataManager.ObjectPropExists(tuningObject, prop) {
		return nil, nil
	}
	data, err := m.gdataManager.LoadObjectProp(tuningObject, prop)
	if err != nil {
		return nil, fmt.Errorf("failed to load tuning %q: %w", prop, err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tuning %q: %w", prop, err)
	}
	return cfg, nil
}

func (m *Manager) save(prop string, cfg *config.RigConfig) error {
	// 降级模式：无法持久化，但不报错
	if m.gdataManager == nil {
		return nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := m.gdataManager.SaveObjectProp(tuningObject, prop, data); err != nil {
		return fmt.Errorf("failed to save tuning %q: %w", prop, err)
	}
	log.Printf("[TuningManager] Saved %s", prop)
	return nil
}

func validPresetName(name string) error {
	if name == "" || len(name) > maxPresetName {
		return fmt.Errorf("invalid preset name %q", name)
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return fmt.Errorf("invalid preset name %q", name)
		}
	}
	return nil
}
