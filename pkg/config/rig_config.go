// Package config 定义 IK 末端合成的可调参数
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/legwork/pkg/utils"
)

// Strategy 脚部步态模型
type Strategy string

const (
	// StrategyReactive 反应式落脚（Idle/Moving/Timeout 状态机）
	StrategyReactive Strategy = "reactive"
	// StrategyPhase 相位振荡器步态
	StrategyPhase Strategy = "phase"
)

// RigConfig 末端合成配置
//
// 配置文件位置: data/rig.yaml
type RigConfig struct {
	// SnapBackStrength 求解器回弹强度 [0, 1]
	SnapBackStrength float64 `yaml:"snapBackStrength"`

	// Strategy 脚部步态模型
	Strategy Strategy `yaml:"strategy"`

	// TeleportDistance 单帧水平位移超过该值视为瞬移，脚直接落到静止落点（0 关闭）
	TeleportDistance float64 `yaml:"teleportDistance"`

	Chains    ChainConfig     `yaml:"chains"`
	Flags     FlagConfig      `yaml:"flags"`
	Gait      GaitConfig      `yaml:"gait"`
	Placement PlacementConfig `yaml:"placement"`
}

// FootChainLength 腿部链长度固定为 2（大腿、小腿）
const FootChainLength = 2

// ChainConfig 手臂 IK 链长度
type ChainConfig struct {
	// Shoulder 存在肩部骨骼时手臂链长度
	Shoulder int `yaml:"shoulder"`
	// Hand 没有肩部骨骼时手臂链长度
	Hand int `yaml:"hand"`
}

// FlagConfig 运行时开关
type FlagConfig struct {
	HandIK   bool `yaml:"handIK"`
	FootIK   bool `yaml:"footIK"`
	HipIK    bool `yaml:"hipIK"`
	MoveFeet bool `yaml:"moveFeet"`
}

// GaitConfig 相位振荡器步态参数
//
// 轨迹点 y ∈ [0, LoopSize] 映射到 [MinStepHeight, MaxStepHeight]，
// 轨迹点 x ∈ [-LoopSize, LoopSize] 映射到 [MinStepLength, MaxStepLength]。
type GaitConfig struct {
	MinStepHeight float64 `yaml:"minStepHeight"`
	MaxStepHeight float64 `yaml:"maxStepHeight"`
	MinStepLength float64 `yaml:"minStepLength"`
	MaxStepLength float64 `yaml:"maxStepLength"`
	LoopSize      float64 `yaml:"loopSize"`
}

// PlacementConfig 反应式落脚参数
type PlacementConfig struct {
	// LiftHeight 迈步抬脚高度（乘以抬脚曲线）
	LiftHeight float64 `yaml:"minStepHeight"`
	// MinStepDistance 落脚网格间隔
	MinStepDistance float64 `yaml:"minStepDistance"`
	// MaxStepDistance 脚偏离静止落点超过该距离时迈步
	MaxStepDistance float64 `yaml:"maxStepDistance"`
	// FootMoveSpeed 迈步进度速率（每秒）
	FootMoveSpeed float64 `yaml:"footMoveSpeed"`
	// TimeoutTime 落地后冷却时间（秒）
	TimeoutTime float64 `yaml:"timeoutTime"`
	// HeightCurve 抬脚曲线关键帧，时间范围 [0, 1]
	HeightCurve []utils.Keyframe `yaml:"heightCurve"`
}

// Default 返回默认配置
func Default() *RigConfig {
	return &RigConfig{
		SnapBackStrength: 0.5,
		Strategy:         StrategyReactive,
		TeleportDistance: 1.0,
		Chains: ChainConfig{
			Shoulder: 3,
			Hand:     2,
		},
		Flags: FlagConfig{
			HandIK:   true,
			FootIK:   true,
			HipIK:    true,
			MoveFeet: true,
		},
		Gait: GaitConfig{
			MinStepHeight: 0,
			MaxStepHeight: 0.25,
			MinStepLength: -0.35,
			MaxStepLength: 0.35,
			LoopSize:      1.0,
		},
		Placement: PlacementConfig{
			LiftHeight:      0.1,
			MinStepDistance: 0.1,
			MaxStepDistance: 0.25,
			FootMoveSpeed:   1.0,
			TimeoutTime:     0.25,
			HeightCurve:     append([]utils.Keyframe{}, utils.DefaultLiftKeys...),
		},
	}
}

// Clone 深拷贝配置
func (c *RigConfig) Clone() *RigConfig {
	out := *c
	out.Placement.HeightCurve = append([]utils.Keyframe{}, c.Placement.HeightCurve...)
	return &out
}

// Load 从文件加载配置，缺失字段使用默认值
//
// 参数:
//   - path: 配置文件路径（如 "data/rig.yaml"）
//
// 返回:
//   - *RigConfig: 加载并验证后的配置
//   - error: 读取、解析或验证失败时返回错误
func Load(path string) (*RigConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig config: %w", err)
	}
	return Parse(data)
}

// Parse 从 YAML 数据解析配置，缺失字段使用默认值
func Parse(data []byte) (*RigConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rig config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rig config: %w", err)
	}
	return cfg, nil
}

// Marshal 序列化为 YAML
func (c *RigConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rig config: %w", err)
	}
	return data, nil
}

// Validate 验证配置有效性
//
// 检查：
//   - snapBackStrength ∈ [0, 1]
//   - 链长度为正
//   - 距离/高度非负，minStepDistance <= maxStepDistance
//   - footMoveSpeed > 0，timeoutTime >= 0
//   - strategy 为已知值
//   - 抬脚曲线可以拟合
//
// 返回:
//   - error: 验证失败时返回错误，成功返回 nil
func (c *RigConfig) Validate() error {
	if c.SnapBackStrength < 0 || c.SnapBackStrength > 1 {
		return fmt.Errorf("snapBackStrength %.3f out of range [0, 1]", c.SnapBackStrength)
	}

	switch c.Strategy {
	case StrategyReactive, StrategyPhase:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}

	if c.TeleportDistance < 0 {
		return fmt.Errorf("teleportDistance %.3f must not be negative", c.TeleportDistance)
	}

	if c.Chains.Shoulder <= 0 || c.Chains.Hand <= 0 {
		return fmt.Errorf("chain lengths must be positive: shoulder=%d hand=%d",
			c.Chains.Shoulder, c.Chains.Hand)
	}

	if c.Gait.LoopSize < 0 {
		return fmt.Errorf("gait loopSize %.3f must not be negative", c.Gait.LoopSize)
	}
	if c.Gait.MinStepHeight > c.Gait.MaxStepHeight {
		return fmt.Errorf("gait step height invalid: min(%.3f) > max(%.3f)",
			c.Gait.MinStepHeight, c.Gait.MaxStepHeight)
	}
	if c.Gait.MinStepLength > c.Gait.MaxStepLength {
		return fmt.Errorf("gait step length invalid: min(%.3f) > max(%.3f)",
			c.Gait.MinStepLength, c.Gait.MaxStepLength)
	}

	p := c.Placement
	if p.MinStepDistance < 0 || p.MaxStepDistance < 0 {
		return fmt.Errorf("step distances must not be negative: min=%.3f max=%.3f",
			p.MinStepDistance, p.MaxStepDistance)
	}
	if p.MinStepDistance > p.MaxStepDistance {
		return fmt.Errorf("step distance invalid: min(%.3f) > max(%.3f)", p.MinStepDistance, p.MaxStepDistance)
	}
	if p.FootMoveSpeed <= 0 {
		return fmt.Errorf("footMoveSpeed %.3f must be positive", p.FootMoveSpeed)
	}
	if p.TimeoutTime < 0 {
		return fmt.Errorf("timeoutTime %.3f must not be negative", p.TimeoutTime)
	}
	if p.LiftHeight < 0 {
		return fmt.Errorf("placement minStepHeight %.3f must not be negative", p.LiftHeight)
	}
	if _, err := utils.NewCurve(p.HeightCurve); err != nil {
		return fmt.Errorf("heightCurve: %w", err)
	}

	return nil
}

// LiftCurve 构建抬脚曲线
func (c *RigConfig) LiftCurve() (*utils.Curve, error) {
	return utils.NewCurve(c.Placement.HeightCurve)
}
