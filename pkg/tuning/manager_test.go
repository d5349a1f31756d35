package tuning

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/legwork/pkg/config"
)

// createTestGdataManager 创建用于测试的 gdata Manager
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	t.Helper()
	appName := fmt.Sprintf("legwork_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil
	}

	// 测试结束后删除测试目录
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})

	return manager
}

func TestManagerNilStorage(t *testing.T) {
	m := NewManager(nil, nil)

	if diff := cmp.Diff(config.Default(), m.Config()); diff != "" {
		t.Errorf("Expected default config (-want +got):\n%s", diff)
	}
	if err := m.Save(); err != nil {
		t.Errorf("Save in degraded mode should not fail: %v", err)
	}
	if err := m.SavePreset("fast"); err != nil {
		t.Errorf("SavePreset in degraded mode should not fail: %v", err)
	}
	found, err := m.LoadPreset("fast")
	if found || err != nil {
		t.Errorf("Expected no preset in degraded mode, got found=%v err=%v", found, err)
	}
	if m.HasPreset("fast") {
		t.Error("HasPreset should be false in degraded mode")
	}
}

func TestManagerSetConfigValidates(t *testing.T) {
	m := NewManager(nil, nil)

	bad := config.Default()
	bad.Placement.MinStepDistance = 1
	bad.Placement.MaxStepDistance = 0.5
	if err := m.SetConfig(bad); err == nil {
		t.Fatal("Expected validation error")
	}
	if diff := cmp.Diff(config.Default(), m.Config()); diff != "" {
		t.Errorf("Config should be unchanged after a rejected update (-want +got):\n%s", diff)
	}

	good := config.Default()
	good.Placement.FootMoveSpeed = 3
	if err := m.SetConfig(good); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Config().Placement.FootMoveSpeed != 3 {
		t.Error("SetConfig should replace the current config")
	}

	m.Reset()
	if m.Config().Placement.FootMoveSpeed != config.Default().Placement.FootMoveSpeed {
		t.Error("Reset should restore the base config")
	}
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	storage := createTestGdataManager(t, "roundtrip")
	if storage == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	m := NewManager(storage, nil)
	cfg := config.Default()
	cfg.Strategy = config.StrategyPhase
	cfg.Gait.MaxStepHeight = 0.4
	cfg.Flags.HandIK = false
	if err := m.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewManager(storage, nil)
	if diff := cmp.Diff(cfg, reloaded.Config()); diff != "" {
		t.Errorf("Reloaded config differs (-want +got):\n%s", diff)
	}
}

func TestManagerPresets(t *testing.T) {
	storage := createTestGdataManager(t, "presets")
	if storage == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	m := NewManager(storage, nil)
	slow := config.Default()
	slow.Placement.FootMoveSpeed = 0.5
	if err := m.SetConfig(slow); err != nil {
		t.Fatal(err)
	}
	if err := m.SavePreset("slow"); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}
	if !m.HasPreset("slow") {
		t.Fatal("Preset should exist after saving")
	}

	m.Reset()
	found, err := m.LoadPreset("slow")
	if err != nil || !found {
		t.Fatalf("LoadPreset failed: found=%v err=%v", found, err)
	}
	if m.Config().Placement.FootMoveSpeed != 0.5 {
		t.Errorf("Expected footMoveSpeed 0.5, got %f", m.Config().Placement.FootMoveSpeed)
	}

	found, err = m.LoadPreset("missing")
	if found || err != nil {
		t.Errorf("Missing preset should report not found, got found=%v err=%v", found, err)
	}
}

func TestManagerCorruptedData(t *testing.T) {
	storage := createTestGdataManager(t, "corrupted")
	if storage == nil {
		t.Skip("Cannot create gdata manager for testing")
	}
	if err := storage.SaveObjectProp(tuningObject, activePreset, []byte("placement: [not, a, map")); err != nil {
		t.Fatalf("Failed to write corrupted data: %v", err)
	}

	m := NewManager(storage, nil)
	if diff := cmp.Diff(config.Default(), m.Config()); diff != "" {
		t.Errorf("Corrupted data should fall back to the base config (-want +got):\n%s", diff)
	}
	if err := m.Load(); err == nil {
		t.Error("Load should report the parse error")
	}
}

func TestValidPresetName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"walk", true},
		{"fast_walk-2", true},
		{"", false},
		{"../escape", false},
		{"with space", false},
		{"abcdefghijklmnopqrstuvwxyz0123456789", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validPresetName(tt.name)
			if (err == nil) != tt.valid {
				t.Errorf("validPresetName(%q) error = %v, want valid=%v", tt.name, err, tt.valid)
			}
		})
	}
}
