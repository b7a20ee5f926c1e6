package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Orchestrator.Mode != "dynamic" {
		t.Fatalf("expected dynamic mode default, got %q", cfg.Orchestrator.Mode)
	}
	if cfg.Agents.CustomerData.Port != 10020 || cfg.Agents.Support.Port != 10021 {
		t.Fatalf("unexpected agent ports: %+v", cfg.Agents)
	}
	if cfg.Tools.Port != 8080 {
		t.Fatalf("unexpected tools port: %d", cfg.Tools.Port)
	}
	timeout, err := cfg.Orchestrator.StageTimeoutDuration()
	if err != nil {
		t.Fatalf("timeout parse error: %v", err)
	}
	if timeout != 30*time.Second {
		t.Fatalf("expected 30s stage timeout, got %v", timeout)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskmesh.yaml")
	content := []byte(`
log:
  level: debug
orchestrator:
  mode: parallel
  stage-timeout: 5s
agents:
  support:
    url: http://support.internal:4000
    port: 4000
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
	if cfg.Orchestrator.Mode != "parallel" || cfg.Orchestrator.StageTimeout != "5s" {
		t.Fatalf("unexpected orchestrator config: %+v", cfg.Orchestrator)
	}
	if cfg.Agents.Support.URL != "http://support.internal:4000" {
		t.Fatalf("unexpected support url: %q", cfg.Agents.Support.URL)
	}
	// Untouched sections keep defaults.
	if cfg.Agents.CustomerData.Port != 10020 {
		t.Fatalf("customer-data default lost: %+v", cfg.Agents.CustomerData)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("DESKMESH_LOG__LEVEL", "error")
	t.Setenv("DESKMESH_ORCHESTRATOR__MODE", "sequential")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("expected env level override, got %q", cfg.Log.Level)
	}
	if cfg.Orchestrator.Mode != "sequential" {
		t.Fatalf("expected env mode override, got %q", cfg.Orchestrator.Mode)
	}
}

func TestStageTimeoutDuration_Invalid(t *testing.T) {
	cfg := OrchestratorConfig{StageTimeout: "soon"}
	if _, err := cfg.StageTimeoutDuration(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if cfg.Orchestrator.Mode != "dynamic" {
		t.Fatalf("round-tripped config lost defaults: %+v", cfg.Orchestrator)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskmesh.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	watcher, err := NewWatcher(path, WithWatchInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("watcher error: %v", err)
	}

	changes := make(chan *Config, 1)
	watcher.OnChange(func(cfg *Config) {
		select {
		case changes <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)
	defer watcher.Stop()

	// Push the mod time forward so the poll loop notices.
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.Log.Level != "warn" {
			t.Fatalf("expected reloaded level warn, got %q", cfg.Log.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher never reloaded")
	}
}
