// Package config loads mesh configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	goyaml "gopkg.in/yaml.v3"
)

type Config struct {
	Log          LogConfig          `koanf:"log" yaml:"log"`
	Telemetry    TelemetryConfig    `koanf:"telemetry" yaml:"telemetry"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator" yaml:"orchestrator"`
	Agents       AgentsConfig       `koanf:"agents" yaml:"agents"`
	Tools        ToolsConfig        `koanf:"tools" yaml:"tools"`
	Store        StoreConfig        `koanf:"store" yaml:"store"`
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter" yaml:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp-endpoint" yaml:"otlp-endpoint"`
	OTLPInsecure bool   `koanf:"otlp-insecure" yaml:"otlp-insecure"`
}

type OrchestratorConfig struct {
	Mode         string `koanf:"mode" yaml:"mode"` // sequential, dynamic, parallel
	StageTimeout string `koanf:"stage-timeout" yaml:"stage-timeout"`
	Port         int    `koanf:"port" yaml:"port"`
}

// AgentsConfig lists the worker endpoints the orchestrator discovers at
// startup.
type AgentsConfig struct {
	CustomerData AgentEndpoint `koanf:"customer-data" yaml:"customer-data"`
	Support      AgentEndpoint `koanf:"support" yaml:"support"`
}

type AgentEndpoint struct {
	URL  string `koanf:"url" yaml:"url"`
	Port int    `koanf:"port" yaml:"port"`
}

type ToolsConfig struct {
	URL  string `koanf:"url" yaml:"url"`
	Port int    `koanf:"port" yaml:"port"`
}

type StoreConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

// StageTimeoutDuration parses the configured per-stage deadline.
func (c OrchestratorConfig) StageTimeoutDuration() (time.Duration, error) {
	if c.StageTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.StageTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid stage-timeout %q: %w", c.StageTimeout, err)
	}
	return d, nil
}

// Load reads defaults, then the optional YAML file at path, then the
// environment. Environment keys use the DESKMESH_ prefix with double
// underscores as section separators, so DESKMESH_LOG__LEVEL maps to
// log.level.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.exporter", "stdout")
	k.Set("telemetry.otlp-insecure", true)

	k.Set("orchestrator.mode", "dynamic")
	k.Set("orchestrator.stage-timeout", "30s")
	k.Set("orchestrator.port", 9000)

	k.Set("agents.customer-data.url", "http://localhost:10020")
	k.Set("agents.customer-data.port", 10020)
	k.Set("agents.support.url", "http://localhost:10021")
	k.Set("agents.support.port", 10021)

	k.Set("tools.url", "http://localhost:8080/mcp")
	k.Set("tools.port", 8080)

	k.Set("store.path", "deskmesh.db")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// DESKMESH_LOG__LEVEL -> log.level
	if err := k.Load(env.Provider("DESKMESH_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "DESKMESH_"))
		return strings.Replace(key, "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	cfg, err := Load("")
	if err != nil {
		return err
	}
	data, err := goyaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
