package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"judgemicro/internal/judge/cache"
	"judgemicro/internal/judge/events"
	"judgemicro/internal/judge/orchestrator"
	"judgemicro/internal/judge/sandbox"
	"judgemicro/pkg/utils/logger"
)

const (
	defaultHTTPAddr    = "0.0.0.0:8080"
	defaultReadTimeout = 5 * time.Second
	// defaultWriteTimeout must outlast the orchestrator call budget of the
	// largest allowed batch at default limits, or legitimate responses get
	// severed mid-write.
	defaultWriteTimeout    = 90 * time.Minute
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// AppConfig holds judge-service config.
type AppConfig struct {
	Server       ServerConfig         `yaml:"server"`
	Logger       logger.Config        `yaml:"logger"`
	Sandbox      sandbox.Config       `yaml:"sandbox"`
	Remote       sandbox.RemoteConfig `yaml:"remote"`
	Orchestrator orchestrator.Config  `yaml:"orchestrator"`
	Cache        cache.Config         `yaml:"cache"`
	Events       events.Config        `yaml:"events"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Sandbox.Images) == 0 {
		return nil, fmt.Errorf("sandbox images are required")
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	// The orchestrator writes files where the sandbox manager mounts them.
	if cfg.Orchestrator.WorkDir == "" {
		cfg.Orchestrator.WorkDir = cfg.Sandbox.WorkDir
	}
	if cfg.Events.Enabled && cfg.Events.Topic == "" {
		cfg.Events.Topic = "judge.verdicts"
	}
	return &cfg, nil
}
