package services

import (
	"fmt"
	"sync"

	"github.com/open-teleop/gamepad-bridge/pkg/config"
	customlog "github.com/open-teleop/gamepad-bridge/pkg/log"
)

const redacted = "******"

// BridgeConfigService exposes the effective bridge configuration.
// The running bridge never reconfigures itself; candidates can only be
// checked.
type BridgeConfigService interface {
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	CheckConfig(candidateYAML []byte) error
	SourcePath() string
}

// bridgeConfigService implements the BridgeConfigService interface.
type bridgeConfigService struct {
	sourcePath    string
	logger        customlog.Logger
	currentConfig *config.Config
	mu            sync.RWMutex
}

// NewBridgeConfigService wraps the configuration the bridge was started
// with. sourcePath is empty when no file was given.
func NewBridgeConfigService(cfg *config.Config, sourcePath string, logger customlog.Logger) (BridgeConfigService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return &bridgeConfigService{
		sourcePath:    sourcePath,
		logger:        logger,
		currentConfig: cfg,
	}, nil
}

// GetCurrentConfig returns the effective configuration. It's read-only.
func (s *bridgeConfigService) GetCurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML renders the effective configuration with secrets
// replaced.
func (s *bridgeConfigService) GetCurrentConfigYAML() ([]byte, error) {
	s.mu.RLock()
	cfg := *s.currentConfig
	s.mu.RUnlock()

	if cfg.Mirrors.MQTT.Password != "" {
		cfg.Mirrors.MQTT.Password = redacted
	}

	data, err := cfg.Marshal()
	if err != nil {
		s.logger.Errorf("Error rendering configuration YAML: %v", err)
		return nil, fmt.Errorf("error rendering configuration: %w", err)
	}
	return data, nil
}

// CheckConfig parses and validates a candidate configuration without
// applying it.
func (s *bridgeConfigService) CheckConfig(candidateYAML []byte) error {
	candidate, err := config.ParseConfig(candidateYAML)
	if err != nil {
		s.logger.Debugf("Candidate configuration is not valid YAML: %v", err)
		return fmt.Errorf("invalid YAML format: %w", err)
	}
	if err := candidate.Validate(); err != nil {
		s.logger.Debugf("Candidate configuration rejected: %v", err)
		return err
	}
	return nil
}

// SourcePath returns the file the configuration was loaded from
func (s *bridgeConfigService) SourcePath() string {
	return s.sourcePath
}
