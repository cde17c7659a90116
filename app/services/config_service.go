package services

import (
	"fmt"
	"time"

	"DataPos/app/config"
	"DataPos/app/models"
)

// ConfigService exposes configuration management to the frontend:
// first-run setup, printer selection and the connection settings.
type ConfigService struct {
	logger  *LoggerService
	printer *PrinterService
}

// NewConfigService creates the configuration service.
func NewConfigService(logger *LoggerService, printer *PrinterService) *ConfigService {
	return &ConfigService{logger: logger, printer: printer}
}

// IsFirstRun reports whether the setup wizard should be shown.
func (s *ConfigService) IsFirstRun() bool {
	exists, err := config.ConfigExists()
	if err != nil || !exists {
		return true
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return true
	}
	return cfg.FirstRun
}

// GetConfig returns the current configuration, creating defaults on the
// first launch.
func (s *ConfigService) GetConfig() (*config.AppConfig, error) {
	exists, err := config.ConfigExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return config.CreateDefaultConfig()
	}
	return config.LoadConfig()
}

// SaveConfig persists configuration changes and reconfigures the
// printer backend to match.
func (s *ConfigService) SaveConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("no configuration provided")
	}
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if s.printer != nil {
		s.printer.Configure(models.PrinterConfig{
			Name:       cfg.Pos.PrinterName,
			Type:       cfg.Pos.PrinterType,
			Address:    cfg.Pos.PrinterAddress,
			Port:       cfg.Pos.PrinterPort,
			PaperWidth: cfg.Pos.PaperWidth,
		})
	}

	if s.logger != nil {
		s.logger.LogInfo("Configuration saved")
	}
	return nil
}

// CompleteSetup marks the first-run wizard as finished.
func (s *ConfigService) CompleteSetup() error {
	return config.MarkSetupComplete()
}

// GetConfigPath returns where the configuration file lives, for the
// diagnostics screen.
func (s *ConfigService) GetConfigPath() (string, error) {
	return config.GetConfigPath()
}

// DetectPrinters lists printers installed on this machine.
func (s *ConfigService) DetectPrinters() ([]models.DetectedPrinter, error) {
	printers, err := DetectSystemPrinters()
	if err != nil {
		if s.logger != nil {
			s.logger.LogWarning("Printer detection failed", err.Error())
		}
		return nil, err
	}
	return printers, nil
}

// DetectSerialPorts lists serial and USB device nodes.
func (s *ConfigService) DetectSerialPorts() ([]string, error) {
	return DetectSerialPorts()
}

// DiscoverNetworkPrinters browses the local network for printers.
func (s *ConfigService) DiscoverNetworkPrinters(timeoutSeconds int) ([]models.DetectedPrinter, error) {
	return DiscoverNetworkPrinters(time.Duration(timeoutSeconds) * time.Second)
}

// TestPrinter sends a short test page to the configured printer.
func (s *ConfigService) TestPrinter() error {
	if s.printer == nil {
		return fmt.Errorf("no printer backend available")
	}
	return s.printer.TestPrint()
}
