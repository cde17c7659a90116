package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"DataPos/app/security"
)

// AppConfig holds all terminal configuration
type AppConfig struct {
	// Back-office API connection
	Server ServerConfig `json:"server"`

	// Local journal database
	Database DatabaseConfig `json:"database"`

	// Checkout behavior
	Pos PosConfig `json:"pos"`

	// Customer display server
	Display DisplayConfig `json:"display"`

	// First run flag
	FirstRun bool `json:"first_run"`
}

// ServerConfig holds back-office API settings
type ServerConfig struct {
	BaseURL  string `json:"base_url"`
	APIToken string `json:"api_token"`
	TimeoutS int    `json:"timeout_s"`
}

// DatabaseConfig holds journal database settings. Driver selects the
// CGO-free sqlite file store or a shared postgres instance.
type DatabaseConfig struct {
	Driver   string `json:"driver"` // "sqlite" or "postgres"
	Path     string `json:"path"`   // sqlite file path, empty = default
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

// PosConfig holds checkout behavior settings
type PosConfig struct {
	CurrencySymbol     string  `json:"currency_symbol"`
	DefaultVatRate     float64 `json:"default_vat_rate"`
	AllowNegativeStock bool    `json:"allow_negative_stock"`
	ShowNegativeStock  bool    `json:"show_negative_stock"`
	AutoPrintReceipt   bool    `json:"auto_print_receipt"`
	AutoOpenDrawer     bool    `json:"auto_open_drawer"`
	PrinterName        string  `json:"printer_name"`
	PrinterType        string  `json:"printer_type"`
	PrinterAddress     string  `json:"printer_address"`
	PrinterPort        int     `json:"printer_port"`
	PaperWidth         int     `json:"paper_width"`
}

// DisplayConfig holds the customer display server settings
type DisplayConfig struct {
	Enabled bool   `json:"enabled"`
	Port    string `json:"port"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	// Get user's AppData directory
	appData := os.Getenv("APPDATA")
	if appData == "" {
		// Fallback to user's home directory
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		appData = filepath.Join(homeDir, "AppData", "Roaming")
	}

	// Create DataPos directory if it doesn't exist
	configDir := filepath.Join(appData, "DataPos")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads configuration from config.json and decrypts sensitive fields
func LoadConfig() (*AppConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	if err := cfg.decryptSensitiveFields(); err != nil {
		return nil, fmt.Errorf("could not decrypt sensitive fields: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves configuration to config.json after encrypting sensitive fields
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Encrypt on a copy so the caller keeps plaintext values
	cfgCopy := *cfg
	if err := cfgCopy.encryptSensitiveFields(); err != nil {
		return fmt.Errorf("could not encrypt sensitive fields: %w", err)
	}

	data, err := json.MarshalIndent(&cfgCopy, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}

// ConfigExists checks if config file exists
func ConfigExists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Server: ServerConfig{
			BaseURL:  "http://localhost:8000/api",
			APIToken: "",
			TimeoutS: 15,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "",
			Host:     "localhost",
			Port:     5432,
			Database: "datapos_journal",
			Username: "postgres",
			Password: "",
			SSLMode:  "disable",
		},
		Pos: PosConfig{
			CurrencySymbol:     "€",
			DefaultVatRate:     18,
			AllowNegativeStock: true,
			ShowNegativeStock:  false,
			AutoPrintReceipt:   true,
			AutoOpenDrawer:     true,
			PrinterName:        "",
			PrinterType:        "usb",
			PrinterAddress:     "",
			PrinterPort:        9100,
			PaperWidth:         80,
		},
		Display: DisplayConfig{
			Enabled: true,
			Port:    "8080",
		},
		FirstRun: true,
	}

	// Save default config
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MarkSetupComplete marks the first run as complete
func MarkSetupComplete() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	cfg.FirstRun = false
	return SaveConfig(cfg)
}

// encryptSensitiveFields encrypts sensitive configuration fields
func (cfg *AppConfig) encryptSensitiveFields() error {
	var err error

	if cfg.Server.APIToken != "" {
		cfg.Server.APIToken, err = security.Encrypt(cfg.Server.APIToken)
		if err != nil {
			return fmt.Errorf("could not encrypt API token: %w", err)
		}
	}

	if cfg.Database.Password != "" {
		cfg.Database.Password, err = security.Encrypt(cfg.Database.Password)
		if err != nil {
			return fmt.Errorf("could not encrypt database password: %w", err)
		}
	}

	return nil
}

// decryptSensitiveFields decrypts sensitive configuration fields.
// A field that fails to decrypt is assumed to be plaintext from a
// hand-edited development config and is left as-is.
func (cfg *AppConfig) decryptSensitiveFields() error {
	if cfg.Server.APIToken != "" {
		decrypted, err := security.Decrypt(cfg.Server.APIToken)
		if err != nil {
			decrypted = cfg.Server.APIToken
		}
		cfg.Server.APIToken = decrypted
	}

	if cfg.Database.Password != "" {
		decrypted, err := security.Decrypt(cfg.Database.Password)
		if err != nil {
			decrypted = cfg.Database.Password
		}
		cfg.Database.Password = decrypted
	}

	return nil
}
