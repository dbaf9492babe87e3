package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the application configuration. The analysis core treats it as
// an opaque constructor argument and only reads the directives it needs.
type Config struct {
	Logger      Logger      `yaml:"logger" json:"logger"`
	Analysis    Analysis    `yaml:"analysis" json:"analysis"`
	Rules       Rules       `yaml:"rules" json:"rules"`
	Remediation Remediation `yaml:"remediation" json:"remediation"`
}

type Logger struct {
	Level string `yaml:"level" json:"level"`
}

type Analysis struct {
	SeverityThreshold string `yaml:"severity_threshold" json:"severity_threshold"`
	OutputFormat      string `yaml:"output_format" json:"output_format"`
	AutoRemediate     bool   `yaml:"auto_remediate" json:"auto_remediate"`
}

// Rules lists enabled check names per provider. Advisory for now: the engine
// always runs the full rule tables.
type Rules struct {
	AWS   []string `yaml:"aws" json:"aws"`
	Azure []string `yaml:"azure" json:"azure"`
	GCP   []string `yaml:"gcp" json:"gcp"`
}

type Remediation struct {
	CreateBackup *bool  `yaml:"create_backup" json:"create_backup"`
	BackupSuffix string `yaml:"backup_suffix" json:"backup_suffix"`
}

// defaultConfigNames are probed in order when no --config flag is given.
var defaultConfigNames = []string{"iacshield.yml", "iacshield.yaml", ".iacshield.yml"}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	createBackup := true
	return &Config{
		Analysis: Analysis{
			SeverityThreshold: "medium",
			OutputFormat:      "json",
			AutoRemediate:     false,
		},
		Rules: Rules{
			AWS:   []string{"encryption_at_rest", "public_access", "iam_permissions"},
			Azure: []string{"network_security", "storage_security"},
			GCP:   []string{"compute_security", "storage_security"},
		},
		Remediation: Remediation{
			CreateBackup: &createBackup,
			BackupSuffix: ".backup",
		},
	}
}

// LoadConfig reads the configuration from path, or from the first default
// location found when path is empty. A missing config file is not an error;
// the defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		for _, name := range defaultConfigNames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	// File values override the defaults field by field.
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %q: %w", path, err)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config file %q is invalid: %w", path, err)
	}
	return cfg, nil
}

// ValidateConfig checks the directives the core reads for known values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration object is nil")
	}

	switch cfg.Analysis.SeverityThreshold {
	case "", "low", "medium", "high", "critical":
	default:
		return fmt.Errorf("analysis.severity_threshold %q is not one of low, medium, high, critical", cfg.Analysis.SeverityThreshold)
	}

	switch cfg.Analysis.OutputFormat {
	case "", "json", "yaml", "html", "sarif":
	default:
		return fmt.Errorf("analysis.output_format %q is not one of json, yaml, html, sarif", cfg.Analysis.OutputFormat)
	}

	return nil
}

// CreateBackup resolves the remediation.create_backup directive, defaulting
// to true when unset.
func (c *Config) CreateBackup() bool {
	if c.Remediation.CreateBackup == nil {
		return true
	}
	return *c.Remediation.CreateBackup
}
