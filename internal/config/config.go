package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMinimumRestHours       = 10
	DefaultMaximumConsecutiveDays = 6
)

// RequirementOverride raises or lowers a staffing requirement's minimum on the dates matched by RRule
type RequirementOverride struct {
	RequirementID    string `yaml:"requirementID" validate:"required"`
	RRule            string `yaml:"rrule" validate:"required"`
	MinimumEmployees int    `yaml:"minimumEmployees" validate:"gte=0"`
}

// Weights overrides the generator's scoring constants. Zero fields keep the built-in value.
type Weights struct {
	Base            float64 `yaml:"base" validate:"gte=0"`
	PreferenceBonus float64 `yaml:"preferenceBonus" validate:"gte=0"`
	CoverageBonus   float64 `yaml:"coverageBonus" validate:"gte=0"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL            string                `yaml:"databaseURL" validate:"required"`
	MinimumRestHours       float64               `yaml:"minimumRestHours" validate:"gt=0"`
	MaximumConsecutiveDays int                   `yaml:"maximumConsecutiveDays" validate:"min=1"`
	Weights                Weights               `yaml:"weights"`
	ScheduleSheetID        string                `yaml:"scheduleSheetID,omitempty"`
	RequirementOverrides   []RequirementOverride `yaml:"requirementOverrides,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates dispatch_config.<env>.yaml.
// It looks for the file in the current directory first, then in the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configFileName := "dispatch_config.yaml"
	if env != "" {
		configFileName = "dispatch_config." + env + ".yaml"
	}

	configPath, err := locate(configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{
		MinimumRestHours:       DefaultMinimumRestHours,
		MaximumConsecutiveDays: DefaultMaximumConsecutiveDays,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.RequirementOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in requirementOverrides[%d]: %w", i, err)
		}
	}

	return nil
}
