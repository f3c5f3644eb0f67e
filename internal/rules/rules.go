package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReservedDoctor is the sentinel row used in rosters to mark recovery slots.
// It is never a selectable doctor.
const ReservedDoctor = "Recupero"

// Duty is one roster column: a task that must be covered every day.
type Duty struct {
	Name     string `yaml:"name"`
	Column   string `yaml:"column"`
	Optional bool   `yaml:"optional"`
}

// GlobalConstraints are the ward-wide scheduling limits.
type GlobalConstraints struct {
	NightSpacingDaysMin int `yaml:"night_spacing_days_min"`
	MaxDutiesPerMonth   int `yaml:"max_duties_per_month"`
}

// Config is the typed form of Regole_Turni.yml. Loaded once per run and
// treated as immutable afterwards.
type Config struct {
	Doctors           []string          `yaml:"doctors"`
	Duties            []Duty            `yaml:"duties"`
	NightDuty         string            `yaml:"night_duty"`
	NightColumn       string            `yaml:"night_column"`
	GlobalConstraints GlobalConstraints `yaml:"global_constraints"`
}

// Load reads and validates a rules file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

// Parse decodes rules from YAML bytes and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.NightDuty == "" {
		c.NightDuty = "Notte"
	}
	if c.NightColumn == "" {
		c.NightColumn = "J"
	}
	if c.GlobalConstraints.NightSpacingDaysMin == 0 {
		c.GlobalConstraints.NightSpacingDaysMin = 5
	}
}

func (c *Config) validate() error {
	if len(c.Doctors) == 0 {
		return fmt.Errorf("rules: no doctors configured")
	}
	if len(c.Duties) == 0 {
		return fmt.Errorf("rules: no duties configured")
	}
	for _, d := range c.Duties {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("rules: duty with empty name")
		}
	}
	return nil
}

// CollectDoctors returns the selectable doctors in configured order,
// excluding blanks and the reserved sentinel.
func (c *Config) CollectDoctors() []string {
	var out []string
	for _, d := range c.Doctors {
		name := strings.TrimSpace(d)
		if name == "" || name == ReservedDoctor {
			continue
		}
		out = append(out, name)
	}
	return out
}

// HasDoctor reports whether name is a configured doctor.
func (c *Config) HasDoctor(name string) bool {
	for _, d := range c.CollectDoctors() {
		if d == name {
			return true
		}
	}
	return false
}
