package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration, loaded from config.toml next
// to the executable. All fields are named and validated at load time; the
// struct is immutable after startup.
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Rules  RulesConfig  `toml:"rules"`
	Auth   AuthConfig   `toml:"auth"`
	GitHub GitHubConfig `toml:"github"`
}

// ServerConfig controls the embedded HTTP server.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig controls local storage.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// RulesConfig locates the ward rules file.
type RulesConfig struct {
	Path string `toml:"path"`
}

// AuthConfig holds the admin PIN and the per-doctor PIN table.
type AuthConfig struct {
	AdminPIN   string            `toml:"admin_pin"`
	DoctorPINs map[string]string `toml:"doctor_pins"`
}

// GitHubConfig configures the shared unavailability store and audit sink.
type GitHubConfig struct {
	Token string `toml:"token"`

	// Unavailability store location.
	StoreOwner  string `toml:"store_owner"`
	StoreRepo   string `toml:"store_repo"`
	StoreBranch string `toml:"store_branch"`
	StorePath   string `toml:"store_path"`

	// Audit sink: issue comments on "owner/repo".
	AuditRepo  string `toml:"audit_repo"`
	AuditIssue int    `toml:"audit_issue"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20270,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Rules: RulesConfig{
			Path: "Regole_Turni.yml",
		},
		GitHub: GitHubConfig{
			StoreBranch: "main",
			StorePath:   "data/unavailability_store.csv",
		},
	}
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig loads config.toml from the executable's directory, falling back
// to defaults when the file is absent.
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides lets secrets come from the environment instead of the
// config file (deployments, E2E runs).
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("TURNI_GITHUB_TOKEN"); v != "" {
		config.GitHub.Token = v
	}
	if v := os.Getenv("TURNI_ADMIN_PIN"); v != "" {
		config.Auth.AdminPIN = v
	}
	if v := os.Getenv("TURNI_RULES_PATH"); v != "" {
		config.Rules.Path = v
	}
}

// SaveConfig writes the configuration back to config.toml.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir creates the data directory (and its subdirectories) next to
// the executable and returns its path.
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := filepath.Join(exeDir, config.Data.DataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "outputs", "templates"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
