/*
Package config manages TOML config for farecast.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/farecast/internal/utils"
	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "farecast"

// EnvAPIURL overrides api.base_url when set.
const EnvAPIURL = "FARECAST_API_URL"

// Config holds the entire config structure
type Config struct {
	API    APIConfig    `toml:"api"`
	Search SearchConfig `toml:"search"`
	CLI    CliConfig    `toml:"cli"`
}

// APIConfig locates the remote fare service.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// SearchConfig tunes place ranking.
type SearchConfig struct {
	Limit     int  `toml:"limit"`
	CacheSize int  `toml:"cache_size"`
	UseIndex  bool `toml:"use_index"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowQuarter bool `toml:"show_quarter"`
	ShowPresets bool `toml:"show_presets"`
}

// Timeout returns the HTTP timeout; zero means none.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// GetConfigDir returns the first writable config directory, falling back to
// the executable's directory.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		homeDir = ""
	}
	for _, dir := range utils.ConfigDirCandidates(AppName, homeDir) {
		if utils.WritableDir(dir) {
			return dir, nil
		}
	}
	execDir, err := utils.ExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/farecast/config.toml
// 3. Builtin defaults
//
// FARECAST_API_URL is applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	cfg, path := loadWithPriority(customConfigPath)
	cfg.ApplyEnv()
	return cfg, path, nil
}

func loadWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			cfg, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return cfg, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	cfg, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return cfg, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "",
			TimeoutMS: 10000,
		},
		Search: SearchConfig{
			Limit:     8,
			CacheSize: 256,
			UseIndex:  true,
		},
		CLI: CliConfig{
			ShowQuarter: true,
			ShowPresets: true,
		},
	}
}

// ApplyEnv lets FARECAST_API_URL override the configured base URL.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		log.Debugf("Using %s from environment", EnvAPIURL)
		c.API.BaseURL = v
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	if !utils.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return cfg, nil
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := utils.DecodeTOMLFile(configPath, cfg); err != nil {
		return tryPartialParse(configPath)
	}
	return cfg, nil
}

// tryPartialParse keeps whichever keys still decode with the right type
func tryPartialParse(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	doc, err := utils.ReadDoc(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return cfg, nil
	}

	if section, ok := doc.Section("api"); ok {
		extractAPIConfig(section, &cfg.API)
	}
	if section, ok := doc.Section("search"); ok {
		extractSearchConfig(section, &cfg.Search)
	}
	if section, ok := doc.Section("cli"); ok {
		extractCliConfig(section, &cfg.CLI)
	}
	return cfg, nil
}

func extractAPIConfig(data utils.Doc, api *APIConfig) {
	if val, ok := data.String("base_url"); ok {
		api.BaseURL = val
	}
	if val, ok := data.Int("timeout_ms"); ok {
		api.TimeoutMS = val
	}
}

func extractSearchConfig(data utils.Doc, search *SearchConfig) {
	if val, ok := data.Int("limit"); ok {
		search.Limit = val
	}
	if val, ok := data.Int("cache_size"); ok {
		search.CacheSize = val
	}
	if val, ok := data.Bool("use_index"); ok {
		search.UseIndex = val
	}
}

func extractCliConfig(data utils.Doc, cli *CliConfig) {
	if val, ok := data.Bool("show_quarter"); ok {
		cli.ShowQuarter = val
	}
	if val, ok := data.Bool("show_presets"); ok {
		cli.ShowPresets = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	return utils.DisplayPath(configPath)
}

// SaveConfig writes cfg to configPath, replacing any existing file.
func SaveConfig(cfg *Config, configPath string) error {
	return utils.WriteTOML(configPath, cfg,
		"farecast configuration",
		"api.base_url can be overridden with "+EnvAPIURL)
}

// Update changes the config values and saves to file
func (c *Config) Update(configPath string, baseURL *string, limit *int, useIndex *bool) error {
	if baseURL != nil {
		c.API.BaseURL = *baseURL
	}
	if limit != nil {
		c.Search.Limit = *limit
	}
	if useIndex != nil {
		c.Search.UseIndex = *useIndex
	}
	return SaveConfig(c, configPath)
}
