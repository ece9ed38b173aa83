package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cpm-labs/cpm/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys recognised in config.yaml.
const (
	KeyStorageRoot   = "storage_root"
	KeyTemplatesRoot = "templates_root"
	KeyRetentionDays = "retention.days"
	KeyRetentionKeep = "retention.keep"
	KeyConcurrency   = "concurrency"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	StorageRoot   string    `mapstructure:"storage_root"`
	TemplatesRoot string    `mapstructure:"templates_root"`
	Concurrency   int       `mapstructure:"concurrency"`
	Retention     Retention `mapstructure:"retention"`
	Log           Log       `mapstructure:"log"`
}

// Retention holds the default backup pruning policy.
type Retention struct {
	Days int `mapstructure:"days"`
	Keep int `mapstructure:"keep"`
}

// Log holds logger options.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Dir returns the path to the config directory. CPM_HOME wins over ~/.cpm.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.cpm/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults() {
	dir := Dir()
	viper.SetDefault(KeyStorageRoot, filepath.Join(dir, "storage"))
	viper.SetDefault(KeyTemplatesRoot, filepath.Join(dir, "templates"))
	viper.SetDefault(KeyRetentionDays, 30)
	viper.SetDefault(KeyRetentionKeep, 0)
	viper.SetDefault(KeyConcurrency, 1)
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogFormat, "console")
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.Reset()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Current returns the typed settings currently in effect.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if s.Concurrency < 1 {
		s.Concurrency = 1
	}
	return s, nil
}

// Keys returns every known key in sorted order.
func Keys() []string {
	keys := viper.AllKeys()
	sort.Strings(keys)
	return keys
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
