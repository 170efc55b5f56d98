// Package conf loads and persists the application configuration.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings holds the full application configuration.
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug logging

	Main struct {
		Name string `yaml:"name"` // node name, used to identify this installation
		Log  struct {
			Enabled bool   `yaml:"enabled"` // true to write a rotating JSON log file
			Path    string `yaml:"path"`    // path to log file
		} `yaml:"log"`
	} `yaml:"main"`

	Output struct {
		SQLite struct {
			Enabled bool   `yaml:"enabled"` // true to use SQLite for the ledger
			Path    string `yaml:"path"`    // path to the SQLite database
		} `yaml:"sqlite"`
		MySQL struct {
			Enabled  bool   `yaml:"enabled"` // true to use MySQL for the ledger
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
			Host     string `yaml:"host"`
			Port     string `yaml:"port"`
		} `yaml:"mysql"`
	} `yaml:"output"`

	Print struct {
		Device        string        `yaml:"device"`        // default device name, empty for OS default
		Timeout       time.Duration `yaml:"timeout"`       // bound on one raw write to the device
		SpoolFallback bool          `yaml:"spoolfallback"` // allow the file-based spooler fallback
	} `yaml:"print"`

	Preview struct {
		Enabled  bool          `yaml:"enabled"`  // true to enable the external render collaborator
		Endpoint string        `yaml:"endpoint"` // base URL of the renderer
		Timeout  time.Duration `yaml:"timeout"`  // HTTP timeout per render call
		CacheTTL time.Duration `yaml:"cachettl"` // how long rendered bitmaps stay cached
	} `yaml:"preview"`
}

// Load reads the configuration file and environment into a Settings value.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create one with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the config search paths: the working
// directory first, then the OS user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error resolving user config dir: %w", err)
	}
	return []string{".", filepath.Join(configDir, "labelrun")}, nil
}

// createDefaultConfig writes a default config file to the user config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[1], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("error unmarshaling defaults: %w", err)
	}
	if err := SaveYAMLConfig(configPath, settings); err != nil {
		return fmt.Errorf("error saving default config: %w", err)
	}

	log.Printf("Created default config file at %s", configPath)
	return viper.ReadInConfig()
}

// SaveYAMLConfig writes settings to a YAML file via an atomic temp-file rename.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temp config file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		os.Remove(tempName)
		return fmt.Errorf("error writing temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error closing temp config file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// ValidateSettings rejects configurations the stores cannot work with.
func ValidateSettings(settings *Settings) error {
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return fmt.Errorf("only one of output.sqlite and output.mysql may be enabled")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must be set when sqlite is enabled")
	}
	if settings.Output.MySQL.Enabled {
		m := &settings.Output.MySQL
		if m.Host == "" || m.Database == "" || m.Username == "" {
			return fmt.Errorf("output.mysql requires host, database and username")
		}
	}
	if settings.Print.Timeout <= 0 {
		return fmt.Errorf("print.timeout must be positive")
	}
	return nil
}
