// Package config loads the application configuration from environment
// variables with an optional YAML file overlay.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix for all environment variables, e.g. SALES_SERVER_PORT.
const EnvPrefix = "SALES"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration for the dashboard
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the file system layout of the pipeline
type PathsConfig struct {
	InputCSV          string `yaml:"input_csv" envconfig:"INPUT_CSV" validate:"required"`
	CleanedCSV        string `yaml:"cleaned_csv" envconfig:"CLEANED_CSV" validate:"required"`
	VisualizationsDir string `yaml:"visualizations_dir" envconfig:"VISUALIZATIONS_DIR" validate:"required"`
	OutputsDir        string `yaml:"outputs_dir" envconfig:"OUTPUTS_DIR" validate:"required"`
	LogsDir           string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// defaultConfig is the baseline every load starts from. Defaults live here
// rather than in envconfig tags: Process applies tag defaults whenever the
// env var is unset, which would overwrite values taken from the config file.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/sales.log",
		},
		Paths: PathsConfig{
			InputCSV:          "data/sales_data.csv",
			CleanedCSV:        "data/cleaned_sales_data.csv",
			VisualizationsDir: "visualizations",
			OutputsDir:        "outputs",
			LogsDir:           "logs",
		},
	}
}

// Load loads configuration from environment variables and, when configFile
// names an existing file, overlays values from it. File values take
// precedence over defaults; environment variables take precedence over both.
func Load(configFile string) (*Config, error) {
	cfg := defaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// env overrides last; fields without a matching env var keep their value
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// EnsureDirectories creates every directory the pipeline writes into
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Paths.CleanedCSV),
		c.Paths.VisualizationsDir,
		c.Paths.OutputsDir,
		c.Paths.LogsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogFilePath resolves the log file location, defaulting into the logs dir
// when the configured path is relative and has no directory component.
func (c *Config) LogFilePath() string {
	if filepath.Dir(c.Logging.FilePath) == "." {
		return filepath.Join(c.Paths.LogsDir, c.Logging.FilePath)
	}
	return c.Logging.FilePath
}
