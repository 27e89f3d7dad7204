package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input" mapstructure:"input"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Process ProcessConfig `yaml:"process" mapstructure:"process"`
	Clean   CleanConfig   `yaml:"clean" mapstructure:"clean"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the OSM export.
type InputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig selects and configures the destination.
type OutputConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Schema      string `yaml:"schema" mapstructure:"schema"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	Truncate    bool   `yaml:"truncate" mapstructure:"truncate"`
}

// ProcessConfig configures the pipeline run.
type ProcessConfig struct {
	Validate      bool `yaml:"validate" mapstructure:"validate"`
	ProgressEvery int  `yaml:"progress_every" mapstructure:"progress_every"`
}

// CleanConfig points at an optional YAML file extending the cleaning tables.
type CleanConfig struct {
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Output drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Validate checks cross-field constraints that defaults cannot express.
func (c *Config) Validate() error {
	switch c.Output.Driver {
	case DriverCSV, DriverSQLite:
	case DriverPostgres:
		if c.Output.DatabaseURL == "" {
			return eris.New("config: output.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown output.driver %q (want csv, sqlite, or postgres)", c.Output.Driver)
	}
	if c.Input.Path == "" {
		return eris.New("config: input.path is required")
	}
	return nil
}

// Load reads configuration from file and environment. An empty path searches
// the working directory for config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("OSMPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.path", "map.osm")
	v.SetDefault("output.driver", DriverCSV)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.sqlite_path", "osm.db")
	v.SetDefault("output.database_url", "")
	v.SetDefault("output.schema", "public")
	v.SetDefault("output.batch_size", 5000)
	v.SetDefault("output.truncate", false)
	v.SetDefault("process.validate", false)
	v.SetDefault("process.progress_every", 100000)
	v.SetDefault("clean.rules_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
