// Package config loads application configuration and sets up logging.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Boundary  BoundaryConfig  `yaml:"boundary" mapstructure:"boundary"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the station list document fetch.
type SourceConfig struct {
	URL           string   `yaml:"url" mapstructure:"url"`
	AlternateURLs []string `yaml:"alternate_urls" mapstructure:"alternate_urls"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
}

// NominatimConfig configures the geocoding client.
type NominatimConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Qualifier      string  `yaml:"qualifier" mapstructure:"qualifier"`
	RegionHint     string  `yaml:"region_hint" mapstructure:"region_hint"`
}

// OutputConfig configures the persisted record set and the report.
type OutputConfig struct {
	StationsFile string `yaml:"stations_file" mapstructure:"stations_file"`
	ReportFile   string `yaml:"report_file" mapstructure:"report_file"`
}

// CacheConfig configures the local SQLite side store.
type CacheConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// BoundaryConfig configures TPU boundary downloads.
type BoundaryConfig struct {
	OutputDir string   `yaml:"output_dir" mapstructure:"output_dir"`
	Vintages  []string `yaml:"vintages" mapstructure:"vintages"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.url", "https://en.wikipedia.org/wiki/List_of_MTR_stations")
	v.SetDefault("source.alternate_urls", []string{})
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("nominatim.user_agent", "station-cli/1.0 (coordinate verification)")
	v.SetDefault("nominatim.requests_per_sec", 1.0)
	v.SetDefault("nominatim.timeout_secs", 10)
	v.SetDefault("nominatim.qualifier", "MTR")
	v.SetDefault("nominatim.region_hint", "Hong Kong")
	v.SetDefault("output.stations_file", "data/mtr_stations.xlsx")
	v.SetDefault("output.report_file", "reports/coordinate_verification.md")
	v.SetDefault("cache.path", "data/station-cli.db")
	v.SetDefault("boundary.output_dir", "data/tpu")
	v.SetDefault("boundary.vintages", []string{"2011", "2016", "2021"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// WriteDefault marshals the default configuration to path as YAML. It
// refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}

	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return eris.Wrap(err, "config: unmarshal defaults")
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
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
