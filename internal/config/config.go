package config

import (
	"strings"

	"edabench/internal/errors"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Analysis   AnalysisConfig   `mapstructure:"analysis" yaml:"analysis"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Clustering ClusteringConfig `mapstructure:"clustering" yaml:"clustering"`
	ANOVA      ANOVAConfig      `mapstructure:"anova" yaml:"anova"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
}

// AnalysisConfig holds settings shared by every statistical procedure
type AnalysisConfig struct {
	Alpha       float64 `mapstructure:"alpha" yaml:"alpha"`
	PreviewRows int     `mapstructure:"preview_rows" yaml:"preview_rows"`
}

// LogConfig holds operation log and process logging settings
type LogConfig struct {
	MaxEntries  int    `mapstructure:"max_entries" yaml:"max_entries"`
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// ClusteringConfig holds K-Means settings
type ClusteringConfig struct {
	MaxK             int    `mapstructure:"max_k" yaml:"max_k"`
	Seed             int64  `mapstructure:"seed" yaml:"seed"`
	NInit            int    `mapstructure:"n_init" yaml:"n_init"`
	MaxIter          int    `mapstructure:"max_iter" yaml:"max_iter"`
	Workers          int    `mapstructure:"workers" yaml:"workers"`
	Column           string `mapstructure:"column" yaml:"column"`
	UnclusteredLabel string `mapstructure:"unclustered_label" yaml:"unclustered_label"`
}

// ANOVAConfig holds ANOVA and post-hoc settings
type ANOVAConfig struct {
	// StrictPostHoc rejects a post-hoc method that contradicts the Levene outcome
	StrictPostHoc bool `mapstructure:"strict_posthoc" yaml:"strict_posthoc"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `mapstructure:"port" yaml:"port"`
	GinMode string `mapstructure:"gin_mode" yaml:"gin_mode"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{Alpha: 0.05, PreviewRows: 5},
		Log:      LogConfig{MaxEntries: 0, Level: "info"},
		Clustering: ClusteringConfig{
			MaxK:             15,
			Seed:             42,
			NInit:            10,
			MaxIter:          300,
			Workers:          4,
			Column:           "Cluster_KMeans",
			UnclusteredLabel: "Not_Clustered",
		},
		Server: ServerConfig{Port: "8080", GinMode: "debug"},
	}
}

// Load reads configuration from defaults, an optional YAML file and
// EDABENCH_* environment variables, then validates it.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDABENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", cfgFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("analysis.alpha", d.Analysis.Alpha)
	v.SetDefault("analysis.preview_rows", d.Analysis.PreviewRows)
	v.SetDefault("log.max_entries", d.Log.MaxEntries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("clustering.max_k", d.Clustering.MaxK)
	v.SetDefault("clustering.seed", d.Clustering.Seed)
	v.SetDefault("clustering.n_init", d.Clustering.NInit)
	v.SetDefault("clustering.max_iter", d.Clustering.MaxIter)
	v.SetDefault("clustering.workers", d.Clustering.Workers)
	v.SetDefault("clustering.column", d.Clustering.Column)
	v.SetDefault("clustering.unclustered_label", d.Clustering.UnclusteredLabel)
	v.SetDefault("anova.strict_posthoc", d.ANOVA.StrictPostHoc)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.gin_mode", d.Server.GinMode)
}

func validateConfig(config *Config) error {
	if config.Analysis.Alpha <= 0 || config.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("analysis.alpha must be in (0, 1)")
	}
	if config.Analysis.PreviewRows < 1 {
		return errors.ConfigInvalid("analysis.preview_rows must be positive")
	}
	if config.Log.MaxEntries < 0 {
		return errors.ConfigInvalid("log.max_entries must not be negative")
	}
	if config.Clustering.MaxK < 2 {
		return errors.ConfigInvalid("clustering.max_k must be at least 2")
	}
	if config.Clustering.NInit < 1 || config.Clustering.MaxIter < 1 {
		return errors.ConfigInvalid("clustering.n_init and clustering.max_iter must be positive")
	}
	if config.Clustering.Workers < 1 {
		return errors.ConfigInvalid("clustering.workers must be positive")
	}
	if strings.TrimSpace(config.Clustering.Column) == "" || strings.TrimSpace(config.Clustering.UnclusteredLabel) == "" {
		return errors.ConfigInvalid("clustering.column and clustering.unclustered_label are required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server.port is required")
	}
	return nil
}
