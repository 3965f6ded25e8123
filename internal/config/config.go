package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/newthinker/bondcalc/internal/storage/archive"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Solver    SolverConfig    `mapstructure:"solver"`
	Inflation InflationConfig `mapstructure:"inflation"`
	Portfolio portfolio.Spec  `mapstructure:"portfolio"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	APIKey       string `mapstructure:"api_key"` // empty disables authentication
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"` // zap level name, empty keeps the preset
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Archive converts the section into backend settings.
func (s StorageConfig) Archive() archive.Config {
	return archive.Config{
		Type: s.Type,
		Path: s.Path,
		S3: archive.S3Config{
			Bucket:    s.S3.Bucket,
			Endpoint:  s.S3.Endpoint,
			Region:    s.S3.Region,
			AccessKey: s.S3.AccessKey,
			SecretKey: s.S3.SecretKey,
			Prefix:    s.S3.Prefix,
		},
	}
}

// ValuationConfig selects the valuation method and its strategies.
type ValuationConfig struct {
	Method      string `mapstructure:"method"`
	Accrued     string `mapstructure:"accrued"`
	Inflation   string `mapstructure:"inflation"`
	CacheSize   int    `mapstructure:"cache_size"`
	Concurrency int    `mapstructure:"concurrency"`
}

// SolverConfig tunes the yield root finder. Zero values keep the finder's
// defaults.
type SolverConfig struct {
	Method       string  `mapstructure:"method"`
	Start        float64 `mapstructure:"start"`
	Step         float64 `mapstructure:"step"`
	Precision    float64 `mapstructure:"precision"`
	MaxIteration int     `mapstructure:"max_iteration"`
	Lower        float64 `mapstructure:"lower"`
	Upper        float64 `mapstructure:"upper"`
}

// InflationConfig lists the index files to load from storage.
type InflationConfig struct {
	Indexes []IndexSource `mapstructure:"indexes"`
}

// IndexSource is an index id and its CSV path in storage. A list keeps ids
// case-sensitive, which viper map keys are not.
type IndexSource struct {
	ID   string `mapstructure:"id"`
	Path string `mapstructure:"path"`
}

// Paths returns the index sources as id -> path.
func (c InflationConfig) Paths() map[string]string {
	out := make(map[string]string, len(c.Indexes))
	for _, idx := range c.Indexes {
		out[idx.ID] = idx.Path
	}
	return out
}

// Load reads configuration from file on top of Defaults. A .env file in the
// working directory, when present, is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("reading config: %w", err))
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			MaxBodyBytes: 1 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Storage: StorageConfig{
			Type: archive.TypeLocalFS,
			Path: "data",
		},
		Valuation: ValuationConfig{
			Method:      "actuarial",
			Accrued:     "actuarial",
			Inflation:   "none",
			CacheSize:   4096,
			Concurrency: 4,
		},
		Solver: SolverConfig{
			Method: "newton",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_body_bytes cannot be negative, got %d", c.Server.MaxBodyBytes))
	}

	switch c.Storage.Type {
	case archive.TypeLocalFS, "":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("storage path required for localfs"))
		}
	case archive.TypeS3:
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("storage s3 bucket required"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	if c.Valuation.CacheSize < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache_size cannot be negative, got %d", c.Valuation.CacheSize))
	}
	if c.Valuation.Concurrency < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("concurrency cannot be negative, got %d", c.Valuation.Concurrency))
	}

	if c.Solver.Precision < 0 || c.Solver.Step < 0 || c.Solver.MaxIteration < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("solver precision, step and max_iteration cannot be negative"))
	}
	if c.Solver.Lower != 0 && c.Solver.Upper != 0 && c.Solver.Lower >= c.Solver.Upper {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("solver lower %g must be below upper %g", c.Solver.Lower, c.Solver.Upper))
	}

	seen := make(map[string]bool, len(c.Inflation.Indexes))
	for _, idx := range c.Inflation.Indexes {
		if idx.ID == "" || idx.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("inflation index needs id and path"))
		}
		if seen[idx.ID] {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("duplicate inflation index %q", idx.ID))
		}
		seen[idx.ID] = true
	}

	return nil
}
