package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/takakv/pollard-rho/logger"
	"github.com/takakv/pollard-rho/rho"
	"github.com/takakv/pollard-rho/walk"
)

// Config holds the solver and logging settings.
type Config struct {
	Walk          string        `mapstructure:"walk"`
	TableSize     int           `mapstructure:"tablesize"`
	Hash          string        `mapstructure:"hash"`
	MaxSteps      uint64        `mapstructure:"maxsteps"`
	MaxAttempts   int           `mapstructure:"maxattempts"`
	MaxCandidates uint64        `mapstructure:"maxcandidates"`
	Seed          uint64        `mapstructure:"seed"` // 0 seeds from the entropy source
	Entropy       string        `mapstructure:"entropy"`
	Log           logger.Config `mapstructure:"log"`
}

// EnvPrefix prefixes environment overrides, e.g. RHO_WALK or RHO_LOG_LEVEL.
const EnvPrefix = "RHO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("walk", string(rho.AddingWalk))
	v.SetDefault("tablesize", walk.DefaultTableSize)
	v.SetDefault("hash", "xxhash")
	v.SetDefault("maxsteps", 0)
	v.SetDefault("maxattempts", 32)
	v.SetDefault("maxcandidates", rho.DefaultMaxCandidates)
	v.SetDefault("seed", 0)
	v.SetDefault("entropy", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.filename", "")
	v.SetDefault("log.maxage", 7)
	v.SetDefault("log.maxsize", 100)
	v.SetDefault("log.maxbackups", 3)
	v.SetDefault("log.compress", false)
}

// LoadConfig reads defaults, then the optional YAML file at path, then
// RHO_* environment variables, then overrides, each layer winning over the
// previous one.
func LoadConfig(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Mixes the user seed into the second PCG word.
const seedMix = 0x9e3779b97f4a7c15

// SolverConfig converts the loaded settings into solver parameters.
func (c *Config) SolverConfig() (rho.Config, error) {
	cfg := rho.DefaultConfig()

	kind, err := rho.ParseWalkKind(c.Walk)
	if err != nil {
		return cfg, err
	}
	hash, err := walk.ParseHash(c.Hash)
	if err != nil {
		return cfg, err
	}

	cfg.Walk = kind
	cfg.Hash = hash
	cfg.TableSize = c.TableSize
	cfg.MaxSteps = c.MaxSteps
	cfg.MaxAttempts = c.MaxAttempts
	cfg.MaxCandidates = c.MaxCandidates
	if c.Seed != 0 {
		cfg.Rand = walk.NewSeededRand(c.Seed, c.Seed^seedMix)
	}
	if c.Entropy != "" {
		cfg.Entropy = walk.FileSource(c.Entropy)
	}
	return cfg, nil
}
