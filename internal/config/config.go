package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/hexwar/internal/common"
	"github.com/mitchelldurbincs/hexwar/internal/game/core"
	"github.com/mitchelldurbincs/hexwar/internal/game/mapgen"
	"github.com/mitchelldurbincs/hexwar/internal/persistence"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Map         MapConfig         `mapstructure:"map"`
	Dice        DiceConfig        `mapstructure:"dice"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Demo        DemoConfig        `mapstructure:"demo"`
}

// GameConfig holds the rules new sessions are created with
type GameConfig struct {
	ActionsPerTurn        int `mapstructure:"actions_per_turn"`
	TurnsPerRound         int `mapstructure:"turns_per_round"`
	RoundsPerGame         int `mapstructure:"rounds_per_game"` // 0 = unlimited
	ReinforcementsPerTurn int `mapstructure:"reinforcements_per_turn"`
	PlayerCount           int `mapstructure:"player_count"`
	MaxPlayerCount        int `mapstructure:"max_player_count"`
	MaxArmyStrength       int `mapstructure:"max_army_strength"`
}

// MapConfig holds map generation settings
type MapConfig struct {
	QRadius         int     `mapstructure:"q_radius"`
	RRadius         int     `mapstructure:"r_radius"`
	BlockedRatio    float64 `mapstructure:"blocked_ratio"`
	NeutralMaxArmy  int     `mapstructure:"neutral_max_army"`
	StartArmy       int     `mapstructure:"start_army"`
	MinStartSpacing int     `mapstructure:"min_start_spacing"`
	Seed            uint64  `mapstructure:"seed"` // 0 = time based
}

// DiceConfig holds dice roller settings
type DiceConfig struct {
	Seed        uint64 `mapstructure:"seed"` // 0 = time based
	RollDelayMs int    `mapstructure:"roll_delay_ms"`
}

// PersistenceConfig selects the store backend for autosave and maps
type PersistenceConfig struct {
	StoreType   string `mapstructure:"store_type"`
	BaseDir     string `mapstructure:"base_dir"`
	RedisURL    string `mapstructure:"redis_url"`
	DatabaseURL string `mapstructure:"database_url"`
	Table       string `mapstructure:"table"`
	Autosave    bool   `mapstructure:"autosave"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Events bool   `mapstructure:"events"` // log every bus event
}

// DemoConfig holds settings of the headless demo runner
type DemoConfig struct {
	MaxSteps    int     `mapstructure:"max_steps"`
	AttackBias  float64 `mapstructure:"attack_bias"`
	RenderEvery int     `mapstructure:"render_every"` // 0 = only the final board
	Color       bool    `mapstructure:"color"`
}

var (
	// Global config instance
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	rules := core.DefaultRules()
	v.SetDefault("game.actions_per_turn", rules.ActionsPerTurn)
	v.SetDefault("game.turns_per_round", rules.TurnsPerRound)
	v.SetDefault("game.rounds_per_game", rules.RoundsPerGame)
	v.SetDefault("game.reinforcements_per_turn", rules.ReinforcementsPerTurn)
	v.SetDefault("game.player_count", rules.PlayerCount)
	v.SetDefault("game.max_player_count", common.MaxPlayerCount)
	v.SetDefault("game.max_army_strength", rules.MaxArmyStrength)

	mapDefaults := mapgen.DefaultMapConfig(5, 5, rules.PlayerCount)
	v.SetDefault("map.q_radius", mapDefaults.QRadius)
	v.SetDefault("map.r_radius", mapDefaults.RRadius)
	v.SetDefault("map.blocked_ratio", mapDefaults.BlockedRatio)
	v.SetDefault("map.neutral_max_army", mapDefaults.NeutralMaxArmy)
	v.SetDefault("map.start_army", mapDefaults.StartArmy)
	v.SetDefault("map.min_start_spacing", mapDefaults.MinStartSpacing)
	v.SetDefault("map.seed", 0)

	v.SetDefault("dice.seed", 0)
	v.SetDefault("dice.roll_delay_ms", 0)

	store := persistence.DefaultStoreConfig()
	v.SetDefault("persistence.store_type", string(persistence.StoreTypeFile))
	v.SetDefault("persistence.base_dir", store.BaseDir)
	v.SetDefault("persistence.redis_url", "")
	v.SetDefault("persistence.database_url", "")
	v.SetDefault("persistence.table", store.Table)
	v.SetDefault("persistence.autosave", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.events", false)

	v.SetDefault("demo.max_steps", 300)
	v.SetDefault("demo.attack_bias", 0.6)
	v.SetDefault("demo.render_every", 0)
	v.SetDefault("demo.color", true)
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/hexwar")
	}

	nv.SetEnvPrefix("HEXWAR")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		// A missing file means defaults. For the search paths viper reports
		// that as ConfigFileNotFoundError; an explicit path fails with an
		// os error instead.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := nv.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	v, cfg = nv, c
	mu.Unlock()
	return nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml from the working directory
// over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}
	envFile := fmt.Sprintf("config.%s.yaml", env)

	vp := GetViper()
	vp.SetConfigFile(envFile)
	if err := vp.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}
	return reload(vp)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	vp := GetViper()
	vp.Set(key, value)
	if err := reload(vp); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Config update rejected")
	}
}

// GetString gets a string value from config
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return GetViper().GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A reloaded config
// that fails validation is logged and the previous values stay in effect.
// Running sessions keep the rules they were created with.
func WatchConfig(onChange func()) {
	vp := GetViper()
	vp.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(vp); err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring invalid config change")
			return
		}
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("Config reloaded")
		if onChange != nil {
			onChange()
		}
	})
	vp.WatchConfig()
}

func reload(vp *viper.Viper) error {
	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return err
	}
	mu.Lock()
	cfg = c
	mu.Unlock()
	return nil
}

// Rules returns the session rules described by the game section
func (c *Config) Rules() core.Rules {
	return core.Rules{
		ActionsPerTurn:        c.Game.ActionsPerTurn,
		TurnsPerRound:         c.Game.TurnsPerRound,
		RoundsPerGame:         c.Game.RoundsPerGame,
		ReinforcementsPerTurn: c.Game.ReinforcementsPerTurn,
		PlayerCount:           c.Game.PlayerCount,
		MaxArmyStrength:       c.Game.MaxArmyStrength,
	}
}

// GeneratorConfig returns the map generator settings
func (c *Config) GeneratorConfig() mapgen.MapConfig {
	return mapgen.MapConfig{
		QRadius:         c.Map.QRadius,
		RRadius:         c.Map.RRadius,
		PlayerCount:     c.Game.PlayerCount,
		BlockedRatio:    c.Map.BlockedRatio,
		NeutralMaxArmy:  c.Map.NeutralMaxArmy,
		StartArmy:       c.Map.StartArmy,
		MinStartSpacing: c.Map.MinStartSpacing,
		MaxArmy:         c.Game.MaxArmyStrength,
	}
}

// StoreConfig returns the persistence backend settings
func (c *Config) StoreConfig() persistence.StoreConfig {
	return persistence.StoreConfig{
		Type:        persistence.StoreType(c.Persistence.StoreType),
		BaseDir:     c.Persistence.BaseDir,
		RedisURL:    c.Persistence.RedisURL,
		DatabaseURL: c.Persistence.DatabaseURL,
		Table:       c.Persistence.Table,
	}
}

// LogLevel parses logging.level, defaulting to info
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.MaxPlayerCount < 1 || c.Game.MaxPlayerCount > common.MaxPlayerCount {
		return fmt.Errorf("game.max_player_count must be between 1 and %d", common.MaxPlayerCount)
	}
	if c.Game.PlayerCount > c.Game.MaxPlayerCount {
		return fmt.Errorf("game.player_count must not exceed game.max_player_count (%d)", c.Game.MaxPlayerCount)
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	if c.Map.QRadius < 1 || c.Map.RRadius < 1 {
		return fmt.Errorf("map radii must be at least 1")
	}
	if c.Map.BlockedRatio < 0 || c.Map.BlockedRatio >= 1 {
		return fmt.Errorf("map.blocked_ratio must be in [0, 1)")
	}
	if c.Map.NeutralMaxArmy < 0 {
		return fmt.Errorf("map.neutral_max_army must be non-negative")
	}
	if c.Map.StartArmy < 1 {
		return fmt.Errorf("map.start_army must be at least 1")
	}
	if c.Map.MinStartSpacing < 1 {
		return fmt.Errorf("map.min_start_spacing must be at least 1")
	}

	if c.Dice.RollDelayMs < 0 {
		return fmt.Errorf("dice.roll_delay_ms must be non-negative")
	}

	switch persistence.StoreType(c.Persistence.StoreType) {
	case persistence.StoreTypeNone, persistence.StoreTypeMemory:
	case persistence.StoreTypeFile:
		if c.Persistence.BaseDir == "" {
			return fmt.Errorf("persistence.base_dir is required for the file store")
		}
	case persistence.StoreTypeRedis:
		if c.Persistence.RedisURL == "" {
			return fmt.Errorf("persistence.redis_url is required for the redis store")
		}
	case persistence.StoreTypePostgres:
		if c.Persistence.DatabaseURL == "" {
			return fmt.Errorf("persistence.database_url is required for the postgres store")
		}
	default:
		return fmt.Errorf("persistence.store_type %q: %w", c.Persistence.StoreType, persistence.ErrInvalidStoreType)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if c.Demo.MaxSteps < 1 {
		return fmt.Errorf("demo.max_steps must be positive")
	}
	if c.Demo.AttackBias < 0 || c.Demo.AttackBias > 1 {
		return fmt.Errorf("demo.attack_bias must be between 0 and 1")
	}
	if c.Demo.RenderEvery < 0 {
		return fmt.Errorf("demo.render_every must be non-negative")
	}
	return nil
}
