// Package config contains attestation node configuration definitions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/attestlabs/go-attest/accumulator"
	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/guardians"
)

const (
	defaultDataDirName = "attest"
	// DatabaseFileName is the name of the state database inside the data folder.
	DatabaseFileName = "state.sql"
	// LockFileName is the name of the lock file inside the data folder.
	LockFileName = "LOCK"
)

// Config defines the top level configuration for an attestation node.
type Config struct {
	BaseConfig  `mapstructure:"main"`
	Preset      string            `mapstructure:"preset"`
	Bridge      BridgeConfig      `mapstructure:"bridge"`
	Guardians   GuardiansConfig   `mapstructure:"guardians"`
	Accumulator AccumulatorConfig `mapstructure:"accumulator"`
	LOGGING     LoggerConfig      `mapstructure:"logging"`
}

// BaseConfig defines the storage and process options of the node.
type BaseConfig struct {
	DataDirParent string `mapstructure:"data-folder"`
	FileLock      string `mapstructure:"filelock"`

	DatabaseConnections     int  `mapstructure:"db-connections"`
	DatabaseLatencyMetering bool `mapstructure:"db-latency-metering"`

	CollectMetrics bool   `mapstructure:"metrics"`
	MetricsAddress string `mapstructure:"metrics-address"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// DataDir returns the data folder of the node.
func (cfg *BaseConfig) DataDir() string {
	return filepath.Clean(cfg.DataDirParent)
}

// DatabasePath returns the location of the state database.
func (cfg *BaseConfig) DatabasePath() string {
	return filepath.Join(cfg.DataDir(), DatabaseFileName)
}

// BridgeConfig configures transfer completion on the local chain.
type BridgeConfig struct {
	Chain             types.ChainID `mapstructure:"chain"`
	Program           types.Address `mapstructure:"program"`
	AssociatedProgram types.Address `mapstructure:"associated-program"`
	// Emitters are registered at startup unless already present.
	Emitters []Emitter `mapstructure:"emitters"`
}

// Emitter is a bridge contract on a foreign chain.
type Emitter struct {
	Chain   types.ChainID `mapstructure:"chain"`
	Address types.Address `mapstructure:"address"`
}

// GuardiansConfig configures signature verification.
type GuardiansConfig struct {
	// Quorum is the number of signatures required. Zero selects 2/3+1 of the set.
	Quorum    int `mapstructure:"quorum"`
	CacheSize int `mapstructure:"cache-size"`
	// InitialSet is stored at startup if the database has no guardian set yet.
	InitialIndex uint32              `mapstructure:"initial-index"`
	InitialSet   []types.GuardianKey `mapstructure:"initial-set"`
}

// AccumulatorConfig configures the receiver of accumulator updates.
type AccumulatorConfig struct {
	Program     types.Address            `mapstructure:"program"`
	DataSources []accumulator.DataSource `mapstructure:"data-sources"`
}

// DefaultConfig returns the default configuration for a node.
func DefaultConfig() Config {
	dataDir := defaultDataDir()
	return Config{
		BaseConfig: BaseConfig{
			DataDirParent:       dataDir,
			FileLock:            filepath.Join(dataDir, LockFileName),
			DatabaseConnections: 16,
			MetricsAddress:      "127.0.0.1:1010",
			ShutdownTimeout:     10 * time.Second,
		},
		Bridge: BridgeConfig{
			Chain: types.ChainSolana,
		},
		Guardians: GuardiansConfig{
			CacheSize: guardians.DefaultCacheSize,
		},
		LOGGING: DefaultLoggingConfig(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), defaultDataDirName)
	}
	return filepath.Join(home, defaultDataDirName)
}

// LoadConfig reads the config file at path from fs into vip.
func LoadConfig(fs afero.Fs, path string, vip *viper.Viper) error {
	vip.SetFs(fs)
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes the values loaded into vip over cfg. Keys that don't map to a
// field are rejected.
func Unmarshal(vip *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		withZeroFields(),
		withIgnoreUntagged(),
		withErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func withZeroFields() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ZeroFields = true
	}
}

func withIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func withErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}
