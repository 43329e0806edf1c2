package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/accumulator"
	"github.com/attestlabs/go-attest/common/types"
)

const testConfig = `{
	"main": {
		"data-folder": "/var/lib/attest",
		"db-connections": 4,
		"metrics": true,
		"shutdown-timeout": "3s"
	},
	"bridge": {
		"chain": 1,
		"program": "0x0b00000000000000000000000000000000000000000000000000000000000000",
		"emitters": [
			{"chain": 2, "address": "0x00000000000000000000000000000000000000000000000000000000000000e1"}
		]
	},
	"guardians": {
		"quorum": 2,
		"initial-index": 3,
		"initial-set": [
			"0x0100000000000000000000000000000000000000",
			"0x0200000000000000000000000000000000000000"
		]
	},
	"accumulator": {
		"data-sources": [
			{"chain": 26, "emitter": "0x0101010101010101010101010101010101010101010101010101010101010101"}
		]
	},
	"logging": {
		"log-encoder": "json",
		"bridge": "debug"
	}
}`

func loadTestConfig(tb testing.TB, content string) (Config, error) {
	tb.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(tb, afero.WriteFile(fs, "/etc/attest/config.json", []byte(content), 0o600))

	vip := viper.New()
	if err := LoadConfig(fs, "/etc/attest/config.json", vip); err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	err := Unmarshal(vip, &cfg)
	return cfg, err
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadTestConfig(t, testConfig)
	require.NoError(t, err)

	require.Equal(t, "/var/lib/attest", cfg.DataDir())
	require.Equal(t, "/var/lib/attest/state.sql", cfg.DatabasePath())
	require.Equal(t, 4, cfg.DatabaseConnections)
	require.True(t, cfg.CollectMetrics)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, DefaultConfig().MetricsAddress, cfg.MetricsAddress)

	require.Equal(t, types.ChainSolana, cfg.Bridge.Chain)
	require.Equal(t, types.Address{0x0b}, cfg.Bridge.Program)
	require.Equal(t, []Emitter{{Chain: types.ChainEthereum, Address: types.Address{31: 0xe1}}}, cfg.Bridge.Emitters)

	require.Equal(t, 2, cfg.Guardians.Quorum)
	require.Equal(t, uint32(3), cfg.Guardians.InitialIndex)
	require.Equal(t, []types.GuardianKey{{1}, {2}}, cfg.Guardians.InitialSet)

	source := accumulator.DataSource{Chain: types.ChainPythnet}
	for i := range source.Emitter {
		source.Emitter[i] = 1
	}
	require.Equal(t, []accumulator.DataSource{source}, cfg.Accumulator.DataSources)

	require.Equal(t, "json", cfg.LOGGING.Encoder)
	require.Equal(t, "debug", cfg.LOGGING.BridgeLoggerLevel)
	require.Equal(t, DefaultLoggingConfig().LedgerLoggerLevel, cfg.LOGGING.LedgerLoggerLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := LoadConfig(afero.NewMemMapFs(), "/nowhere.json", viper.New())
		require.Error(t, err)
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := loadTestConfig(t, `{"main": {"no-such-option": 1}}`)
		require.ErrorContains(t, err, "no-such-option")
	})
	t.Run("bad address", func(t *testing.T) {
		_, err := loadTestConfig(t, `{"bridge": {"program": "0x01"}}`)
		require.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, LockFileName, cfg.FileLock[len(cfg.FileLock)-len(LockFileName):])
	require.Equal(t, types.ChainSolana, cfg.Bridge.Chain)
	require.NotZero(t, cfg.Guardians.CacheSize)
	require.Zero(t, cfg.Guardians.Quorum)
}
