package node

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/accumulator"
	"github.com/attestlabs/go-attest/bridge"
	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/config"
	"github.com/attestlabs/go-attest/ledger"
	"github.com/attestlabs/go-attest/log/logtest"
	"github.com/attestlabs/go-attest/signing"
	"github.com/attestlabs/go-attest/vaa"
	"github.com/attestlabs/go-attest/vaa/vaatest"
)

var (
	emitter = types.Address{0xe1}
	source  = accumulator.DataSource{Chain: types.ChainPythnet, Emitter: types.Address{1}}
)

func testConfig(tb testing.TB, signers []*signing.GuardianSigner) *config.Config {
	cfg := config.DefaultConfig()
	cfg.DataDirParent = tb.TempDir()
	cfg.FileLock = filepath.Join(cfg.DataDirParent, config.LockFileName)
	cfg.DatabaseConnections = 2
	cfg.Bridge.Program = types.Address{0xb0}
	cfg.Bridge.Emitters = []config.Emitter{{Chain: types.ChainEthereum, Address: emitter}}
	cfg.Accumulator.Program = types.Address{0xa0}
	cfg.Accumulator.DataSources = []accumulator.DataSource{source}
	cfg.Guardians.InitialSet = vaatest.GuardianSet(0, signers).Keys
	return &cfg
}

func newTestApp(tb testing.TB, cfg *config.Config) *App {
	app := New(WithConfig(cfg), WithLog(logtest.New(tb)))
	require.NoError(tb, app.Lock())
	require.NoError(tb, app.Initialize(context.Background()))
	return app
}

func signedTransfer(tb testing.TB, signers []*signing.GuardianSigner, transfer *bridge.Transfer) []byte {
	payload, err := transfer.Encode()
	require.NoError(tb, err)
	v := vaatest.New(0, vaa.Body{
		EmitterChain:   types.ChainEthereum,
		EmitterAddress: emitter,
		Sequence:       1,
		Payload:        payload,
	})
	return vaatest.Encode(tb, v, signers, vaatest.First(13)...)
}

func TestAppCompletesTransfers(t *testing.T) {
	ctx := context.Background()
	signers := vaatest.DummyGuardians(t, vaatest.DefaultGuardians)
	cfg := testConfig(t, signers)
	app := newTestApp(t, cfg)

	set, err := app.Guardians().Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, cfg.Guardians.InitialSet, set.Keys)

	transfer := &bridge.Transfer{
		TokenAddress: types.Address{0x31},
		TokenChain:   types.ChainEthereum,
		To:           types.Address{0x41},
		ToChain:      cfg.Bridge.Chain,
	}
	transfer.SetName("Token")
	raw := signedTransfer(t, signers, transfer)
	key := types.ClaimKey{EmitterChain: types.ChainEthereum, EmitterAddress: emitter}
	accounts := app.Bridge().AccountsFor(key, transfer)
	require.NoError(t, app.Bridge().Complete(ctx, raw, accounts))

	messages := [][]byte{(&accumulator.PriceFeedMessage{FeedID: types.Hash32{1}, PublishTime: 10}).Encode()}
	batch, err := accumulator.NewBatch(1, 0, messages)
	require.NoError(t, err)
	v := vaatest.New(0, vaa.Body{
		EmitterChain:   source.Chain,
		EmitterAddress: source.Emitter,
		Sequence:       1,
		Payload:        batch.Payload().Encode(),
	})
	data, err := batch.UpdateData(vaatest.Encode(t, v, signers, vaatest.First(13)...), messages...)
	require.NoError(t, err)
	changed, err := app.Receiver().Post(ctx, data)
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	app.Cleanup(ctx)
	app.Unlock()

	// claims survive a restart and the startup seeding is idempotent
	restarted := newTestApp(t, cfg)
	t.Cleanup(func() {
		restarted.Cleanup(ctx)
		restarted.Unlock()
	})
	require.ErrorIs(t, restarted.Bridge().Complete(ctx, raw, accounts), ledger.ErrReplay)
	_, err = restarted.Receiver().Post(ctx, data)
	require.ErrorIs(t, err, ledger.ErrReplay)
	feed, err := restarted.Receiver().PriceFeed(types.Hash32{1})
	require.NoError(t, err)
	require.Equal(t, int64(10), feed.PublishTime)
}

func TestQuorumFromConfig(t *testing.T) {
	ctx := context.Background()
	signers := vaatest.DummyGuardians(t, vaatest.DefaultGuardians)
	cfg := testConfig(t, signers)
	cfg.Guardians.Quorum = 19
	app := newTestApp(t, cfg)
	t.Cleanup(func() {
		app.Cleanup(ctx)
		app.Unlock()
	})

	transfer := &bridge.Transfer{
		TokenAddress: types.Address{0x31},
		TokenChain:   types.ChainEthereum,
		To:           types.Address{0x41},
		ToChain:      cfg.Bridge.Chain,
	}
	raw := signedTransfer(t, signers, transfer)
	key := types.ClaimKey{EmitterChain: types.ChainEthereum, EmitterAddress: emitter}
	err := app.Bridge().Complete(ctx, raw, app.Bridge().AccountsFor(key, transfer))
	require.ErrorIs(t, err, vaa.ErrQuorumNotMet)
}

func TestLock(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FileLock = filepath.Join(t.TempDir(), "nested", config.LockFileName)

	first := New(WithConfig(&cfg), WithLog(logtest.New(t)))
	require.NoError(t, first.Lock())
	second := New(WithConfig(&cfg), WithLog(logtest.New(t)))
	require.ErrorContains(t, second.Lock(), "only one node")

	first.Unlock()
	require.NoError(t, second.Lock())
	second.Unlock()
	second.Unlock()
}

func TestStartStopsOnCancel(t *testing.T) {
	signers := vaatest.DummyGuardians(t, 4)
	cfg := testConfig(t, signers)
	app := New(WithConfig(cfg), WithLog(logtest.New(t)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.Start(ctx))

	// the lock is released on return
	require.NoError(t, app.Lock())
	app.Unlock()
}

func TestSetLogLevel(t *testing.T) {
	app := New(WithLog(logtest.New(t)))
	require.Error(t, app.SetLogLevel(BridgeLogger, "debug"))

	app.addLogger(BridgeLogger)
	require.False(t, app.loggers[BridgeLogger].Enabled(-1))
	require.NoError(t, app.SetLogLevel(BridgeLogger, "debug"))
	require.True(t, app.loggers[BridgeLogger].Enabled(-1))
	require.Error(t, app.SetLogLevel(BridgeLogger, "loud"))
}

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `{"preset": "standalone", "bridge": {"chain": 2}, "logging": {"ledger": "warn"}}`
	require.NoError(t, afero.WriteFile(fs, "/config.json", []byte(content), 0o600))

	cfg, err := LoadConfig(fs, "", "/config.json")
	require.NoError(t, err)
	require.Equal(t, "standalone", cfg.Preset)
	require.True(t, cfg.DatabaseLatencyMetering)
	require.Equal(t, types.ChainEthereum, cfg.Bridge.Chain)
	require.Equal(t, "warn", cfg.LOGGING.LedgerLoggerLevel)
	require.Equal(t, "debug", cfg.LOGGING.BridgeLoggerLevel)

	cfg, err = LoadConfig(fs, "testnet", "")
	require.NoError(t, err)
	require.Equal(t, "testnet", cfg.Preset)

	_, err = LoadConfig(fs, "unknown", "")
	require.Error(t, err)
}
