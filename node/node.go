// Package node wires storage, verification and transfer completion into a
// running attestation node.
package node

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attestlabs/go-attest/accumulator"
	"github.com/attestlabs/go-attest/bridge"
	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/config"
	"github.com/attestlabs/go-attest/config/presets"
	"github.com/attestlabs/go-attest/guardians"
	"github.com/attestlabs/go-attest/ledger"
	"github.com/attestlabs/go-attest/log"
	"github.com/attestlabs/go-attest/metrics"
	"github.com/attestlabs/go-attest/sql"
	"github.com/attestlabs/go-attest/vaa"
)

// Logger names.
const (
	AppLogger         = "app"
	DatabaseLogger    = "database"
	GuardiansLogger   = "guardians"
	VerifierLogger    = "verifier"
	LedgerLogger      = "ledger"
	BridgeLogger      = "bridge"
	AccumulatorLogger = "accumulator"
)

// LoadConfig reads the config file at path over the defaults, or over preset if one
// is given as argument or in the file.
func LoadConfig(fs afero.Fs, preset, path string) (*config.Config, error) {
	vip := viper.New()
	if path != "" {
		if err := config.LoadConfig(fs, path, vip); err != nil {
			return nil, err
		}
	}
	if len(preset) == 0 && vip.IsSet("preset") {
		preset = vip.GetString("preset")
	}
	cfg := config.DefaultConfig()
	if len(preset) > 0 {
		p, err := presets.Get(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if err := config.Unmarshal(vip, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Option to modify an App instance.
type Option func(app *App)

// WithLog sets the root logger. Module levels from the config still apply.
func WithLog(logger *zap.Logger) Option {
	return func(app *App) {
		app.log = logger
	}
}

// WithConfig overwrites the default App config.
func WithConfig(conf *config.Config) Option {
	return func(app *App) {
		app.Config = conf
	}
}

// WithClock sets the clock used for guardian set expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(app *App) {
		app.clock = clock
	}
}

// App is an attestation node.
type App struct {
	Config *config.Config

	log     *zap.Logger
	loggers map[string]*zap.AtomicLevel
	clock   clockwork.Clock

	fileLock *flock.Flock
	db       *sql.Database
	store    *guardians.Store
	verifier *vaa.Verifier
	bridge   *bridge.Bridge
	receiver *accumulator.Receiver
	metrics  *metrics.Server
}

// New creates an App. Call Initialize before using its services.
func New(opts ...Option) *App {
	defaultConfig := config.DefaultConfig()
	app := &App{
		Config:  &defaultConfig,
		loggers: make(map[string]*zap.AtomicLevel),
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.log == nil {
		enc, err := log.NewEncoder(app.Config.LOGGING.Encoder)
		if err != nil {
			enc, _ = log.NewEncoder(log.ConsoleEncoder)
		}
		app.log = log.NewWithLevel("", zap.NewAtomicLevelAt(zapcore.DebugLevel), enc)
	}
	return app
}

// Lock locks the data folder for exclusive use. It returns an error if another
// node holds the lock.
func (app *App) Lock() error {
	lockDir := filepath.Dir(app.Config.FileLock)
	if _, err := os.Stat(lockDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(lockDir, os.ModePerm); err != nil {
			return fmt.Errorf("creating dir %s for lock %s: %w", lockDir, app.Config.FileLock, err)
		}
	}
	fl := flock.New(app.Config.FileLock)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("flock %s: %w", app.Config.FileLock, err)
	} else if !locked {
		return fmt.Errorf("only one node should use the data folder (locking file %s)", fl.Path())
	}
	app.fileLock = fl
	return nil
}

// Unlock unlocks the data folder. It is a no-op if the app is not locked.
func (app *App) Unlock() {
	if app.fileLock == nil {
		return
	}
	if err := app.fileLock.Unlock(); err != nil {
		app.log.Error("failed to unlock file",
			zap.String("path", app.fileLock.Path()),
			zap.Error(err),
		)
	}
	app.fileLock = nil
}

// addLogger returns a logger named after the module with the level configured for it.
// Calling it twice for the same name replaces the level tracked by SetLogLevel.
func (app *App) addLogger(name string) *zap.Logger {
	lvl, err := zap.ParseAtomicLevel(moduleLevel(&app.Config.LOGGING, name))
	if err != nil {
		app.log.Warn("invalid log level, using info", zap.String("module", name), zap.Error(err))
		lvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	app.loggers[name] = &lvl
	return app.log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &levelCore{Core: core, level: lvl}
	})).Named(name)
}

func moduleLevel(cfg *config.LoggerConfig, name string) string {
	switch name {
	case AppLogger:
		return cfg.AppLoggerLevel
	case DatabaseLogger:
		return cfg.DatabaseLoggerLevel
	case GuardiansLogger:
		return cfg.GuardiansLoggerLevel
	case VerifierLogger:
		return cfg.VerifierLoggerLevel
	case LedgerLogger:
		return cfg.LedgerLoggerLevel
	case BridgeLogger:
		return cfg.BridgeLoggerLevel
	case AccumulatorLogger:
		return cfg.AccumulatorLoggerLevel
	default:
		return ""
	}
}

// SetLogLevel updates the log level of an existing logger.
func (app *App) SetLogLevel(name, loglevel string) error {
	lvl, ok := app.loggers[name]
	if !ok {
		return fmt.Errorf("cannot find logger %v", name)
	}
	if err := lvl.UnmarshalText([]byte(loglevel)); err != nil {
		return fmt.Errorf("unmarshal text: %w", err)
	}
	return nil
}

// Initialize opens the database and builds every service. The initial guardian set
// and the configured emitters are stored if they are missing.
func (app *App) Initialize(ctx context.Context) error {
	if err := app.setupDB(); err != nil {
		return err
	}
	store, err := guardians.New(app.db,
		guardians.WithLogger(app.addLogger(GuardiansLogger)),
		guardians.WithCacheSize(app.Config.Guardians.CacheSize),
	)
	if err != nil {
		return err
	}
	app.store = store
	if err := app.seedGuardians(ctx); err != nil {
		return err
	}
	app.verifier = vaa.NewVerifier(store,
		vaa.WithLogger(app.addLogger(VerifierLogger)),
		vaa.WithClock(app.clock),
		vaa.WithQuorum(app.Config.Guardians.Quorum),
	)

	ledgerLog := app.addLogger(LedgerLogger)
	opts := []bridge.Opt{bridge.WithLogger(app.addLogger(BridgeLogger))}
	if !app.Config.Bridge.AssociatedProgram.IsEmpty() {
		opts = append(opts, bridge.WithAssociatedProgram(app.Config.Bridge.AssociatedProgram))
	}
	app.bridge = bridge.New(app.db, app.verifier,
		ledger.New(app.db, app.Config.Bridge.Program, ledger.WithLogger(ledgerLog)),
		app.Config.Bridge.Chain,
		opts...,
	)
	for _, emitter := range app.Config.Bridge.Emitters {
		_, err := app.bridge.RegisterEmitter(ctx, emitter.Chain, emitter.Address)
		if err != nil && !errors.Is(err, sql.ErrObjectExists) {
			return fmt.Errorf("register emitter %s on %s: %w", emitter.Address.ShortString(), emitter.Chain, err)
		}
	}

	app.receiver = accumulator.NewReceiver(app.db, app.verifier,
		ledger.New(app.db, app.Config.Accumulator.Program, ledger.WithLogger(ledgerLog)),
		accumulator.WithLogger(app.addLogger(AccumulatorLogger)),
		accumulator.WithDataSources(app.Config.Accumulator.DataSources...),
	)
	return nil
}

func (app *App) setupDB() error {
	dbPath := app.Config.DataDir()
	if err := os.MkdirAll(dbPath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", dbPath, err)
	}
	db, err := sql.Open("file:"+app.Config.DatabasePath(),
		sql.WithLogger(app.addLogger(DatabaseLogger)),
		sql.WithConnections(app.Config.DatabaseConnections),
		sql.WithLatencyMetering(app.Config.DatabaseLatencyMetering),
	)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.db = db
	return nil
}

func (app *App) seedGuardians(ctx context.Context) error {
	if len(app.Config.Guardians.InitialSet) == 0 {
		return nil
	}
	_, err := app.store.Latest(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNotFound):
		return err
	}
	set := &types.GuardianSet{
		Index: app.Config.Guardians.InitialIndex,
		Keys:  app.Config.Guardians.InitialSet,
	}
	if err := app.store.Add(ctx, set); err != nil {
		return fmt.Errorf("store initial guardian set: %w", err)
	}
	return nil
}

// Start locks the data folder, initializes services and serves until ctx is canceled.
func (app *App) Start(ctx context.Context) error {
	logger := app.addLogger(AppLogger)
	if err := app.Lock(); err != nil {
		return err
	}
	defer app.Unlock()
	if err := app.Initialize(ctx); err != nil {
		return errors.Join(err, app.closeDB())
	}
	if app.Config.CollectMetrics {
		srv, err := metrics.NewServer(app.Config.MetricsAddress, logger)
		if err != nil {
			return errors.Join(err, app.closeDB())
		}
		app.metrics = srv
		srv.Start()
		logger.Info("metrics server started", zap.Stringer("address", srv.Addr()))
	}
	logger.Info("node started",
		zap.Stringer("chain", app.Config.Bridge.Chain),
		log.ZShortStringer("program", app.Config.Bridge.Program),
		zap.String("data", app.Config.DataDir()),
	)
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
	defer cancel()
	app.Cleanup(stopCtx)
	return nil
}

// Cleanup stops all services and closes the database.
func (app *App) Cleanup(ctx context.Context) {
	app.log.Info("app cleanup starting...")
	if app.metrics != nil {
		if err := app.metrics.Stop(ctx); err != nil {
			app.log.Warn("failed to stop metrics server", zap.Error(err))
		}
		app.metrics = nil
	}
	if err := app.closeDB(); err != nil {
		app.log.Warn("failed to close database", zap.Error(err))
	}
	app.log.Info("app cleanup completed")
}

func (app *App) closeDB() error {
	if app.db == nil {
		return nil
	}
	err := app.db.Close()
	app.db = nil
	return err
}

// Bridge returns the transfer completion service.
func (app *App) Bridge() *bridge.Bridge {
	return app.bridge
}

// Receiver returns the accumulator update receiver.
func (app *App) Receiver() *accumulator.Receiver {
	return app.receiver
}

// Guardians returns the guardian set store.
func (app *App) Guardians() *guardians.Store {
	return app.store
}

// levelCore filters entries below a module level before they reach the wrapped core.
type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *levelCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), level: c.level}
}

func (c *levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(ent.Level) {
		return ce
	}
	return c.Core.Check(ent, ce)
}
