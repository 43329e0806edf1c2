package presets

import (
	"os"
	"path/filepath"

	"github.com/attestlabs/go-attest/config"
)

func init() {
	register("standalone", standalone())
}

// standalone runs against a throwaway data folder with verbose logging.
func standalone() config.Config {
	conf := config.DefaultConfig()
	conf.DataDirParent = filepath.Join(os.TempDir(), "attest")
	conf.FileLock = filepath.Join(conf.DataDirParent, config.LockFileName)
	conf.DatabaseConnections = 4
	conf.DatabaseLatencyMetering = true

	conf.LOGGING.AppLoggerLevel = "debug"
	conf.LOGGING.BridgeLoggerLevel = "debug"
	conf.LOGGING.AccumulatorLoggerLevel = "debug"
	conf.LOGGING.LedgerLoggerLevel = "debug"
	return conf
}
