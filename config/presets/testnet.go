package presets

import (
	"github.com/attestlabs/go-attest/accumulator"
	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/config"
)

func init() {
	register("testnet", testnet())
}

// testnet accepts roots from the pythnet accumulator emitter and collects metrics.
func testnet() config.Config {
	conf := config.DefaultConfig()
	conf.CollectMetrics = true
	conf.LOGGING.Encoder = "json"

	var emitter types.Address
	for i := range emitter {
		emitter[i] = 1
	}
	conf.Accumulator.DataSources = []accumulator.DataSource{
		{Chain: types.ChainPythnet, Emitter: emitter},
	}
	return conf
}
