package types

// Mint is a token definition on the local chain.
type Mint struct {
	Address   Address
	Authority Address
	Decimals  uint8
	Supply    uint64
}

// TokenAccount holds an amount of one mint for one owner.
type TokenAccount struct {
	Address Address
	Mint    Address
	Owner   Address
	Amount  uint64
}

// WrappedMeta links a wrapped mint to the asset it represents on its origin chain.
type WrappedMeta struct {
	Address      Address
	Mint         Address
	TokenChain   ChainID
	TokenAddress Address
	TokenID      Hash32
}

// TokenMetadata is the display metadata of a mint.
type TokenMetadata struct {
	Mint   Address
	Name   string
	Symbol string
	URI    string
}

// PriceFeed is the latest accepted price for one feed.
type PriceFeed struct {
	ID              Hash32
	Price           int64
	Conf            uint64
	Exponent        int32
	PublishTime     int64
	PrevPublishTime int64
	EMAPrice        int64
	EMAConf         uint64
	// Slot of the accumulator batch the price was taken from.
	Slot uint64
}
