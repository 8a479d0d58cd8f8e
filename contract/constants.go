package contract

// -----------------------------------------------------------------------------
// Fixed-point denominators
// -----------------------------------------------------------------------------

const (
	// PercentDenominator scales vesting schedule percents: 10000 == 100%.
	PercentDenominator uint64 = 10_000
	// DefaultFeeDenominator is used until an admin calls set_fee_denominator.
	DefaultFeeDenominator uint64 = 10_000
	// NativeDecimals is the precision of the native coin.
	NativeDecimals uint8 = 9
	// maxDecimals keeps 10^decimals inside 256 bits.
	maxDecimals uint8 = 77
)

// -----------------------------------------------------------------------------
// Validation Limits
// -----------------------------------------------------------------------------

const (
	MaxAuctionIDLength = 64
	MaxInfoLength      = 1000
	MaxProofLength     = 64
	MaxSchedules       = 64
	MaxPriceTable      = 32
	MaxBatchEntries    = 500
)

// -----------------------------------------------------------------------------
// Storage Keys
// -----------------------------------------------------------------------------

// ContractConfigKey holds the pipe-delimited ContractConfig.
const ContractConfigKey = "cfg"

const (
	// kAdmin flags contract admins.
	kAdmin byte = 0x02
	// kAuction stores encoded Auction records.
	kAuction byte = 0x10
	// kOrder holds a bidder's cumulative order in pricing units.
	kOrder byte = 0x11
	// kTier holds a bidder's cap.
	kTier byte = 0x12
	// kClaim marks a (bidder, schedule time) slot as claimed.
	kClaim byte = 0x13
	// kDeposit tracks native coin a bidder paid, for refunds.
	kDeposit byte = 0x14
	// kAuctionPurse maps an auction to its escrow purse.
	kAuctionPurse byte = 0x15
)
