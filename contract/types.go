package contract

import (
	"sort"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// BiddingKind says how bidders pay.
type BiddingKind uint8

const (
	BiddingNative BiddingKind = 0
	BiddingERC20s BiddingKind = 1
)

// String prints the bidding kind for events and queries.
func (k BiddingKind) String() string {
	switch k {
	case BiddingNative:
		return "native"
	case BiddingERC20s:
		return "erc20s"
	default:
		return "unknown"
	}
}

// BiddingToken is the payment side of an auction. Native auctions carry a
// price that may be set later; ERC20 auctions carry a per-token price table.
// Prices are pricing units per whole payment token.
type BiddingToken struct {
	Kind        BiddingKind
	NativePrice *uint256.Int
	PriceTable  map[sdk.Address]*uint256.Int
}

// NativeBidding builds the native variant; price may be nil.
func NativeBidding(price *uint256.Int) BiddingToken {
	return BiddingToken{Kind: BiddingNative, NativePrice: price}
}

// ERC20Bidding builds the token-table variant.
func ERC20Bidding(table map[sdk.Address]*uint256.Int) BiddingToken {
	return BiddingToken{Kind: BiddingERC20s, PriceTable: table}
}

// sortedTokens returns price table keys in stable order.
func (b *BiddingToken) sortedTokens() []sdk.Address {
	out := make([]sdk.Address, 0, len(b.PriceTable))
	for k := range b.PriceTable {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Schedules maps unlock time (unix seconds) to the percent, in
// PercentDenominator units, released at that time.
type Schedules map[int64]uint64

// sortedTimes returns the unlock times in ascending order.
func (s Schedules) sortedTimes() []int64 {
	out := make([]int64, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Status is derived from the call time, never stored.
type Status uint8

const (
	StatusCreated Status = 0
	StatusOpen    Status = 1
	StatusClosed  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Auction is one sale. Orders, tiers, claims and deposits live in their own
// keys under the auction id.
type Auction struct {
	ID           string
	Info         string
	Creator      sdk.Address
	CreatedTime  int64
	StartTime    int64
	EndTime      int64
	OpenTime     int64
	AuctionToken sdk.Address
	// TokenPrice is pricing units per whole auction token.
	TokenPrice *uint256.Int
	// TokenCapacity is what is left for sale after the creation fee.
	TokenCapacity *uint256.Int
	Bidding       BiddingToken
	FeeNumerator  uint64
	Schedules     Schedules
	// MerkleRoot overrides the contract default root when set.
	MerkleRoot        *string
	SoldAmount        *uint256.Int
	TotalParticipants uint64
	UnlockedAmount    *uint256.Int
}

// StatusAt returns the lifecycle stage for the given call time.
func (a *Auction) StatusAt(now int64) Status {
	switch {
	case now < a.StartTime:
		return StatusCreated
	case now < a.EndTime:
		return StatusOpen
	default:
		return StatusClosed
	}
}

// ContractConfig is the process-wide configuration written by init.
type ContractConfig struct {
	Owner                 sdk.Address
	Treasury              sdk.Address
	FeeDenominator        uint64
	AuctionCreationPublic bool
	DefaultMerkleRoot     string
}
