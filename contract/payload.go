package contract

import (
	"encoding/hex"
	"strings"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// -----------------------------------------------------------------------------
// Request types, one per entry point
// -----------------------------------------------------------------------------

type InitArgs struct {
	TreasuryWallet    sdk.Address
	FeeDenominator    uint64
	DefaultMerkleRoot string
	PublicCreation    bool
}

type CreateAuctionArgs struct {
	ID            string
	Info          string
	StartTime     int64
	EndTime       int64
	OpenTime      int64
	AuctionToken  sdk.Address
	TokenPrice    *uint256.Int
	TokenCapacity *uint256.Int
	Bidding       BiddingToken
	FeeNumerator  uint64
	Schedules     Schedules
	MerkleRoot    *string
	Tiers         map[sdk.Address]*uint256.Int
}

type CreateOrderArgs struct {
	AuctionID string
	Proof     []ProofStep
	Amount    *uint256.Int
	// PayToken is required for ERC20 auctions and forbidden for native ones.
	PayToken *sdk.Address
	// Tier is the cap the bidder was whitelisted with, if the root binds one.
	Tier *uint256.Int
}

type AuctionArgs struct {
	AuctionID string
}

type ClaimArgs struct {
	AuctionID    string
	ScheduleTime int64
}

type SetMerkleRootArgs struct {
	AuctionID string
	Root      string
}

type SetDefaultMerkleRootArgs struct {
	Root string
}

type SetTiersArgs struct {
	AuctionID string
	Tiers     map[sdk.Address]*uint256.Int
}

type SetTierArgs struct {
	AuctionID string
	Bidder    sdk.Address
	Tier      *uint256.Int
}

type SetCSPRPriceArgs struct {
	AuctionID string
	Price     *uint256.Int
}

type SetTreasuryWalletArgs struct {
	Wallet sdk.Address
}

type SetFeeDenominatorArgs struct {
	Value uint64
}

type AdminArgs struct {
	Admin sdk.Address
}

type ChangeTimeSchedulesArgs struct {
	AuctionID string
	StartTime int64
	EndTime   int64
	OpenTime  int64
	Schedules Schedules
}

type AddOrdersArgs struct {
	AuctionID string
	Orders    map[sdk.Address]*uint256.Int
}

type BidderQueryArgs struct {
	AuctionID    string
	Bidder       sdk.Address
	ScheduleTime int64
}

// -----------------------------------------------------------------------------
// Field validation
// -----------------------------------------------------------------------------

func validateAuctionID(id string) error {
	if id == "" {
		return ErrInvalidArgument.With("auction id required")
	}
	if len(id) > MaxAuctionIDLength {
		return ErrInvalidArgument.With("auction id longer than %d", MaxAuctionIDLength)
	}
	if strings.ContainsAny(id, "|\x00") {
		return ErrInvalidArgument.With("auction id contains reserved characters")
	}
	return nil
}

func validateAddress(field string, a sdk.Address) error {
	if !a.IsValid() {
		return ErrInvalidArgument.With("invalid %s address %q", field, a)
	}
	return nil
}

// validateRoot accepts a 32-byte hex hash with optional 0x prefix.
func validateRoot(root string) error {
	b, err := hex.DecodeString(strings.TrimPrefix(root, "0x"))
	if err != nil || len(b) != 32 {
		return ErrInvalidArgument.With("merkle root must be 32 hex bytes")
	}
	return nil
}

func normalizeRoot(root string) string {
	return strings.ToLower(strings.TrimPrefix(root, "0x"))
}

func validatePositive(field string, v *uint256.Int) error {
	if v == nil || v.IsZero() {
		return ErrInvalidArgument.With("%s must be positive", field)
	}
	return nil
}

// validateWindow checks start < end and the schedule table.
func validateWindow(start, end int64, s Schedules) error {
	if start >= end {
		return ErrInvalidArgument.With("start_time must be before end_time")
	}
	if len(s) > MaxSchedules {
		return ErrInvalidArgument.With("more than %d schedules", MaxSchedules)
	}
	var sum uint64
	for t, pct := range s {
		if pct == 0 || pct > PercentDenominator {
			return ErrInvalidArgument.With("schedule %d percent out of range", t)
		}
		sum += pct
	}
	if sum > PercentDenominator {
		return ErrInvalidArgument.With("schedule percents sum to %d, above %d", sum, PercentDenominator)
	}
	return nil
}

func validateAmountMap(field string, m map[sdk.Address]*uint256.Int, allowZero bool) error {
	if len(m) == 0 {
		return ErrInvalidArgument.With("%s must not be empty", field)
	}
	if len(m) > MaxBatchEntries {
		return ErrInvalidArgument.With("%s larger than %d", field, MaxBatchEntries)
	}
	for addr, v := range m {
		if err := validateAddress(field, addr); err != nil {
			return err
		}
		if v == nil || (!allowZero && v.IsZero()) {
			return ErrInvalidArgument.With("%s amount for %s must be positive", field, addr)
		}
	}
	return nil
}

func (b *BiddingToken) validate() error {
	switch b.Kind {
	case BiddingNative:
		if b.NativePrice != nil && b.NativePrice.IsZero() {
			return ErrInvalidCSPRPrice.With("native price must be positive")
		}
		if len(b.PriceTable) > 0 {
			return ErrInvalidArgument.With("native bidding takes no price table")
		}
	case BiddingERC20s:
		if len(b.PriceTable) == 0 {
			return ErrInvalidPayToken.With("price table must not be empty")
		}
		if len(b.PriceTable) > MaxPriceTable {
			return ErrInvalidArgument.With("price table larger than %d", MaxPriceTable)
		}
		for tok, price := range b.PriceTable {
			if err := validateAddress("pay token", tok); err != nil {
				return err
			}
			if err := validatePositive("pay token price", price); err != nil {
				return err
			}
		}
	default:
		return ErrInvalidArgument.With("unknown bidding kind")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Validate, called before any state is touched
// -----------------------------------------------------------------------------

func (a *InitArgs) Validate() error {
	if err := validateAddress("treasury", a.TreasuryWallet); err != nil {
		return err
	}
	if a.DefaultMerkleRoot != "" {
		return validateRoot(a.DefaultMerkleRoot)
	}
	return nil
}

func (a *CreateAuctionArgs) Validate() error {
	if err := validateAuctionID(a.ID); err != nil {
		return err
	}
	if len(a.Info) > MaxInfoLength {
		return ErrInvalidArgument.With("info longer than %d", MaxInfoLength)
	}
	if err := validateWindow(a.StartTime, a.EndTime, a.Schedules); err != nil {
		return err
	}
	if err := validateAddress("auction token", a.AuctionToken); err != nil {
		return err
	}
	if err := validatePositive("token_price", a.TokenPrice); err != nil {
		return err
	}
	if err := validatePositive("token_capacity", a.TokenCapacity); err != nil {
		return err
	}
	if err := a.Bidding.validate(); err != nil {
		return err
	}
	if a.MerkleRoot != nil {
		if err := validateRoot(*a.MerkleRoot); err != nil {
			return err
		}
	}
	if len(a.Tiers) > 0 {
		return validateAmountMap("tiers", a.Tiers, true)
	}
	return nil
}

func (a *CreateOrderArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	if len(a.Proof) > MaxProofLength {
		return ErrInvalidArgument.With("proof longer than %d", MaxProofLength)
	}
	if err := validatePositive("amount", a.Amount); err != nil {
		return err
	}
	if a.PayToken != nil {
		if err := validateAddress("pay token", *a.PayToken); err != nil {
			return err
		}
	}
	if a.Tier != nil && a.Tier.IsZero() {
		return ErrInvalidArgument.With("tier must be positive")
	}
	return nil
}

func (a *AuctionArgs) Validate() error {
	return validateAuctionID(a.AuctionID)
}

func (a *ClaimArgs) Validate() error {
	return validateAuctionID(a.AuctionID)
}

func (a *SetMerkleRootArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	return validateRoot(a.Root)
}

func (a *SetDefaultMerkleRootArgs) Validate() error {
	return validateRoot(a.Root)
}

func (a *SetTiersArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	return validateAmountMap("tiers", a.Tiers, true)
}

func (a *SetTierArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	if err := validateAddress("bidder", a.Bidder); err != nil {
		return err
	}
	if a.Tier == nil {
		return ErrInvalidArgument.With("tier required")
	}
	return nil
}

func (a *SetCSPRPriceArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	if a.Price == nil || a.Price.IsZero() {
		return ErrInvalidCSPRPrice.With("price must be positive")
	}
	return nil
}

func (a *SetTreasuryWalletArgs) Validate() error {
	return validateAddress("treasury", a.Wallet)
}

func (a *SetFeeDenominatorArgs) Validate() error {
	if a.Value == 0 {
		return ErrInvalidArgument.With("fee denominator must be positive")
	}
	return nil
}

func (a *AdminArgs) Validate() error {
	return validateAddress("admin", a.Admin)
}

func (a *ChangeTimeSchedulesArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	return validateWindow(a.StartTime, a.EndTime, a.Schedules)
}

func (a *AddOrdersArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	return validateAmountMap("orders", a.Orders, false)
}

func (a *BidderQueryArgs) Validate() error {
	if err := validateAuctionID(a.AuctionID); err != nil {
		return err
	}
	return validateAddress("bidder", a.Bidder)
}
