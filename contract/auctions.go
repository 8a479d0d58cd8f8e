package contract

import (
	"strconv"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// -----------------------------------------------------------------------------
// Init
// -----------------------------------------------------------------------------

// Init runs once. The caller becomes owner and first admin.
func (c *Contract) Init(args *InitArgs) error {
	if c.isInitialized() {
		return ErrAlreadyInitialized
	}
	den := args.FeeDenominator
	if den == 0 {
		den = DefaultFeeDenominator
	}
	cfg := &ContractConfig{
		Owner:                 c.sender(),
		Treasury:              args.TreasuryWallet,
		FeeDenominator:        den,
		AuctionCreationPublic: args.PublicCreation,
	}
	if args.DefaultMerkleRoot != "" {
		cfg.DefaultMerkleRoot = normalizeRoot(args.DefaultMerkleRoot)
	}
	c.saveConfig(cfg)
	c.setAdmin(cfg.Owner)
	c.emitInitEvent(cfg.Owner, cfg.Treasury)
	return nil
}

// -----------------------------------------------------------------------------
// Create Auction
// -----------------------------------------------------------------------------

// CreateAuction takes the token capacity from the caller, routes the fee to
// the treasury and stores the post-fee capacity as what is for sale.
func (c *Contract) CreateAuction(args *CreateAuctionArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	creator := c.sender()
	if !cfg.AuctionCreationPublic {
		if err := c.requireAdmin(cfg); err != nil {
			return err
		}
	}
	if c.auctionExists(args.ID) {
		return ErrAlreadyExistAuction.With("%s", args.ID)
	}

	// claims scale by the auction token's decimals, so it must be known now
	if _, err := c.tokenScale(args.AuctionToken); err != nil {
		return err
	}
	if args.Bidding.Kind == BiddingERC20s {
		for _, tok := range args.Bidding.sortedTokens() {
			if _, err := c.tokenScale(tok); err != nil {
				return ErrInvalidPayToken.With("%s: %v", tok, err)
			}
		}
	}

	fee, escrowed, err := SplitFee(args.TokenCapacity, args.FeeNumerator, cfg.FeeDenominator)
	if err != nil {
		return err
	}
	if err := c.collectCreationFee(cfg, args.AuctionToken, creator, fee, escrowed); err != nil {
		return err
	}

	a := &Auction{
		ID:             args.ID,
		Info:           args.Info,
		Creator:        creator,
		CreatedTime:    c.now(),
		StartTime:      args.StartTime,
		EndTime:        args.EndTime,
		OpenTime:       args.OpenTime,
		AuctionToken:   args.AuctionToken,
		TokenPrice:     args.TokenPrice.Clone(),
		TokenCapacity:  escrowed,
		Bidding:        args.Bidding,
		FeeNumerator:   args.FeeNumerator,
		Schedules:      args.Schedules,
		SoldAmount:     new(uint256.Int),
		UnlockedAmount: new(uint256.Int),
	}
	if a.Schedules == nil {
		a.Schedules = Schedules{}
	}
	if args.MerkleRoot != nil {
		root := normalizeRoot(*args.MerkleRoot)
		a.MerkleRoot = &root
	}
	if err := c.createAuction(a); err != nil {
		return err
	}
	for bidder, limit := range args.Tiers {
		c.saveTier(a.ID, bidder, limit)
	}

	c.emitAuctionCreatedEvent(a.ID, creator, fee, escrowed)
	return nil
}

// -----------------------------------------------------------------------------
// Auction access helpers
// -----------------------------------------------------------------------------

// requireCreatorOrAdmin gates per-auction edits.
func (c *Contract) requireCreatorOrAdmin(cfg *ContractConfig, a *Auction) error {
	if c.sender() == a.Creator || c.isAdmin(cfg, c.sender()) {
		return nil
	}
	return ErrPermissionDenied.With("creator or admin only for %s", a.ID)
}

func (c *Contract) requireCreator(a *Auction) error {
	if c.sender() != a.Creator {
		return ErrPermissionDenied.With("creator only for %s", a.ID)
	}
	return nil
}

// requireBeforeStart rejects edits once the sale window opened.
func (c *Contract) requireBeforeStart(a *Auction) error {
	if c.now() >= a.StartTime {
		return ErrInvalidTime.With("%s started at %s", a.ID, strconv.FormatInt(a.StartTime, 10))
	}
	return nil
}

// tierCap returns the bidder's cap: the stored tier first, then the tier the
// proof was bound to.
func (c *Contract) tierCap(auctionID string, bidder sdk.Address, advertised *uint256.Int) (*uint256.Int, error) {
	stored, err := c.loadTier(auctionID, bidder)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}
	if advertised != nil {
		return advertised, nil
	}
	return nil, ErrTierNotSet.With("%s has no tier in %s", bidder, auctionID)
}
