package contract

import (
	"strconv"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// -----------------------------------------------------------------------------
// Per-auction settings
// -----------------------------------------------------------------------------

func (c *Contract) SetMerkleRoot(args *SetMerkleRootArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	if err := c.requireCreatorOrAdmin(cfg, a); err != nil {
		return err
	}
	root := normalizeRoot(args.Root)
	a.MerkleRoot = &root
	c.saveAuction(a)
	c.emitAuctionUpdatedEvent(a.ID, c.sender(), "merkle_root", root)
	return nil
}

// SetTiers writes every listed cap; last write wins.
func (c *Contract) SetTiers(args *SetTiersArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	if err := c.requireCreatorOrAdmin(cfg, a); err != nil {
		return err
	}
	for bidder, limit := range args.Tiers {
		if err := c.writeTier(a.ID, bidder, limit); err != nil {
			return err
		}
	}
	c.emitAuctionUpdatedEvent(a.ID, c.sender(), "tiers", strconv.Itoa(len(args.Tiers)))
	return nil
}

func (c *Contract) SetTier(args *SetTierArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	if err := c.requireCreatorOrAdmin(cfg, a); err != nil {
		return err
	}
	if err := c.writeTier(a.ID, args.Bidder, args.Tier); err != nil {
		return err
	}
	c.emitAuctionUpdatedEvent(a.ID, c.sender(), "tier:"+args.Bidder.String(), args.Tier.Dec())
	return nil
}

// writeTier refuses a cap below what the bidder already committed.
func (c *Contract) writeTier(auctionID string, bidder sdk.Address, limit *uint256.Int) error {
	order, err := c.loadOrder(auctionID, bidder)
	if err != nil {
		return err
	}
	if order != nil && order.Gt(limit) {
		return ErrOutOfTier.With("%s already ordered %s, above %s", bidder, order.Dec(), limit.Dec())
	}
	c.saveTier(auctionID, bidder, limit)
	return nil
}

// SetCSPRPrice sets the native coin price. Creator only, before the sale.
func (c *Contract) SetCSPRPrice(args *SetCSPRPriceArgs) error {
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	if err := c.requireCreator(a); err != nil {
		return err
	}
	if err := c.requireBeforeStart(a); err != nil {
		return err
	}
	if a.Bidding.Kind != BiddingNative {
		return ErrInvalidPayToken.With("%s is not a native auction", a.ID)
	}
	a.Bidding.NativePrice = args.Price.Clone()
	c.saveAuction(a)
	c.emitAuctionUpdatedEvent(a.ID, c.sender(), "cspr_price", args.Price.Dec())
	return nil
}

// ChangeTimeSchedules moves the sale window and vesting table before start.
func (c *Contract) ChangeTimeSchedules(args *ChangeTimeSchedulesArgs) error {
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	if err := c.requireCreator(a); err != nil {
		return err
	}
	if err := c.requireBeforeStart(a); err != nil {
		return err
	}
	a.StartTime = args.StartTime
	a.EndTime = args.EndTime
	a.OpenTime = args.OpenTime
	a.Schedules = args.Schedules
	if a.Schedules == nil {
		a.Schedules = Schedules{}
	}
	c.saveAuction(a)
	c.emitAuctionUpdatedEvent(a.ID, c.sender(), "window",
		strconv.FormatInt(a.StartTime, 10)+"-"+strconv.FormatInt(a.EndTime, 10))
	return nil
}

// -----------------------------------------------------------------------------
// Contract-wide settings
// -----------------------------------------------------------------------------

func (c *Contract) SetDefaultMerkleRoot(args *SetDefaultMerkleRootArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(cfg); err != nil {
		return err
	}
	old := cfg.DefaultMerkleRoot
	cfg.DefaultMerkleRoot = normalizeRoot(args.Root)
	c.saveConfig(cfg)
	c.emitConfigUpdatedEvent(c.sender(), "default_merkle_root", old, cfg.DefaultMerkleRoot)
	return nil
}

func (c *Contract) SetTreasuryWallet(args *SetTreasuryWalletArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(cfg); err != nil {
		return err
	}
	old := cfg.Treasury
	cfg.Treasury = args.Wallet
	c.saveConfig(cfg)
	c.emitConfigUpdatedEvent(c.sender(), "treasury_wallet", old.String(), cfg.Treasury.String())
	return nil
}

// SetFeeDenominator applies to auctions created afterwards; stored
// capacities are already post-fee.
func (c *Contract) SetFeeDenominator(args *SetFeeDenominatorArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(cfg); err != nil {
		return err
	}
	old := cfg.FeeDenominator
	cfg.FeeDenominator = args.Value
	c.saveConfig(cfg)
	c.emitConfigUpdatedEvent(c.sender(), "fee_denominator",
		strconv.FormatUint(old, 10), strconv.FormatUint(cfg.FeeDenominator, 10))
	return nil
}

func (c *Contract) AddAdmin(args *AdminArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(cfg); err != nil {
		return err
	}
	c.setAdmin(args.Admin)
	c.emitAdminEvent(c.sender(), args.Admin, true)
	return nil
}

// RemoveAdmin never removes the owner.
func (c *Contract) RemoveAdmin(args *AdminArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := c.requireAdmin(cfg); err != nil {
		return err
	}
	if args.Admin == cfg.Owner {
		return ErrPermissionDenied.With("owner cannot be removed")
	}
	if !c.isAdmin(cfg, args.Admin) {
		return ErrInvalidArgument.With("%s is not an admin", args.Admin)
	}
	c.deleteAdmin(args.Admin)
	c.emitAdminEvent(c.sender(), args.Admin, false)
	return nil
}
