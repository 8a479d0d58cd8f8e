package contract

// Read-only entry points. They run through the same host path as writes but
// stage nothing.

func (c *Contract) GetAuction(args *AuctionArgs) ([]byte, error) {
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return nil, err
	}
	return EncodeAuctionJSON(a, c.now()), nil
}

func (c *Contract) GetConfig() ([]byte, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return EncodeConfigJSON(cfg), nil
}

// GetOrder reports zero for bidders without an order.
func (c *Contract) GetOrder(args *BidderQueryArgs) ([]byte, error) {
	if _, err := c.loadAuction(args.AuctionID); err != nil {
		return nil, err
	}
	v, err := c.orderOrZero(args.AuctionID, args.Bidder)
	if err != nil {
		return nil, err
	}
	return encodeAmountResult("amount", v), nil
}

// GetTier fails with TierNotSet when no cap is stored.
func (c *Contract) GetTier(args *BidderQueryArgs) ([]byte, error) {
	if _, err := c.loadAuction(args.AuctionID); err != nil {
		return nil, err
	}
	v, err := c.loadTier(args.AuctionID, args.Bidder)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrTierNotSet.With("%s has no tier in %s", args.Bidder, args.AuctionID)
	}
	return encodeAmountResult("tier", v), nil
}

func (c *Contract) GetClaim(args *BidderQueryArgs) ([]byte, error) {
	if _, err := c.loadAuction(args.AuctionID); err != nil {
		return nil, err
	}
	return encodeBoolResult("claimed", c.isClaimed(args.AuctionID, args.Bidder, args.ScheduleTime)), nil
}
