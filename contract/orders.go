package contract

import (
	"sort"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// -----------------------------------------------------------------------------
// Create Order
// -----------------------------------------------------------------------------

// CreateOrder admits a whitelisted bidder's payment into the order book.
// Checks run in a fixed order: auction, whitelist, sale window, payment,
// tier cap.
func (c *Contract) CreateOrder(args *CreateOrderArgs) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	bidder := c.sender()

	root := cfg.DefaultMerkleRoot
	if a.MerkleRoot != nil {
		root = *a.MerkleRoot
	}
	if err := VerifyProof(root, WhitelistLeaf(bidder, args.Tier), args.Proof); err != nil {
		return err
	}

	switch a.StatusAt(c.now()) {
	case StatusCreated:
		return ErrSaleNotStarted.With("%s", a.ID)
	case StatusClosed:
		return ErrSaleEnded.With("%s", a.ID)
	}

	normalized, err := c.settlePayment(cfg, a, bidder, args)
	if err != nil {
		return err
	}
	if normalized.IsZero() {
		return ErrInvalidArgument.With("order of %s is worth nothing at current prices", args.Amount.Dec())
	}

	existing, err := c.loadOrder(a.ID, bidder)
	if err != nil {
		return err
	}
	total, err := checkedAdd(zeroIfNil(existing), normalized)
	if err != nil {
		return err
	}
	limit, err := c.tierCap(a.ID, bidder, args.Tier)
	if err != nil {
		return err
	}
	if total.Gt(limit) {
		return ErrOutOfTier.With("%s would reach %s, cap %s", bidder, total.Dec(), limit.Dec())
	}
	c.saveOrder(a.ID, bidder, total)

	if a.SoldAmount, err = checkedAdd(zeroIfNil(a.SoldAmount), normalized); err != nil {
		return err
	}
	if existing == nil {
		a.TotalParticipants++
	}
	c.saveAuction(a)

	c.emitOrderCreatedEvent(a.ID, bidder, args.Amount, total)
	return nil
}

// -----------------------------------------------------------------------------
// Cancel Order
// -----------------------------------------------------------------------------

// CancelOrder withdraws the caller's order before the sale starts. Only
// native auctions have a refund path.
func (c *Contract) CancelOrder(args *AuctionArgs) error {
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	bidder := c.sender()
	if err := c.requireBeforeStart(a); err != nil {
		return err
	}
	order, err := c.loadOrder(a.ID, bidder)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrNotExistOrder.With("%s in %s", bidder, a.ID)
	}
	if a.Bidding.Kind != BiddingNative {
		return ErrPermissionDenied.With("token orders cannot be cancelled")
	}

	refund, err := c.loadDeposit(a.ID, bidder)
	if err != nil {
		return err
	}
	refund = zeroIfNil(refund)
	if !refund.IsZero() {
		purse, err := c.auctionPurse(a.ID)
		if err != nil {
			return err
		}
		balance, err := c.purses.PurseBalance(purse)
		if err != nil {
			return tokenErr("escrow balance", err)
		}
		if balance.Lt(refund) {
			return ErrInsufficientBalance.With("escrow holds %s, refund needs %s", balance.Dec(), refund.Dec())
		}
		if err := c.purses.TransferFromPurseToAccount(purse, bidder, refund); err != nil {
			return tokenErr("refund", err)
		}
	}
	c.deleteOrder(a.ID, bidder)
	c.deleteDeposit(a.ID, bidder)

	if a.SoldAmount, err = checkedSub(zeroIfNil(a.SoldAmount), order); err != nil {
		return err
	}
	if a.TotalParticipants > 0 {
		a.TotalParticipants--
	}
	c.saveAuction(a)

	c.emitOrderCancelledEvent(a.ID, bidder, refund)
	return nil
}

// -----------------------------------------------------------------------------
// Add Orders (creator seeding)
// -----------------------------------------------------------------------------

// AddOrders lets the creator pre-seed orders before the sale. A stored tier
// still bounds each bidder.
func (c *Contract) AddOrders(args *AddOrdersArgs) error {
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

	bidders := make([]sdk.Address, 0, len(args.Orders))
	for b := range args.Orders {
		bidders = append(bidders, b)
	}
	sort.Slice(bidders, func(i, j int) bool { return bidders[i] < bidders[j] })

	sold := zeroIfNil(a.SoldAmount)
	for _, bidder := range bidders {
		amount := args.Orders[bidder]
		existing, err := c.loadOrder(a.ID, bidder)
		if err != nil {
			return err
		}
		total, err := checkedAdd(zeroIfNil(existing), amount)
		if err != nil {
			return err
		}
		limit, err := c.loadTier(a.ID, bidder)
		if err != nil {
			return err
		}
		if limit != nil && total.Gt(limit) {
			return ErrOutOfTier.With("%s would reach %s, cap %s", bidder, total.Dec(), limit.Dec())
		}
		c.saveOrder(a.ID, bidder, total)
		if sold, err = checkedAdd(sold, amount); err != nil {
			return err
		}
		if existing == nil {
			a.TotalParticipants++
		}
	}
	a.SoldAmount = sold
	c.saveAuction(a)

	c.emitOrdersAddedEvent(a.ID, c.sender(), len(bidders))
	return nil
}

// orderOrZero is the query view of an order slot.
func (c *Contract) orderOrZero(auctionID string, bidder sdk.Address) (*uint256.Int, error) {
	v, err := c.loadOrder(auctionID, bidder)
	return zeroIfNil(v), err
}
