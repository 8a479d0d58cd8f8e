package contract

import (
	"fmt"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// -----------------------------------------------------------------------------
// AuctionLedger
// -----------------------------------------------------------------------------

func (c *Contract) auctionExists(id string) bool {
	ptr := c.state.Get(auctionKey(id))
	return ptr != nil && *ptr != ""
}

// loadAuction fails with ErrNotExistAuction for unknown ids.
func (c *Contract) loadAuction(id string) (*Auction, error) {
	ptr := c.state.Get(auctionKey(id))
	if ptr == nil || *ptr == "" {
		return nil, ErrNotExistAuction.With("%s", id)
	}
	a, err := DecodeAuction([]byte(*ptr))
	if err != nil {
		return nil, fmt.Errorf("decode auction %s: %w", id, err)
	}
	return a, nil
}

// saveAuction replaces the whole record.
func (c *Contract) saveAuction(a *Auction) {
	c.state.Set(auctionKey(a.ID), string(EncodeAuction(a)))
}

// createAuction stores a fresh record exactly once and opens the escrow
// purse for native auctions.
func (c *Contract) createAuction(a *Auction) error {
	if c.auctionExists(a.ID) {
		return ErrAlreadyExistAuction.With("%s", a.ID)
	}
	if a.Bidding.Kind == BiddingNative {
		purse, err := c.purses.CreatePurse(c.self(), "auction-"+a.ID)
		if err != nil {
			return fmt.Errorf("create escrow purse: %w", err)
		}
		c.state.Set(auctionPurseKey(a.ID), purse.String())
	}
	c.saveAuction(a)
	return nil
}

func (c *Contract) auctionPurse(id string) (sdk.Purse, error) {
	ptr := c.state.Get(auctionPurseKey(id))
	if ptr == nil || *ptr == "" {
		return "", ErrNotExistAuction.With("no escrow purse for %s", id)
	}
	return sdk.Purse(*ptr), nil
}

// -----------------------------------------------------------------------------
// Amount slots (orders, tiers, deposits)
// -----------------------------------------------------------------------------

// loadAmountSlot returns nil when the key is absent.
func (c *Contract) loadAmountSlot(key string) (*uint256.Int, error) {
	ptr := c.state.Get(key)
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	v, err := uint256.FromDecimal(*ptr)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount slot: %w", err)
	}
	return v, nil
}

func (c *Contract) storeAmountSlot(key string, v *uint256.Int) {
	c.state.Set(key, v.Dec())
}

func (c *Contract) loadOrder(auctionID string, bidder sdk.Address) (*uint256.Int, error) {
	return c.loadAmountSlot(orderKey(auctionID, bidder))
}

func (c *Contract) saveOrder(auctionID string, bidder sdk.Address, amount *uint256.Int) {
	c.storeAmountSlot(orderKey(auctionID, bidder), amount)
}

func (c *Contract) deleteOrder(auctionID string, bidder sdk.Address) {
	c.state.Delete(orderKey(auctionID, bidder))
}

func (c *Contract) loadTier(auctionID string, bidder sdk.Address) (*uint256.Int, error) {
	return c.loadAmountSlot(tierKey(auctionID, bidder))
}

func (c *Contract) saveTier(auctionID string, bidder sdk.Address, limit *uint256.Int) {
	c.storeAmountSlot(tierKey(auctionID, bidder), limit)
}

func (c *Contract) loadDeposit(auctionID string, bidder sdk.Address) (*uint256.Int, error) {
	return c.loadAmountSlot(depositKey(auctionID, bidder))
}

func (c *Contract) saveDeposit(auctionID string, bidder sdk.Address, amount *uint256.Int) {
	c.storeAmountSlot(depositKey(auctionID, bidder), amount)
}

func (c *Contract) deleteDeposit(auctionID string, bidder sdk.Address) {
	c.state.Delete(depositKey(auctionID, bidder))
}

// -----------------------------------------------------------------------------
// Claims
// -----------------------------------------------------------------------------

func (c *Contract) isClaimed(auctionID string, bidder sdk.Address, scheduleTime int64) bool {
	ptr := c.state.Get(claimKey(auctionID, bidder, scheduleTime))
	return ptr != nil && *ptr != ""
}

// markClaimed is never undone.
func (c *Contract) markClaimed(auctionID string, bidder sdk.Address, scheduleTime int64) {
	c.state.Set(claimKey(auctionID, bidder, scheduleTime), "1")
}
