package contract

import "github.com/holiman/uint256"

// ClaimAmount converts an order total into auction tokens for one schedule
// slot: order * percent / PercentDenominator * 10^decimals / price.
func ClaimAmount(order *uint256.Int, percent uint64, decimals uint8, price *uint256.Int) (*uint256.Int, error) {
	inPricing, err := mulDiv(order, u64(percent), u64(PercentDenominator))
	if err != nil {
		return nil, err
	}
	scale, err := pow10(decimals)
	if err != nil {
		return nil, err
	}
	return mulDiv(inPricing, scale, price)
}

// Claim releases the caller's share for one elapsed schedule slot. Each
// (bidder, schedule time) pays out at most once.
func (c *Contract) Claim(args *ClaimArgs) error {
	a, err := c.loadAuction(args.AuctionID)
	if err != nil {
		return err
	}
	bidder := c.sender()
	if args.ScheduleTime >= c.now() {
		return ErrInvalidTime.With("schedule %d not reached", args.ScheduleTime)
	}
	order, err := c.loadOrder(a.ID, bidder)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrNotExistOrder.With("%s in %s", bidder, a.ID)
	}
	if c.isClaimed(a.ID, bidder, args.ScheduleTime) {
		return ErrAlreadyClaimed.With("%s at %d", bidder, args.ScheduleTime)
	}
	percent, ok := a.Schedules[args.ScheduleTime]
	if !ok {
		return ErrInvalidSchedule.With("%d", args.ScheduleTime)
	}

	decimals, err := c.tokens.Decimals(a.AuctionToken)
	if err != nil {
		return tokenErr("auction token decimals", err)
	}
	amount, err := ClaimAmount(order, percent, decimals, a.TokenPrice)
	if err != nil {
		return err
	}

	unlocked, err := checkedAdd(zeroIfNil(a.UnlockedAmount), amount)
	if err != nil {
		return err
	}
	// the contract balance is shared between auctions of the same token
	if unlocked.Gt(a.TokenCapacity) {
		return ErrInsufficientBalance.With("%s would unlock %s of %s", a.ID, unlocked.Dec(), a.TokenCapacity.Dec())
	}
	escrow, err := c.tokens.BalanceOf(a.AuctionToken, c.self())
	if err != nil {
		return tokenErr("escrow balance", err)
	}
	if escrow.Lt(amount) {
		return ErrInsufficientBalance.With("escrow holds %s, claim needs %s", escrow.Dec(), amount.Dec())
	}
	if !amount.IsZero() {
		if err := c.tokens.Transfer(a.AuctionToken, c.self(), bidder, amount); err != nil {
			return tokenErr("claim transfer", err)
		}
	}

	c.markClaimed(a.ID, bidder, args.ScheduleTime)
	a.UnlockedAmount = unlocked
	c.saveAuction(a)

	c.emitClaimEvent(a.ID, bidder, args.ScheduleTime, amount)
	return nil
}
