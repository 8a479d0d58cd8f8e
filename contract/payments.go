package contract

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// tokenErr maps collaborator failures onto contract error codes so the
// receipt carries InsufficientBalance and friends instead of a bare string.
func tokenErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sdk.ErrInsufficientBalance):
		return ErrInsufficientBalance.With("%s: %v", op, err)
	case errors.Is(err, sdk.ErrInsufficientAllowance):
		return ErrInsufficientAllowance.With("%s: %v", op, err)
	case errors.Is(err, sdk.ErrAmountOverflow):
		return ErrOverflow.With("%s: %v", op, err)
	case errors.Is(err, sdk.ErrUnknownToken), errors.Is(err, sdk.ErrUnknownPurse):
		return ErrInvalidArgument.With("%s: %v", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// tokenScale returns 10^decimals of token.
func (c *Contract) tokenScale(token sdk.Address) (*uint256.Int, error) {
	dec, err := c.tokens.Decimals(token)
	if err != nil {
		return nil, tokenErr("decimals", err)
	}
	return pow10(dec)
}

// settlePayment moves the bidder's payment to the treasury and returns the
// amount in pricing units.
func (c *Contract) settlePayment(cfg *ContractConfig, a *Auction, bidder sdk.Address, args *CreateOrderArgs) (*uint256.Int, error) {
	switch a.Bidding.Kind {
	case BiddingNative:
		return c.settleNative(cfg, a, bidder, args)
	case BiddingERC20s:
		return c.settleERC20(cfg, a, bidder, args)
	default:
		return nil, ErrInvalidPayToken.With("unknown bidding kind")
	}
}

func (c *Contract) settleNative(cfg *ContractConfig, a *Auction, bidder sdk.Address, args *CreateOrderArgs) (*uint256.Int, error) {
	if args.PayToken != nil {
		return nil, ErrInvalidPayToken.With("native auction takes no pay token")
	}
	price := a.Bidding.NativePrice
	if price == nil || price.IsZero() {
		return nil, ErrInvalidCSPRPrice.With("native price not set for %s", a.ID)
	}
	deposit := c.env.DepositPurse
	if deposit == nil {
		return nil, ErrInsufficientBalance.With("no deposit purse attached")
	}
	owner, err := c.purses.PurseOwner(*deposit)
	if err != nil {
		return nil, tokenErr("deposit owner", err)
	}
	if owner != bidder {
		return nil, ErrPermissionDenied.With("deposit purse %s is not owned by %s", *deposit, bidder)
	}
	balance, err := c.purses.PurseBalance(*deposit)
	if err != nil {
		return nil, tokenErr("deposit balance", err)
	}
	if balance.Lt(args.Amount) {
		return nil, ErrInsufficientBalance.With("deposit holds %s, order needs %s", balance.Dec(), args.Amount.Dec())
	}
	if err := c.purses.TransferFromPurseToAccount(*deposit, cfg.Treasury, args.Amount); err != nil {
		return nil, tokenErr("forward deposit", err)
	}

	paid, err := c.loadDeposit(a.ID, bidder)
	if err != nil {
		return nil, err
	}
	paidTotal, err := checkedAdd(zeroIfNil(paid), args.Amount)
	if err != nil {
		return nil, err
	}
	c.saveDeposit(a.ID, bidder, paidTotal)

	scale, err := pow10(NativeDecimals)
	if err != nil {
		return nil, err
	}
	return mulDiv(args.Amount, price, scale)
}

func (c *Contract) settleERC20(cfg *ContractConfig, a *Auction, bidder sdk.Address, args *CreateOrderArgs) (*uint256.Int, error) {
	if args.PayToken == nil {
		return nil, ErrInvalidPayToken.With("pay token required")
	}
	token := *args.PayToken
	price, ok := a.Bidding.PriceTable[token]
	if !ok {
		return nil, ErrInvalidPayToken.With("%s not accepted by %s", token, a.ID)
	}
	scale, err := c.tokenScale(token)
	if err != nil {
		return nil, err
	}
	if err := c.tokens.TransferFrom(token, c.self(), bidder, cfg.Treasury, args.Amount); err != nil {
		return nil, tokenErr("pay treasury", err)
	}
	return mulDiv(args.Amount, price, scale)
}
