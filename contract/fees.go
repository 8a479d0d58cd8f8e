package contract

import (
	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// SplitFee divides capacity into the platform fee and the escrowed rest.
// fee + escrowed == capacity for every numerator in [0, denominator].
func SplitFee(capacity *uint256.Int, numerator, denominator uint64) (fee, escrowed *uint256.Int, err error) {
	if denominator == 0 {
		return nil, nil, ErrInvalidArgument.With("fee denominator is zero")
	}
	if numerator > denominator {
		return nil, nil, ErrInvalidArgument.With("fee numerator %d above denominator %d", numerator, denominator)
	}
	fee, err = mulDiv(capacity, u64(numerator), u64(denominator))
	if err != nil {
		return nil, nil, err
	}
	escrowed, err = checkedSub(capacity, fee)
	if err != nil {
		return nil, nil, err
	}
	return fee, escrowed, nil
}

// collectCreationFee pulls capacity from the creator: the fee to the treasury
// and the rest into the contract's escrow balance.
func (c *Contract) collectCreationFee(cfg *ContractConfig, token, creator sdk.Address, fee, escrowed *uint256.Int) error {
	if !fee.IsZero() {
		if err := c.tokens.TransferFrom(token, c.self(), creator, cfg.Treasury, fee); err != nil {
			return tokenErr("fee to treasury", err)
		}
	}
	if !escrowed.IsZero() {
		if err := c.tokens.TransferFrom(token, c.self(), creator, c.self(), escrowed); err != nil {
			return tokenErr("escrow capacity", err)
		}
	}
	return nil
}
