package sdk

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnknownToken          = errors.New("unknown token")
	ErrUnknownPurse          = errors.New("unknown purse")
	ErrPurseExists           = errors.New("purse already exists")
	ErrAmountOverflow        = errors.New("amount overflow")
)

// Token is the fungible-token contract surface the launchpad talks to.
type Token interface {
	Decimals(token Address) (uint8, error)
	BalanceOf(token, owner Address) (*uint256.Int, error)
	// Transfer moves amount from caller to recipient.
	Transfer(token, caller, recipient Address, amount *uint256.Int) error
	// TransferFrom moves amount from owner to recipient, spending the
	// allowance owner granted to spender.
	TransferFrom(token, spender, owner, recipient Address, amount *uint256.Int) error
}

// Purses is the native-coin primitive: value lives in purses and accounts
// are paid into their main purse.
type Purses interface {
	CreatePurse(owner Address, name string) (Purse, error)
	PurseOwner(p Purse) (Address, error)
	PurseBalance(p Purse) (*uint256.Int, error)
	TransferFromPurseToAccount(src Purse, to Address, amount *uint256.Int) error
	TransferFromPurseToPurse(src, dst Purse, amount *uint256.Int) error
	MainPurse(owner Address) Purse
}
