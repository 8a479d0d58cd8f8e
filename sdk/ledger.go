package sdk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"okinoko_ido/store"
)

// Ledger key prefixes. They live above the contract's own prefixes so both
// can share one State.
const (
	kTokenDecimals  byte = 0xF0
	kTokenBalance   byte = 0xF1
	kTokenAllowance byte = 0xF2
	kPurseBalance   byte = 0xF3
	kPurseOwner     byte = 0xF4
)

// KVLedger keeps token balances, allowances and native purses in the same
// State as the contract. Transfers made during a call are staged with the
// rest of the call and roll back with it.
type KVLedger struct {
	state store.State
}

var (
	_ Token  = (*KVLedger)(nil)
	_ Purses = (*KVLedger)(nil)
)

func NewKVLedger(state store.State) *KVLedger {
	return &KVLedger{state: state}
}

func ledgerKey(prefix byte, parts ...string) string {
	n := 1
	for _, p := range parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	buf = append(buf, prefix)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, 0x00)
		}
		buf = append(buf, p...)
	}
	return string(buf)
}

func (l *KVLedger) loadAmount(key string) (*uint256.Int, error) {
	ptr := l.state.Get(key)
	if ptr == nil || *ptr == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(*ptr)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount under ledger key: %w", err)
	}
	return v, nil
}

func (l *KVLedger) storeAmount(key string, v *uint256.Int) {
	if v.IsZero() {
		l.state.Delete(key)
		return
	}
	l.state.Set(key, v.Dec())
}

func (l *KVLedger) move(fromKey, toKey string, amount *uint256.Int) error {
	from, err := l.loadAmount(fromKey)
	if err != nil {
		return err
	}
	if from.Lt(amount) {
		return ErrInsufficientBalance
	}
	if fromKey == toKey {
		return nil
	}
	to, err := l.loadAmount(toKey)
	if err != nil {
		return err
	}
	newTo, overflow := new(uint256.Int).AddOverflow(to, amount)
	if overflow {
		return ErrAmountOverflow
	}
	l.storeAmount(fromKey, new(uint256.Int).Sub(from, amount))
	l.storeAmount(toKey, newTo)
	return nil
}

// RegisterToken records decimals for a token contract.
func (l *KVLedger) RegisterToken(token Address, decimals uint8) {
	l.state.Set(ledgerKey(kTokenDecimals, token.String()), strconv.FormatUint(uint64(decimals), 10))
}

func (l *KVLedger) Decimals(token Address) (uint8, error) {
	ptr := l.state.Get(ledgerKey(kTokenDecimals, token.String()))
	if ptr == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	d, err := strconv.ParseUint(*ptr, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("corrupt decimals for %s: %w", token, err)
	}
	return uint8(d), nil
}

func (l *KVLedger) BalanceOf(token, owner Address) (*uint256.Int, error) {
	if _, err := l.Decimals(token); err != nil {
		return nil, err
	}
	return l.loadAmount(ledgerKey(kTokenBalance, token.String(), owner.String()))
}

// Mint credits amount to owner out of thin air. Test and bootstrap helper.
func (l *KVLedger) Mint(token, owner Address, amount *uint256.Int) error {
	if _, err := l.Decimals(token); err != nil {
		return err
	}
	key := ledgerKey(kTokenBalance, token.String(), owner.String())
	cur, err := l.loadAmount(key)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(cur, amount)
	if overflow {
		return ErrAmountOverflow
	}
	l.storeAmount(key, sum)
	return nil
}

func (l *KVLedger) Transfer(token, caller, recipient Address, amount *uint256.Int) error {
	if _, err := l.Decimals(token); err != nil {
		return err
	}
	return l.move(
		ledgerKey(kTokenBalance, token.String(), caller.String()),
		ledgerKey(kTokenBalance, token.String(), recipient.String()),
		amount,
	)
}

// Approve sets the allowance owner grants spender, replacing any previous one.
func (l *KVLedger) Approve(token, owner, spender Address, amount *uint256.Int) error {
	if _, err := l.Decimals(token); err != nil {
		return err
	}
	l.storeAmount(ledgerKey(kTokenAllowance, token.String(), owner.String(), spender.String()), amount)
	return nil
}

func (l *KVLedger) Allowance(token, owner, spender Address) (*uint256.Int, error) {
	return l.loadAmount(ledgerKey(kTokenAllowance, token.String(), owner.String(), spender.String()))
}

func (l *KVLedger) TransferFrom(token, spender, owner, recipient Address, amount *uint256.Int) error {
	if _, err := l.Decimals(token); err != nil {
		return err
	}
	allowKey := ledgerKey(kTokenAllowance, token.String(), owner.String(), spender.String())
	allowed, err := l.loadAmount(allowKey)
	if err != nil {
		return err
	}
	if allowed.Lt(amount) {
		return ErrInsufficientAllowance
	}
	if err := l.move(
		ledgerKey(kTokenBalance, token.String(), owner.String()),
		ledgerKey(kTokenBalance, token.String(), recipient.String()),
		amount,
	); err != nil {
		return err
	}
	l.storeAmount(allowKey, new(uint256.Int).Sub(allowed, amount))
	return nil
}

func (l *KVLedger) MainPurse(owner Address) Purse {
	return Purse(mainPursePrefix + owner.String())
}

func (l *KVLedger) purseExists(p Purse) bool {
	if p.IsMain() {
		return true
	}
	ptr := l.state.Get(ledgerKey(kPurseOwner, p.String()))
	return ptr != nil && *ptr != ""
}

// CreatePurse opens an empty purse that only owner may spend from.
func (l *KVLedger) CreatePurse(owner Address, name string) (Purse, error) {
	if !owner.IsValid() {
		return "", fmt.Errorf("invalid purse owner %q", owner)
	}
	p := Purse(pursePrefix + name)
	if !p.IsValid() || p.IsMain() {
		return "", fmt.Errorf("invalid purse name %q", name)
	}
	if l.purseExists(p) {
		return "", fmt.Errorf("%w: %s", ErrPurseExists, p)
	}
	l.state.Set(ledgerKey(kPurseOwner, p.String()), owner.String())
	return p, nil
}

// PurseOwner returns the account a purse belongs to. Main purses belong to
// the account they are named after.
func (l *KVLedger) PurseOwner(p Purse) (Address, error) {
	if p.IsMain() {
		return Address(strings.TrimPrefix(p.String(), mainPursePrefix)), nil
	}
	ptr := l.state.Get(ledgerKey(kPurseOwner, p.String()))
	if ptr == nil || *ptr == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownPurse, p)
	}
	return Address(*ptr), nil
}

func (l *KVLedger) PurseBalance(p Purse) (*uint256.Int, error) {
	if !l.purseExists(p) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPurse, p)
	}
	return l.loadAmount(ledgerKey(kPurseBalance, p.String()))
}

// FundPurse credits native coin to p. Test and bootstrap helper.
func (l *KVLedger) FundPurse(p Purse, amount *uint256.Int) error {
	if !l.purseExists(p) {
		return fmt.Errorf("%w: %s", ErrUnknownPurse, p)
	}
	key := ledgerKey(kPurseBalance, p.String())
	cur, err := l.loadAmount(key)
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(cur, amount)
	if overflow {
		return ErrAmountOverflow
	}
	l.storeAmount(key, sum)
	return nil
}

func (l *KVLedger) TransferFromPurseToPurse(src, dst Purse, amount *uint256.Int) error {
	if !l.purseExists(src) {
		return fmt.Errorf("%w: %s", ErrUnknownPurse, src)
	}
	if !l.purseExists(dst) {
		return fmt.Errorf("%w: %s", ErrUnknownPurse, dst)
	}
	return l.move(ledgerKey(kPurseBalance, src.String()), ledgerKey(kPurseBalance, dst.String()), amount)
}

func (l *KVLedger) TransferFromPurseToAccount(src Purse, to Address, amount *uint256.Int) error {
	return l.TransferFromPurseToPurse(src, l.MainPurse(to), amount)
}
