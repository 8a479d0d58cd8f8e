package sdk

import "strings"

type AddressDomain string

const (
	AddressDomainUser     AddressDomain = "user"
	AddressDomainContract AddressDomain = "contract"
	AddressDomainSystem   AddressDomain = "system"
)

type AddressType string

const (
	AddressTypeAccount  AddressType = "account"
	AddressTypeContract AddressType = "contract"
	AddressTypeSystem   AddressType = "system"
	AddressTypeUnknown  AddressType = "unknown"
)

const (
	accountPrefix  = "account-hash-"
	contractPrefix = "hash-"
	systemPrefix   = "system:"
)

type Address string

// String returns the literal representation (like account-hash-00ab) of the address.
func (a Address) String() string {
	return string(a)
}

// Domain checks the prefix to tell user, contract and system addresses apart.
func (a Address) Domain() AddressDomain {
	switch a.Type() {
	case AddressTypeSystem:
		return AddressDomainSystem
	case AddressTypeContract:
		return AddressDomainContract
	}
	return AddressDomainUser
}

// Type categorizes the address by prefix.
// Example payload: sdk.Address("hash-7f3a").Type()
func (a Address) Type() AddressType {
	s := a.String()
	switch {
	case strings.HasPrefix(s, accountPrefix):
		return AddressTypeAccount
	case strings.HasPrefix(s, contractPrefix):
		return AddressTypeContract
	case strings.HasPrefix(s, systemPrefix):
		return AddressTypeSystem
	default:
		return AddressTypeUnknown
	}
}

// IsValid is a light sanity check: known prefix, non-empty body, no
// characters that would break storage keys or event lines.
func (a Address) IsValid() bool {
	t := a.Type()
	if t == AddressTypeUnknown {
		return false
	}
	var body string
	switch t {
	case AddressTypeAccount:
		body = strings.TrimPrefix(a.String(), accountPrefix)
	case AddressTypeContract:
		body = strings.TrimPrefix(a.String(), contractPrefix)
	case AddressTypeSystem:
		body = strings.TrimPrefix(a.String(), systemPrefix)
	}
	if body == "" {
		return false
	}
	return !strings.ContainsAny(body, "|\x00 \t\n")
}

// AccountAddress builds an account address from a hex account hash.
func AccountAddress(hash string) Address {
	return Address(accountPrefix + hash)
}

// ContractAddress builds a contract address from a hex contract hash.
func ContractAddress(hash string) Address {
	return Address(contractPrefix + hash)
}
