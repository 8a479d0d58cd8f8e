package contract

import (
	"okinoko_ido/sdk"
	"okinoko_ido/store"
)

// Contract is the launchpad bound to one call: the staged state, the host
// snapshot and the token/purse collaborators. A new one is built per call so
// nothing leaks from one transaction into the next.
type Contract struct {
	state  store.State
	env    sdk.Env
	tokens sdk.Token
	purses sdk.Purses
	logs   []string
}

// New binds the contract to a call. env is copied, so the time and sender
// seen by every check in the call are the same snapshot.
func New(state store.State, env sdk.Env, tokens sdk.Token, purses sdk.Purses) *Contract {
	return &Contract{
		state:  state,
		env:    env,
		tokens: tokens,
		purses: purses,
	}
}

// now is the block time read once for the whole call.
func (c *Contract) now() int64 {
	return c.env.Timestamp
}

func (c *Contract) sender() sdk.Address {
	return c.env.Sender
}

// self is the address the contract holds escrowed tokens under.
func (c *Contract) self() sdk.Address {
	return c.env.ContractID
}

// Logs returns the event lines emitted so far in this call.
func (c *Contract) Logs() []string {
	return c.logs
}
