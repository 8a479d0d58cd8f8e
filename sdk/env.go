package sdk

import "time"

// Env is the host snapshot for one contract call. It is read once when the
// call starts and never changes while the call runs.
type Env struct {
	// ContractID is the address the contract holds tokens under.
	ContractID  Address `json:"contract.id"`
	TxID        string  `json:"tx.id"`
	BlockHeight uint64  `json:"block.height"`
	// Timestamp is the block time in unix seconds.
	Timestamp int64   `json:"block.timestamp"`
	Sender    Address `json:"msg.sender"`
	// DepositPurse carries native coin attached to the call, if any.
	DepositPurse *Purse `json:"deposit_purse,omitempty"`
}

// Now returns the call time as time.Time for logging.
func (e *Env) Now() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}
