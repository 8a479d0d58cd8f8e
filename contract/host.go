package contract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"okinoko_ido/sdk"
	"okinoko_ido/store"
)

// Receipt is what a caller gets back for one call. Contract errors are
// reported here; only infrastructure failures come back as a Go error.
type Receipt struct {
	TxID    string   `json:"tx_id"`
	Entry   string   `json:"entry"`
	Success bool     `json:"success"`
	Ret     string   `json:"ret,omitempty"`
	ErrCode uint16   `json:"err_code,omitempty"`
	ErrName string   `json:"err_name,omitempty"`
	ErrKind string   `json:"err_kind,omitempty"`
	Err     string   `json:"err,omitempty"`
	Logs    []string `json:"logs,omitempty"`
}

// Host runs calls one at a time against a backend. Every call stages its
// writes, token moves included, and commits them in one Apply on success.
type Host struct {
	mu      sync.Mutex
	backend store.Backend
	log     *zap.Logger
}

// NewHost wraps backend. A nil logger discards output.
func NewHost(backend store.Backend, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{backend: backend, log: log}
}

// -----------------------------------------------------------------------------
// Entry point table
// -----------------------------------------------------------------------------

type entryFunc func(c *Contract, payload []byte) ([]byte, error)

type validator interface {
	Validate() error
}

// mutate decodes and validates the payload before any state is read.
func mutate[A validator](decode func([]byte) (A, error), fn func(*Contract, A) error) entryFunc {
	return func(c *Contract, payload []byte) ([]byte, error) {
		args, err := decode(payload)
		if err != nil {
			return nil, err
		}
		if err := args.Validate(); err != nil {
			return nil, err
		}
		return nil, fn(c, args)
	}
}

func query[A validator](decode func([]byte) (A, error), fn func(*Contract, A) ([]byte, error)) entryFunc {
	return func(c *Contract, payload []byte) ([]byte, error) {
		args, err := decode(payload)
		if err != nil {
			return nil, err
		}
		if err := args.Validate(); err != nil {
			return nil, err
		}
		return fn(c, args)
	}
}

var entries = map[string]entryFunc{
	"init":                    mutate(DecodeInitArgs, (*Contract).Init),
	"create_auction":          mutate(DecodeCreateAuctionArgs, (*Contract).CreateAuction),
	"create_order":            mutate(DecodeCreateOrderArgs, (*Contract).CreateOrder),
	"cancel_order":            mutate(DecodeAuctionArgs, (*Contract).CancelOrder),
	"add_orders":              mutate(DecodeAddOrdersArgs, (*Contract).AddOrders),
	"claim":                   mutate(DecodeClaimArgs, (*Contract).Claim),
	"set_merkle_root":         mutate(DecodeSetMerkleRootArgs, (*Contract).SetMerkleRoot),
	"set_default_merkle_root": mutate(DecodeSetDefaultMerkleRootArgs, (*Contract).SetDefaultMerkleRoot),
	"set_tiers":               mutate(DecodeSetTiersArgs, (*Contract).SetTiers),
	"set_tier":                mutate(DecodeSetTierArgs, (*Contract).SetTier),
	"set_cspr_price":          mutate(DecodeSetCSPRPriceArgs, (*Contract).SetCSPRPrice),
	"set_treasury_wallet":     mutate(DecodeSetTreasuryWalletArgs, (*Contract).SetTreasuryWallet),
	"set_fee_denominator":     mutate(DecodeSetFeeDenominatorArgs, (*Contract).SetFeeDenominator),
	"add_admin":               mutate(DecodeAdminArgs, (*Contract).AddAdmin),
	"remove_admin":            mutate(DecodeAdminArgs, (*Contract).RemoveAdmin),
	"change_time_schedules":   mutate(DecodeChangeTimeSchedulesArgs, (*Contract).ChangeTimeSchedules),
	"get_auction":             query(DecodeAuctionArgs, (*Contract).GetAuction),
	"get_order":               query(DecodeBidderQueryArgs, (*Contract).GetOrder),
	"get_tier":                query(DecodeBidderQueryArgs, (*Contract).GetTier),
	"get_claim":               query(DecodeBidderQueryArgs, (*Contract).GetClaim),
	"get_config": func(c *Contract, _ []byte) ([]byte, error) {
		return c.GetConfig()
	},
}

// EntryPoints lists every callable name, sorted.
func EntryPoints() []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

func validateEnv(env *sdk.Env) error {
	if !env.Sender.IsValid() {
		return ErrInvalidArgument.With("invalid sender %q", env.Sender)
	}
	if env.ContractID.Type() != sdk.AddressTypeContract {
		return ErrInvalidArgument.With("invalid contract id %q", env.ContractID)
	}
	if env.DepositPurse != nil && !env.DepositPurse.IsValid() {
		return ErrInvalidArgument.With("invalid deposit purse %q", *env.DepositPurse)
	}
	return nil
}

// Execute runs entry with payload under env. The call commits only if the
// entry point returned no error.
func (h *Host) Execute(ctx context.Context, env sdk.Env, entry string, payload []byte) (*Receipt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.log.With(
		zap.String("entry", entry),
		zap.String("tx", env.TxID),
		zap.Stringer("sender", env.Sender),
		zap.Int64("ts", env.Timestamp),
	)
	receipt := &Receipt{TxID: env.TxID, Entry: entry}

	txn := store.Begin(ctx, h.backend)
	ledger := sdk.NewKVLedger(txn)
	c := New(txn, env, ledger, ledger)

	ret, callErr := h.dispatch(c, &env, entry, payload)
	if callErr == nil {
		callErr = txn.Err()
	}
	if callErr != nil {
		txn.Discard()
		fillError(receipt, callErr)
		if KindOf(callErr) == 0 {
			log.Error("call failed", zap.Error(callErr))
			return receipt, callErr
		}
		log.Info("call rejected", zap.Uint16("code", receipt.ErrCode), zap.String("reason", receipt.Err))
		return receipt, nil
	}

	if err := txn.Commit(); err != nil {
		fillError(receipt, err)
		log.Error("commit failed", zap.Error(err))
		return receipt, err
	}
	receipt.Success = true
	receipt.Ret = string(ret)
	receipt.Logs = c.Logs()
	for _, line := range receipt.Logs {
		log.Debug("event", zap.String("log", line))
	}
	log.Info("call ok", zap.Int("events", len(receipt.Logs)))
	return receipt, nil
}

// dispatch turns a panic inside an entry point into an aborted call.
func (h *Host) dispatch(c *Contract, env *sdk.Env, entry string, payload []byte) (ret []byte, err error) {
	fn, ok := entries[entry]
	if !ok {
		return nil, ErrUnknownEntryPoint.With("%s", entry)
	}
	if err := validateEnv(env); err != nil {
		return nil, err
	}
	if entry != "init" && !c.isInitialized() {
		return nil, ErrNotInitialized
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s aborted: %v", entry, r)
		}
	}()
	return fn(c, payload)
}

func fillError(r *Receipt, err error) {
	r.Success = false
	r.Err = err.Error()
	var ce *Error
	if errors.As(err, &ce) {
		r.ErrCode = ce.Code
		r.ErrName = ce.Name
		r.ErrKind = ce.Kind.String()
	}
}

// -----------------------------------------------------------------------------
// Ledger access outside of contract calls
// -----------------------------------------------------------------------------

// Seed runs fn against the chain ledger and commits its writes. It is how
// tokens, balances and purses get bootstrapped before calls can use them.
func (h *Host) Seed(ctx context.Context, fn func(l *sdk.KVLedger) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	txn := store.Begin(ctx, h.backend)
	if err := fn(sdk.NewKVLedger(txn)); err != nil {
		txn.Discard()
		return err
	}
	return txn.Commit()
}

// View runs fn against committed ledger state and discards anything it wrote.
func (h *Host) View(ctx context.Context, fn func(l *sdk.KVLedger) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	txn := store.Begin(ctx, h.backend)
	defer txn.Discard()
	if err := fn(sdk.NewKVLedger(txn)); err != nil {
		return err
	}
	return txn.Err()
}
