package contract_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"okinoko_ido/contract"
	"okinoko_ido/sdk"
	"okinoko_ido/store"
)

var (
	contractID = sdk.ContractAddress("1d0c0de")
	idoToken   = sdk.ContractAddress("70ce")
	payToken   = sdk.ContractAddress("05dc")
	otherToken = sdk.ContractAddress("0bad")

	owner    = sdk.AccountAddress("00aa")
	treasury = sdk.AccountAddress("77ee")
	creator  = sdk.AccountAddress("c0ffee")
	bidder   = sdk.AccountAddress("b1dde2")
	bidder2  = sdk.AccountAddress("b1dde3")
	outsider = sdk.AccountAddress("0u751de")
)

const (
	saleStart = int64(1000)
	saleEnd   = int64(2000)
)

type harness struct {
	t       *testing.T
	host    *contract.Host
	backend *store.MemoryBackend
	now     int64
	seq     int
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

// newHarness seeds tokens and balances and runs init as owner.
func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := store.NewMemoryBackend()
	h := &harness{
		t:       t,
		host:    contract.NewHost(backend, zaptest.NewLogger(t)),
		backend: backend,
		now:     100,
	}
	require.NoError(t, h.host.Seed(context.Background(), func(l *sdk.KVLedger) error {
		l.RegisterToken(idoToken, 2)
		l.RegisterToken(payToken, 0)
		for _, step := range []error{
			l.Mint(idoToken, creator, u(10_000)),
			l.Approve(idoToken, creator, contractID, u(10_000)),
			l.Mint(payToken, bidder, u(1_000)),
			l.Approve(payToken, bidder, contractID, u(1_000)),
			l.Mint(payToken, bidder2, u(1_000)),
			l.Approve(payToken, bidder2, contractID, u(1_000)),
		} {
			if step != nil {
				return step
			}
		}
		return nil
	}))
	h.ok(owner, "init", fmt.Sprintf(`{"treasury_wallet":%q}`, treasury))
	h.ok(owner, "add_admin", fmt.Sprintf(`{"admin":%q}`, creator))
	return h
}

func (h *harness) exec(sender sdk.Address, deposit *sdk.Purse, entry, payload string) *contract.Receipt {
	h.t.Helper()
	h.seq++
	env := sdk.Env{
		ContractID:   contractID,
		TxID:         fmt.Sprintf("%s-%d", entry, h.seq),
		BlockHeight:  uint64(h.seq),
		Timestamp:    h.now,
		Sender:       sender,
		DepositPurse: deposit,
	}
	r, err := h.host.Execute(context.Background(), env, entry, []byte(payload))
	require.NoError(h.t, err)
	return r
}

func (h *harness) ok(sender sdk.Address, entry, payload string) *contract.Receipt {
	h.t.Helper()
	r := h.exec(sender, nil, entry, payload)
	require.True(h.t, r.Success, "%s failed: %s", entry, r.Err)
	return r
}

func (h *harness) fails(sender sdk.Address, entry, payload string, want *contract.Error) *contract.Receipt {
	h.t.Helper()
	r := h.exec(sender, nil, entry, payload)
	require.False(h.t, r.Success, "%s succeeded, expected %s", entry, want.Name)
	assert.Equal(h.t, want.Code, r.ErrCode, "%s: %s", entry, r.Err)
	assert.Empty(h.t, r.Logs)
	return r
}

func (h *harness) balance(token, holder sdk.Address) uint64 {
	h.t.Helper()
	var out uint64
	require.NoError(h.t, h.host.View(context.Background(), func(l *sdk.KVLedger) error {
		b, err := l.BalanceOf(token, holder)
		if err != nil {
			return err
		}
		out = b.Uint64()
		return nil
	}))
	return out
}

func (h *harness) purseBalance(p sdk.Purse) uint64 {
	h.t.Helper()
	var out uint64
	require.NoError(h.t, h.host.View(context.Background(), func(l *sdk.KVLedger) error {
		b, err := l.PurseBalance(p)
		if err != nil {
			return err
		}
		out = b.Uint64()
		return nil
	}))
	return out
}

// whitelist builds a tree over plain bidder leaves.
func whitelist(bidders ...sdk.Address) *contract.MerkleTree {
	leaves := make([]string, len(bidders))
	for i, b := range bidders {
		leaves[i] = contract.WhitelistLeaf(b, nil)
	}
	return contract.NewMerkleTree(leaves)
}

type auctionParams struct {
	id       string
	root     string
	bidding  string
	capacity uint64
	tiers    string
	info     string
}

func erc20Auction(id, root string) auctionParams {
	return auctionParams{
		id:       id,
		root:     root,
		bidding:  fmt.Sprintf(`{"erc20s":{%q:"1"}}`, payToken),
		capacity: 1000,
		tiers:    fmt.Sprintf(`{%q:"50"}`, bidder),
		info:     "first sale",
	}
}

func (s auctionParams) payload() string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"id":%q,"info":%q,"start_time":%d,"end_time":%d,"open_time":900,`, s.id, s.info, saleStart, saleEnd)
	fmt.Fprintf(&b, `"auction_token":%q,"token_price":"20","token_capacity":"%d",`, idoToken, s.capacity)
	fmt.Fprintf(&b, `"bidding_token":%s,"fee_numerator":100,"schedules":{"3000":5000,"4000":5000}`, s.bidding)
	if s.root != "" {
		fmt.Fprintf(&b, `,"merkle_root":%q`, s.root)
	}
	if s.tiers != "" {
		fmt.Fprintf(&b, `,"tiers":%s`, s.tiers)
	}
	b.WriteByte('}')
	return b.String()
}

func orderPayload(id string, proof []contract.ProofStep, amount uint64, token *sdk.Address, tier *uint64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"auction_id":%q,"proof":%s,"amount":"%d"`, id, contract.EncodeProofJSON(proof), amount)
	if token != nil {
		fmt.Fprintf(&b, `,"token":%q`, *token)
	}
	if tier != nil {
		fmt.Fprintf(&b, `,"tier":"%d"`, *tier)
	}
	b.WriteByte('}')
	return b.String()
}

func bidderQuery(id string, who sdk.Address, scheduleTime int64) string {
	return fmt.Sprintf(`{"auction_id":%q,"bidder":%q,"schedule_time":%d}`, id, who, scheduleTime)
}

// -----------------------------------------------------------------------------
// End to end
// -----------------------------------------------------------------------------

func TestAuctionLifecycle(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder, bidder2, outsider+"x")
	proof := tree.Proof(0)
	pay := payToken

	r := h.ok(creator, "create_auction", erc20Auction("ido-1", tree.Root()).payload())
	require.Len(t, r.Logs, 1)
	assert.Equal(t, "ac|id:ido-1|by:"+creator.String()+"|fee:10|cap:990", r.Logs[0])
	assert.Equal(t, uint64(10), h.balance(idoToken, treasury))
	assert.Equal(t, uint64(990), h.balance(idoToken, contractID))
	assert.Equal(t, uint64(9_000), h.balance(idoToken, creator))

	h.now = 1500
	h.ok(bidder, "create_order", orderPayload("ido-1", proof, 20, &pay, nil))
	h.ok(bidder, "create_order", orderPayload("ido-1", proof, 20, &pay, nil))
	h.fails(bidder, "create_order", orderPayload("ido-1", proof, 20, &pay, nil), contract.ErrOutOfTier)

	assert.Equal(t, `{"amount":"40"}`, h.ok(bidder, "get_order", bidderQuery("ido-1", bidder, 0)).Ret)
	assert.Equal(t, uint64(40), h.balance(payToken, treasury))
	assert.Equal(t, uint64(960), h.balance(payToken, bidder))

	view := h.ok(bidder, "get_auction", `{"auction_id":"ido-1"}`).Ret
	assert.Contains(t, view, `"status":"open"`)
	assert.Contains(t, view, `"sold_amount":"40"`)
	assert.Contains(t, view, `"total_participants":1`)

	h.now = 3500
	r = h.ok(bidder, "claim", `{"auction_id":"ido-1","schedule_time":3000}`)
	assert.Equal(t, "cl|id:ido-1|by:"+bidder.String()+"|t:3000|am:100", r.Logs[0])
	assert.Equal(t, uint64(100), h.balance(idoToken, bidder))
	assert.Equal(t, uint64(890), h.balance(idoToken, contractID))

	h.fails(bidder, "claim", `{"auction_id":"ido-1","schedule_time":3000}`, contract.ErrAlreadyClaimed)
	assert.Equal(t, uint64(100), h.balance(idoToken, bidder), "no second transfer")
	assert.Equal(t, `{"claimed":true}`, h.ok(bidder, "get_claim", bidderQuery("ido-1", bidder, 3000)).Ret)

	h.fails(bidder, "claim", `{"auction_id":"ido-1","schedule_time":4000}`, contract.ErrInvalidTime)
	h.now = 4001
	h.ok(bidder, "claim", `{"auction_id":"ido-1","schedule_time":4000}`)
	assert.Equal(t, uint64(200), h.balance(idoToken, bidder))

	view = h.ok(bidder, "get_auction", `{"auction_id":"ido-1"}`).Ret
	assert.Contains(t, view, `"status":"closed"`)
	assert.Contains(t, view, `"unlocked_amount":"200"`)
}

func TestCreateAuctionTwiceKeepsFirstRecord(t *testing.T) {
	h := newHarness(t)
	h.ok(creator, "create_auction", erc20Auction("ido-1", whitelist(bidder).Root()).payload())
	before := h.ok(creator, "get_auction", `{"auction_id":"ido-1"}`).Ret
	size := h.backend.Len()

	again := erc20Auction("ido-1", "")
	again.info = "second attempt"
	again.capacity = 500
	h.fails(creator, "create_auction", again.payload(), contract.ErrAlreadyExistAuction)

	assert.Equal(t, before, h.ok(creator, "get_auction", `{"auction_id":"ido-1"}`).Ret)
	assert.Equal(t, size, h.backend.Len())
	assert.Equal(t, uint64(10), h.balance(idoToken, treasury), "no second fee")
}

func TestFailedOrderLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder)
	pay := payToken
	h.ok(creator, "create_auction", erc20Auction("ido-1", tree.Root()).payload())
	h.now = 1500
	h.ok(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 50, &pay, nil))

	size := h.backend.Len()
	auction := h.ok(bidder, "get_auction", `{"auction_id":"ido-1"}`).Ret

	// payment is taken before the cap check; the abort must return it
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 1, &pay, nil), contract.ErrOutOfTier)
	assert.Equal(t, size, h.backend.Len())
	assert.Equal(t, auction, h.ok(bidder, "get_auction", `{"auction_id":"ido-1"}`).Ret)
	assert.Equal(t, uint64(950), h.balance(payToken, bidder))
	assert.Equal(t, uint64(50), h.balance(payToken, treasury))
}

// -----------------------------------------------------------------------------
// Order admission
// -----------------------------------------------------------------------------

func TestCreateOrderRejections(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder, bidder2)
	pay := payToken
	unknown := otherToken
	h.ok(creator, "create_auction", erc20Auction("ido-1", tree.Root()).payload())

	h.now = 1500
	h.fails(bidder, "create_order", orderPayload("nope", tree.Proof(0), 10, &pay, nil), contract.ErrNotExistAuction)
	h.fails(outsider, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &pay, nil), contract.ErrNotWhitelisted)
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(1), 10, &pay, nil), contract.ErrNotWhitelisted)
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, nil, nil), contract.ErrInvalidPayToken)
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &unknown, nil), contract.ErrInvalidPayToken)
	h.fails(bidder2, "create_order", orderPayload("ido-1", tree.Proof(1), 10, &pay, nil), contract.ErrTierNotSet)
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 2_000, &pay, nil), contract.ErrInsufficientAllowance)

	h.now = saleStart - 1
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &pay, nil), contract.ErrSaleNotStarted)
	h.now = saleEnd
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &pay, nil), contract.ErrSaleEnded)
}

func TestTierBoundWhitelist(t *testing.T) {
	h := newHarness(t)
	tier := uint64(30)
	tree := contract.NewMerkleTree([]string{
		contract.WhitelistLeaf(bidder2, u(tier)),
		contract.WhitelistLeaf(bidder, nil),
	})
	pay := payToken
	params := erc20Auction("ido-1", tree.Root())
	params.tiers = ""
	h.ok(creator, "create_auction", params.payload())

	h.now = 1500
	h.fails(bidder2, "create_order", orderPayload("ido-1", tree.Proof(0), 20, &pay, nil), contract.ErrNotWhitelisted)
	other := uint64(40)
	h.fails(bidder2, "create_order", orderPayload("ido-1", tree.Proof(0), 20, &pay, &other), contract.ErrNotWhitelisted)

	h.ok(bidder2, "create_order", orderPayload("ido-1", tree.Proof(0), 20, &pay, &tier))
	h.fails(bidder2, "create_order", orderPayload("ido-1", tree.Proof(0), 20, &pay, &tier), contract.ErrOutOfTier)

	// a stored tier takes precedence over the advertised one
	h.ok(creator, "set_tier", fmt.Sprintf(`{"auction_id":"ido-1","bidder":%q,"tier":"60"}`, bidder2))
	h.ok(bidder2, "create_order", orderPayload("ido-1", tree.Proof(0), 20, &pay, &tier))
	assert.Equal(t, `{"amount":"40"}`, h.ok(bidder2, "get_order", bidderQuery("ido-1", bidder2, 0)).Ret)
}

func TestSetTierCannotUndercutOrder(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder)
	pay := payToken
	h.ok(creator, "create_auction", erc20Auction("ido-1", tree.Root()).payload())
	h.now = 1500
	h.ok(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 40, &pay, nil))

	h.fails(creator, "set_tier", fmt.Sprintf(`{"auction_id":"ido-1","bidder":%q,"tier":"30"}`, bidder), contract.ErrOutOfTier)
	h.ok(owner, "set_tiers", fmt.Sprintf(`{"auction_id":"ido-1","tiers":{%q:"40"}}`, bidder))
	assert.Equal(t, `{"tier":"40"}`, h.ok(bidder, "get_tier", bidderQuery("ido-1", bidder, 0)).Ret)
	h.fails(bidder, "set_tier", fmt.Sprintf(`{"auction_id":"ido-1","bidder":%q,"tier":"100"}`, bidder), contract.ErrPermissionDenied)
}

func TestDefaultMerkleRootFallback(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder)
	pay := payToken
	h.ok(creator, "create_auction", erc20Auction("ido-1", "").payload())

	h.now = 1500
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &pay, nil), contract.ErrNotWhitelisted)
	h.ok(owner, "remove_admin", fmt.Sprintf(`{"admin":%q}`, creator))
	h.fails(creator, "set_default_merkle_root", `{"merkle_root":"`+tree.Root()+`"}`, contract.ErrPermissionDenied)

	h.ok(owner, "set_default_merkle_root", `{"merkle_root":"0x`+strings.ToUpper(tree.Root())+`"}`)
	h.ok(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &pay, nil))

	// a per-auction root overrides the default
	h.ok(owner, "set_merkle_root", `{"auction_id":"ido-1","merkle_root":"`+whitelist(bidder2).Root()+`"}`)
	h.fails(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 10, &pay, nil), contract.ErrNotWhitelisted)
}

// -----------------------------------------------------------------------------
// Native coin auctions
// -----------------------------------------------------------------------------

func TestNativeAuction(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder)
	params := erc20Auction("sale-n", tree.Root())
	params.bidding = `{"native":{}}`
	h.ok(creator, "create_auction", params.payload())

	var deposit sdk.Purse
	require.NoError(t, h.host.Seed(context.Background(), func(l *sdk.KVLedger) error {
		p, err := l.CreatePurse(bidder, "bidder-deposit")
		if err != nil {
			return err
		}
		deposit = p
		return l.FundPurse(p, u(30_000_000_000))
	}))

	h.now = 1500
	order := orderPayload("sale-n", tree.Proof(0), 10_000_000_000, nil, nil)
	r := h.exec(bidder, &deposit, "create_order", order)
	assert.Equal(t, contract.ErrInvalidCSPRPrice.Code, r.ErrCode, r.Err)

	h.now = 500
	// two pricing units per whole coin
	h.fails(bidder, "set_cspr_price", `{"auction_id":"sale-n","price":"2"}`, contract.ErrPermissionDenied)
	h.ok(creator, "set_cspr_price", `{"auction_id":"sale-n","price":"2"}`)

	h.now = 1500
	h.fails(creator, "set_cspr_price", `{"auction_id":"sale-n","price":"1"}`, contract.ErrInvalidTime)
	pay := payToken
	r = h.exec(bidder, &deposit, "create_order", orderPayload("sale-n", tree.Proof(0), 10, &pay, nil))
	assert.Equal(t, contract.ErrInvalidPayToken.Code, r.ErrCode, r.Err)
	h.fails(bidder, "create_order", order, contract.ErrInsufficientBalance)

	r = h.exec(bidder, &deposit, "create_order", order)
	require.True(t, r.Success, r.Err)
	assert.Equal(t, `{"amount":"20"}`, h.ok(bidder, "get_order", bidderQuery("sale-n", bidder, 0)).Ret)
	assert.Equal(t, uint64(20_000_000_000), h.purseBalance(deposit))

	var main sdk.Purse
	require.NoError(t, h.host.View(context.Background(), func(l *sdk.KVLedger) error {
		main = l.MainPurse(treasury)
		return nil
	}))
	assert.Equal(t, uint64(10_000_000_000), h.purseBalance(main))

	r = h.exec(bidder, &deposit, "create_order", orderPayload("sale-n", tree.Proof(0), 1, nil, nil))
	assert.Equal(t, contract.ErrInvalidArgument.Code, r.ErrCode, "worthless order: %s", r.Err)
}

func TestNativeDepositMustBelongToSender(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder)
	params := erc20Auction("sale-n", tree.Root())
	params.bidding = `{"native":{"price":"2"}}`
	h.ok(creator, "create_auction", params.payload())

	const funded = uint64(10_000_000_000)
	escrow := sdk.Purse("uref-auction-sale-n")
	var victimMain, foreign, own sdk.Purse
	require.NoError(t, h.host.Seed(context.Background(), func(l *sdk.KVLedger) error {
		victimMain = l.MainPurse(bidder2)
		own = l.MainPurse(bidder)
		p, err := l.CreatePurse(bidder2, "bidder2-deposit")
		if err != nil {
			return err
		}
		foreign = p
		for _, purse := range []sdk.Purse{victimMain, escrow, foreign, own} {
			if err := l.FundPurse(purse, u(funded)); err != nil {
				return err
			}
		}
		return nil
	}))

	h.now = 1500
	order := orderPayload("sale-n", tree.Proof(0), funded, nil, nil)
	for _, purse := range []sdk.Purse{victimMain, escrow, foreign} {
		r := h.exec(bidder, &purse, "create_order", order)
		require.False(t, r.Success, "paid from %s", purse)
		assert.Equal(t, contract.ErrPermissionDenied.Code, r.ErrCode, "%s: %s", purse, r.Err)
		assert.Empty(t, r.Logs)
		assert.Equal(t, funded, h.purseBalance(purse), "%s untouched", purse)
	}

	missing := sdk.Purse("uref-nowhere")
	r := h.exec(bidder, &missing, "create_order", order)
	assert.Equal(t, contract.ErrInvalidArgument.Code, r.ErrCode, r.Err)
	assert.Equal(t, `{"amount":"0"}`, h.ok(bidder, "get_order", bidderQuery("sale-n", bidder, 0)).Ret)

	r = h.exec(bidder, &own, "create_order", order)
	require.True(t, r.Success, r.Err)
	assert.Equal(t, uint64(0), h.purseBalance(own))
	assert.Equal(t, `{"amount":"20"}`, h.ok(bidder, "get_order", bidderQuery("sale-n", bidder, 0)).Ret)
}

func TestCancelOrder(t *testing.T) {
	h := newHarness(t)
	native := erc20Auction("sale-n", whitelist(bidder).Root())
	native.bidding = `{"native":{"price":"1"}}`
	h.ok(creator, "create_auction", native.payload())
	h.ok(creator, "create_auction", erc20Auction("sale-t", whitelist(bidder).Root()).payload())

	seed := fmt.Sprintf(`{"auction_id":%%q,"orders":{%q:"30"}}`, bidder)
	h.fails(bidder, "add_orders", fmt.Sprintf(seed, "sale-n"), contract.ErrPermissionDenied)
	h.ok(creator, "add_orders", fmt.Sprintf(seed, "sale-n"))
	h.ok(creator, "add_orders", fmt.Sprintf(seed, "sale-t"))
	h.fails(creator, "add_orders", fmt.Sprintf(`{"auction_id":"sale-t","orders":{%q:"30"}}`, bidder), contract.ErrOutOfTier)

	h.fails(outsider, "cancel_order", `{"auction_id":"sale-n"}`, contract.ErrNotExistOrder)
	h.fails(bidder, "cancel_order", `{"auction_id":"sale-t"}`, contract.ErrPermissionDenied)

	r := h.ok(bidder, "cancel_order", `{"auction_id":"sale-n"}`)
	assert.Equal(t, "ox|id:sale-n|by:"+bidder.String()+"|rf:0", r.Logs[0])
	assert.Equal(t, `{"amount":"0"}`, h.ok(bidder, "get_order", bidderQuery("sale-n", bidder, 0)).Ret)
	view := h.ok(bidder, "get_auction", `{"auction_id":"sale-n"}`).Ret
	assert.Contains(t, view, `"sold_amount":"0"`)
	assert.Contains(t, view, `"total_participants":0`)

	h.now = saleStart
	h.fails(bidder, "cancel_order", `{"auction_id":"sale-t"}`, contract.ErrInvalidTime)
	h.fails(creator, "add_orders", fmt.Sprintf(seed, "sale-t"), contract.ErrInvalidTime)
}

// -----------------------------------------------------------------------------
// Claims
// -----------------------------------------------------------------------------

func TestClaimRejections(t *testing.T) {
	h := newHarness(t)
	tree := whitelist(bidder)
	pay := payToken
	h.ok(creator, "create_auction", erc20Auction("ido-1", tree.Root()).payload())
	h.now = 1500
	h.ok(bidder, "create_order", orderPayload("ido-1", tree.Proof(0), 40, &pay, nil))

	h.now = 3500
	h.fails(outsider, "claim", `{"auction_id":"ido-1","schedule_time":3000}`, contract.ErrNotExistOrder)
	h.fails(bidder, "claim", `{"auction_id":"ido-1","schedule_time":3100}`, contract.ErrInvalidSchedule)
	h.fails(bidder, "claim", `{"auction_id":"ido-1","schedule_time":3500}`, contract.ErrInvalidTime)
	h.fails(bidder, "claim", `{"auction_id":"nope","schedule_time":3000}`, contract.ErrNotExistAuction)
}

func TestClaimNeedsEscrow(t *testing.T) {
	h := newHarness(t)
	params := erc20Auction("ido-1", whitelist(bidder).Root())
	params.capacity = 10
	params.tiers = ""
	h.ok(creator, "create_auction", params.payload())
	h.ok(creator, "add_orders", fmt.Sprintf(`{"auction_id":"ido-1","orders":{%q:"40"}}`, bidder))

	// 40 units at 50% buys 100 base units; only 10 were escrowed
	h.now = 3500
	h.fails(bidder, "claim", `{"auction_id":"ido-1","schedule_time":3000}`, contract.ErrInsufficientBalance)
	assert.Equal(t, `{"claimed":false}`, h.ok(bidder, "get_claim", bidderQuery("ido-1", bidder, 3000)).Ret)
}

// -----------------------------------------------------------------------------
// Contract administration
// -----------------------------------------------------------------------------

func TestInitAndPermissions(t *testing.T) {
	backend := store.NewMemoryBackend()
	host := contract.NewHost(backend, zaptest.NewLogger(t))
	call := func(sender sdk.Address, entry, payload string) *contract.Receipt {
		r, err := host.Execute(context.Background(), sdk.Env{ContractID: contractID, Sender: sender, Timestamp: 1}, entry, []byte(payload))
		require.NoError(t, err)
		return r
	}

	r := call(owner, "create_auction", erc20Auction("ido-1", "").payload())
	assert.Equal(t, contract.ErrNotInitialized.Code, r.ErrCode)
	assert.Zero(t, backend.Len())

	r = call(owner, "init", fmt.Sprintf(`{"treasury_wallet":%q,"fee_denominator":100000}`, treasury))
	require.True(t, r.Success, r.Err)
	r = call(owner, "init", fmt.Sprintf(`{"treasury_wallet":%q}`, treasury))
	assert.Equal(t, contract.ErrAlreadyInitialized.Code, r.ErrCode)

	r = call(owner, "get_config", ``)
	require.True(t, r.Success, r.Err)
	assert.Contains(t, r.Ret, `"fee_denominator":100000`)
	assert.Contains(t, r.Ret, `"public_creation":false`)

	r = call(creator, "create_auction", erc20Auction("ido-1", "").payload())
	assert.Equal(t, contract.ErrPermissionDenied.Code, r.ErrCode)
	r = call(creator, "set_treasury_wallet", fmt.Sprintf(`{"treasury_wallet":%q}`, creator))
	assert.Equal(t, contract.ErrPermissionDenied.Code, r.ErrCode)
	r = call(owner, "remove_admin", fmt.Sprintf(`{"admin":%q}`, owner))
	assert.Equal(t, contract.ErrPermissionDenied.Code, r.ErrCode)
	r = call(owner, "no_such_entry", `{}`)
	assert.Equal(t, contract.ErrUnknownEntryPoint.Code, r.ErrCode)
	r = call("mallory", "get_config", ``)
	assert.Equal(t, contract.ErrInvalidArgument.Code, r.ErrCode)

	r = call(owner, "set_fee_denominator", `{"fee_denominator":0}`)
	assert.Equal(t, contract.ErrInvalidArgument.Code, r.ErrCode)
	r = call(owner, "set_fee_denominator", `{"fee_denominator":10000}`)
	require.True(t, r.Success, r.Err)
	assert.Equal(t, "cu|by:"+owner.String()+"|f:fee_denominator|old:100000|new:10000", r.Logs[0])
}

func TestPublicCreation(t *testing.T) {
	backend := store.NewMemoryBackend()
	host := contract.NewHost(backend, nil)
	ctx := context.Background()
	require.NoError(t, host.Seed(ctx, func(l *sdk.KVLedger) error {
		l.RegisterToken(idoToken, 2)
		l.RegisterToken(payToken, 0)
		if err := l.Mint(idoToken, outsider, u(1_000)); err != nil {
			return err
		}
		return l.Approve(idoToken, outsider, contractID, u(1_000))
	}))
	env := sdk.Env{ContractID: contractID, Sender: owner, Timestamp: 1}
	r, err := host.Execute(ctx, env, "init", []byte(fmt.Sprintf(`{"treasury_wallet":%q,"public_creation":true}`, treasury)))
	require.NoError(t, err)
	require.True(t, r.Success, r.Err)

	env.Sender = outsider
	r, err = host.Execute(ctx, env, "create_auction", []byte(erc20Auction("ido-1", "").payload()))
	require.NoError(t, err)
	require.True(t, r.Success, r.Err)
}

func TestChangeTimeSchedules(t *testing.T) {
	h := newHarness(t)
	h.ok(creator, "create_auction", erc20Auction("ido-1", whitelist(bidder).Root()).payload())

	change := `{"auction_id":"ido-1","start_time":1200,"end_time":2200,"open_time":1100,"schedules":{"5000":10000}}`
	h.fails(owner, "change_time_schedules", change, contract.ErrPermissionDenied)
	h.fails(creator, "change_time_schedules",
		`{"auction_id":"ido-1","start_time":1200,"end_time":2200,"schedules":{"5000":6000,"6000":6000}}`,
		contract.ErrInvalidArgument)
	h.ok(creator, "change_time_schedules", change)

	view := h.ok(creator, "get_auction", `{"auction_id":"ido-1"}`).Ret
	assert.Contains(t, view, `"start_time":1200`)
	assert.Contains(t, view, `"schedules":{"5000":10000}`)

	h.now = 1200
	h.fails(creator, "change_time_schedules", change, contract.ErrInvalidTime)
}

func TestEntryPointsListed(t *testing.T) {
	names := contract.EntryPoints()
	for _, want := range []string{"init", "create_auction", "create_order", "cancel_order", "claim", "set_merkle_root",
		"set_tiers", "set_tier", "set_cspr_price", "set_treasury_wallet", "set_fee_denominator", "get_auction"} {
		assert.Contains(t, names, want)
	}
}
