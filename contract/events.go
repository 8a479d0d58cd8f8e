package contract

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

func (c *Contract) log(line string) {
	c.logs = append(c.logs, line)
}

// emitInitEvent marks the one-time setup with the owner and treasury.
func (c *Contract) emitInitEvent(owner, treasury sdk.Address) {
	c.log(fmt.Sprintf("in|by:%s|tr:%s", owner, treasury))
}

// emitAuctionCreatedEvent carries the fee split so the treasury side can be
// replayed from logs alone.
func (c *Contract) emitAuctionCreatedEvent(id string, creator sdk.Address, fee, escrowed *uint256.Int) {
	c.log(fmt.Sprintf(
		"ac|id:%s|by:%s|fee:%s|cap:%s",
		id,
		creator,
		fee.Dec(),
		escrowed.Dec(),
	))
}

// emitOrderCreatedEvent logs the paid amount and the bidder's running total.
func (c *Contract) emitOrderCreatedEvent(id string, bidder sdk.Address, paid, total *uint256.Int) {
	c.log(fmt.Sprintf(
		"oc|id:%s|by:%s|am:%s|tot:%s",
		id,
		bidder,
		paid.Dec(),
		total.Dec(),
	))
}

func (c *Contract) emitOrderCancelledEvent(id string, bidder sdk.Address, refund *uint256.Int) {
	c.log(fmt.Sprintf("ox|id:%s|by:%s|rf:%s", id, bidder, refund.Dec()))
}

func (c *Contract) emitOrdersAddedEvent(id string, by sdk.Address, count int) {
	c.log(fmt.Sprintf("oa|id:%s|by:%s|n:%d", id, by, count))
}

// emitClaimEvent ties the transferred amount to its schedule slot.
func (c *Contract) emitClaimEvent(id string, bidder sdk.Address, scheduleTime int64, amount *uint256.Int) {
	c.log(fmt.Sprintf(
		"cl|id:%s|by:%s|t:%s|am:%s",
		id,
		bidder,
		strconv.FormatInt(scheduleTime, 10),
		amount.Dec(),
	))
}

// emitAuctionUpdatedEvent is the catch-all for creator/admin edits to a live
// auction: the field name plus its new value.
func (c *Contract) emitAuctionUpdatedEvent(id string, by sdk.Address, field, value string) {
	c.log(fmt.Sprintf("au|id:%s|by:%s|f:%s|v:%s", id, by, field, value))
}

// emitConfigUpdatedEvent spells out old and new values of contract-wide settings.
func (c *Contract) emitConfigUpdatedEvent(by sdk.Address, field, old, new string) {
	c.log(fmt.Sprintf("cu|by:%s|f:%s|old:%s|new:%s", by, field, old, new))
}

func (c *Contract) emitAdminEvent(by, admin sdk.Address, added bool) {
	c.log(fmt.Sprintf("ad|by:%s|a:%s|add:%s", by, admin, strconv.FormatBool(added)))
}
