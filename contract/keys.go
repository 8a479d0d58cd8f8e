package contract

import "okinoko_ido/sdk"

// packU64LE appends the encoded number to dst and returns the new slice.
func packU64LE(x uint64, dst []byte) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

// scopedKey builds prefix|auctionID\x00rest. Auction ids never contain 0x00
// so two different ids cannot produce overlapping key ranges.
func scopedKey(prefix byte, auctionID string, extra int) []byte {
	buf := make([]byte, 0, 1+len(auctionID)+1+extra)
	buf = append(buf, prefix)
	buf = append(buf, auctionID...)
	buf = append(buf, 0x00)
	return buf
}

// auctionKey holds the encoded Auction record.
func auctionKey(id string) string {
	buf := make([]byte, 0, 1+len(id))
	buf = append(buf, kAuction)
	buf = append(buf, id...)
	return string(buf)
}

// orderKey mixes auction id plus bidder to avoid nested maps in host storage.
func orderKey(auctionID string, bidder sdk.Address) string {
	return string(append(scopedKey(kOrder, auctionID, len(bidder)), bidder.String()...))
}

// tierKey mirrors order keys under the tier prefix.
func tierKey(auctionID string, bidder sdk.Address) string {
	return string(append(scopedKey(kTier, auctionID, len(bidder)), bidder.String()...))
}

// depositKey tracks native coin paid by a bidder.
func depositKey(auctionID string, bidder sdk.Address) string {
	return string(append(scopedKey(kDeposit, auctionID, len(bidder)), bidder.String()...))
}

// claimKey appends the schedule time so each slot is its own flag.
func claimKey(auctionID string, bidder sdk.Address, scheduleTime int64) string {
	buf := scopedKey(kClaim, auctionID, len(bidder)+9)
	buf = append(buf, bidder.String()...)
	buf = append(buf, 0x00)
	buf = packU64LE(uint64(scheduleTime), buf)
	return string(buf)
}

// auctionPurseKey stores the escrow purse reference of a native auction.
func auctionPurseKey(auctionID string) string {
	buf := make([]byte, 0, 1+len(auctionID))
	buf = append(buf, kAuctionPurse)
	buf = append(buf, auctionID...)
	return string(buf)
}

// adminKey flags an address as contract admin.
func adminKey(addr sdk.Address) string {
	buf := make([]byte, 0, 1+len(addr))
	buf = append(buf, kAdmin)
	buf = append(buf, addr.String()...)
	return string(buf)
}
