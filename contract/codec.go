package contract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

var errUnexpectedEOF = errors.New("unexpected EOF")

type binWriter struct {
	buf bytes.Buffer
}

// newWriter spins up a fresh writer so we dont leak old bytes between encodes.
func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

// writeBool squashes bools into a single byte flag for deterministic payloads.
func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// writeUint64 writes big endian numbers so tooling can read them without guessing.
func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

// writeVarUint uses varints to keep counts and lens compact.
func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// writeString prefixes its length then dumps UTF-8 directly.
func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *binWriter) writeOptionalString(ptr *string) {
	if ptr == nil {
		w.writeBool(false)
		return
	}
	w.writeBool(true)
	w.writeString(*ptr)
}

func (w *binWriter) writeAddress(a sdk.Address) {
	w.writeString(a.String())
}

// writeU256 always takes 32 bytes; nil is stored as zero.
func (w *binWriter) writeU256(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	w.buf.Write(b[:])
}

func (w *binWriter) writeOptionalU256(v *uint256.Int) {
	if v == nil {
		w.writeBool(false)
		return
	}
	w.writeBool(true)
	w.writeU256(v)
}

type binReader struct {
	data []byte
	pos  int
}

// newReader wraps raw bytes so we can peek sequentially w/out copying.
func newReader(data []byte) *binReader {
	return &binReader{data: data}
}

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

func (r *binReader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

// readVarUint undoes the compact varint encoding for lengths/counts.
func (r *binReader) readVarUint() (uint64, error) {
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readString() (string, error) {
	n, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if uint64(len(r.data)-r.pos) < n {
		return "", errUnexpectedEOF
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *binReader) readOptionalString() (*string, error) {
	ok, err := r.readBool()
	if err != nil || !ok {
		return nil, err
	}
	s, err := r.readString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *binReader) readAddress() (sdk.Address, error) {
	s, err := r.readString()
	return sdk.Address(s), err
}

func (r *binReader) readU256() (*uint256.Int, error) {
	if r.pos+32 > len(r.data) {
		return nil, errUnexpectedEOF
	}
	v := new(uint256.Int).SetBytes32(r.data[r.pos : r.pos+32])
	r.pos += 32
	return v, nil
}

func (r *binReader) readOptionalU256() (*uint256.Int, error) {
	ok, err := r.readBool()
	if err != nil || !ok {
		return nil, err
	}
	return r.readU256()
}

// encodeBidding writes the variant tag first, then only that variant's data.
func encodeBidding(w *binWriter, b *BiddingToken) {
	w.buf.WriteByte(byte(b.Kind))
	switch b.Kind {
	case BiddingNative:
		w.writeOptionalU256(b.NativePrice)
	case BiddingERC20s:
		tokens := b.sortedTokens()
		w.writeVarUint(uint64(len(tokens)))
		for _, t := range tokens {
			w.writeAddress(t)
			w.writeU256(b.PriceTable[t])
		}
	}
}

func decodeBidding(r *binReader) (BiddingToken, error) {
	tag, err := r.readByte()
	if err != nil {
		return BiddingToken{}, err
	}
	switch BiddingKind(tag) {
	case BiddingNative:
		price, err := r.readOptionalU256()
		if err != nil {
			return BiddingToken{}, err
		}
		return NativeBidding(price), nil
	case BiddingERC20s:
		n, err := r.readVarUint()
		if err != nil {
			return BiddingToken{}, err
		}
		if n > MaxPriceTable {
			return BiddingToken{}, fmt.Errorf("price table too large: %d", n)
		}
		table := make(map[sdk.Address]*uint256.Int, n)
		for i := uint64(0); i < n; i++ {
			tok, err := r.readAddress()
			if err != nil {
				return BiddingToken{}, err
			}
			price, err := r.readU256()
			if err != nil {
				return BiddingToken{}, err
			}
			table[tok] = price
		}
		return ERC20Bidding(table), nil
	default:
		return BiddingToken{}, fmt.Errorf("unknown bidding kind %d", tag)
	}
}

// encodeSchedules writes entries sorted by unlock time so blobs are stable.
func encodeSchedules(w *binWriter, s Schedules) {
	times := s.sortedTimes()
	w.writeVarUint(uint64(len(times)))
	for _, t := range times {
		w.writeInt64(t)
		w.writeUint64(s[t])
	}
}

func decodeSchedules(r *binReader) (Schedules, error) {
	n, err := r.readVarUint()
	if err != nil {
		return nil, err
	}
	if n > MaxSchedules {
		return nil, fmt.Errorf("too many schedules: %d", n)
	}
	out := make(Schedules, n)
	for i := uint64(0); i < n; i++ {
		t, err := r.readInt64()
		if err != nil {
			return nil, err
		}
		pct, err := r.readUint64()
		if err != nil {
			return nil, err
		}
		out[t] = pct
	}
	return out, nil
}

// EncodeAuction serializes the whole record for storage.
func EncodeAuction(a *Auction) []byte {
	w := newWriter()
	w.writeString(a.ID)
	w.writeString(a.Info)
	w.writeAddress(a.Creator)
	w.writeInt64(a.CreatedTime)
	w.writeInt64(a.StartTime)
	w.writeInt64(a.EndTime)
	w.writeInt64(a.OpenTime)
	w.writeAddress(a.AuctionToken)
	w.writeU256(a.TokenPrice)
	w.writeU256(a.TokenCapacity)
	encodeBidding(w, &a.Bidding)
	w.writeUint64(a.FeeNumerator)
	encodeSchedules(w, a.Schedules)
	w.writeOptionalString(a.MerkleRoot)
	w.writeU256(a.SoldAmount)
	w.writeUint64(a.TotalParticipants)
	w.writeU256(a.UnlockedAmount)
	return w.bytes()
}

// DecodeAuction is the inverse of EncodeAuction.
func DecodeAuction(data []byte) (*Auction, error) {
	r := newReader(data)
	a := &Auction{}
	var err error
	if a.ID, err = r.readString(); err != nil {
		return nil, err
	}
	if a.Info, err = r.readString(); err != nil {
		return nil, err
	}
	if a.Creator, err = r.readAddress(); err != nil {
		return nil, err
	}
	if a.CreatedTime, err = r.readInt64(); err != nil {
		return nil, err
	}
	if a.StartTime, err = r.readInt64(); err != nil {
		return nil, err
	}
	if a.EndTime, err = r.readInt64(); err != nil {
		return nil, err
	}
	if a.OpenTime, err = r.readInt64(); err != nil {
		return nil, err
	}
	if a.AuctionToken, err = r.readAddress(); err != nil {
		return nil, err
	}
	if a.TokenPrice, err = r.readU256(); err != nil {
		return nil, err
	}
	if a.TokenCapacity, err = r.readU256(); err != nil {
		return nil, err
	}
	if a.Bidding, err = decodeBidding(r); err != nil {
		return nil, err
	}
	if a.FeeNumerator, err = r.readUint64(); err != nil {
		return nil, err
	}
	if a.Schedules, err = decodeSchedules(r); err != nil {
		return nil, err
	}
	if a.MerkleRoot, err = r.readOptionalString(); err != nil {
		return nil, err
	}
	if a.SoldAmount, err = r.readU256(); err != nil {
		return nil, err
	}
	if a.TotalParticipants, err = r.readUint64(); err != nil {
		return nil, err
	}
	if a.UnlockedAmount, err = r.readU256(); err != nil {
		return nil, err
	}
	if r.pos != len(r.data) {
		return nil, fmt.Errorf("trailing %d bytes after auction", len(r.data)-r.pos)
	}
	return a, nil
}
