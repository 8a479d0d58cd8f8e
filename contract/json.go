package contract

import (
	"fmt"
	"strconv"

	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/holiman/uint256"

	"okinoko_ido/sdk"
)

// Payloads are JSON objects. Amounts travel as decimal strings because they
// do not fit a JSON number; times are unix seconds.

// decodeJSON runs fn over data and folds lexer errors into ErrInvalidArgument.
func decodeJSON(data []byte, fn func(in *jlexer.Lexer)) error {
	if len(data) == 0 {
		return ErrInvalidArgument.With("payload missing")
	}
	in := jlexer.Lexer{Data: data}
	fn(&in)
	in.Consumed()
	if err := in.Error(); err != nil {
		return ErrInvalidArgument.With("payload: %v", err)
	}
	return nil
}

// readObject walks one JSON object, handing every non-null member to field.
func readObject(in *jlexer.Lexer, field func(key string)) {
	if in.IsNull() {
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		field(key)
		in.WantComma()
	}
	in.Delim('}')
}

func readAmount(in *jlexer.Lexer, field string) *uint256.Int {
	s := in.String()
	if !in.Ok() {
		return nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		in.AddError(fmt.Errorf("%s: %w", field, err))
		return nil
	}
	return v
}

func readAmountMap(in *jlexer.Lexer, field string) map[sdk.Address]*uint256.Int {
	out := map[sdk.Address]*uint256.Int{}
	in.Delim('{')
	for !in.IsDelim('}') {
		addr := sdk.Address(in.String())
		in.WantColon()
		out[addr] = readAmount(in, field)
		in.WantComma()
	}
	in.Delim('}')
	return out
}

func readSchedules(in *jlexer.Lexer) Schedules {
	out := Schedules{}
	in.Delim('{')
	for !in.IsDelim('}') {
		k := in.String()
		in.WantColon()
		pct := in.Uint64()
		t, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			in.AddError(fmt.Errorf("schedule time %q: %w", k, err))
		}
		out[t] = pct
		in.WantComma()
	}
	in.Delim('}')
	return out
}

// readBidding accepts {"native":{"price":"5"}} or {"erc20s":{"<token>":"<price>"}}.
func readBidding(in *jlexer.Lexer) BiddingToken {
	var b BiddingToken
	seen := 0
	readObject(in, func(key string) {
		switch key {
		case "native":
			seen++
			b.Kind = BiddingNative
			readObject(in, func(k string) {
				if k == "price" {
					b.NativePrice = readAmount(in, "native price")
					return
				}
				in.SkipRecursive()
			})
		case "erc20s":
			seen++
			b.Kind = BiddingERC20s
			b.PriceTable = readAmountMap(in, "price table")
		default:
			in.SkipRecursive()
		}
	})
	if seen != 1 {
		in.AddError(fmt.Errorf("bidding_token must name exactly one of native, erc20s"))
	}
	return b
}

// readProof accepts [["<sibling hex>", side], ...].
func readProof(in *jlexer.Lexer) []ProofStep {
	var out []ProofStep
	in.Delim('[')
	for !in.IsDelim(']') {
		in.Delim('[')
		sibling := in.String()
		in.WantComma()
		side := in.Uint8()
		in.WantComma()
		in.Delim(']')
		out = append(out, ProofStep{Sibling: sibling, Side: ProofSide(side)})
		in.WantComma()
	}
	in.Delim(']')
	return out
}

func readAddressPtr(in *jlexer.Lexer) *sdk.Address {
	a := sdk.Address(in.String())
	return &a
}

// -----------------------------------------------------------------------------
// Entry point payloads
// -----------------------------------------------------------------------------

func DecodeInitArgs(data []byte) (*InitArgs, error) {
	args := &InitArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "treasury_wallet":
				args.TreasuryWallet = sdk.Address(in.String())
			case "fee_denominator":
				args.FeeDenominator = in.Uint64()
			case "default_merkle_root":
				args.DefaultMerkleRoot = in.String()
			case "public_creation":
				args.PublicCreation = in.Bool()
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeCreateAuctionArgs(data []byte) (*CreateAuctionArgs, error) {
	args := &CreateAuctionArgs{}
	biddingSet := false
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "id":
				args.ID = in.String()
			case "info":
				args.Info = in.String()
			case "start_time":
				args.StartTime = in.Int64()
			case "end_time":
				args.EndTime = in.Int64()
			case "open_time":
				args.OpenTime = in.Int64()
			case "auction_token":
				args.AuctionToken = sdk.Address(in.String())
			case "token_price":
				args.TokenPrice = readAmount(in, "token_price")
			case "token_capacity":
				args.TokenCapacity = readAmount(in, "token_capacity")
			case "bidding_token":
				args.Bidding = readBidding(in)
				biddingSet = true
			case "fee_numerator":
				args.FeeNumerator = in.Uint64()
			case "schedules":
				args.Schedules = readSchedules(in)
			case "merkle_root":
				root := in.String()
				args.MerkleRoot = &root
			case "tiers":
				args.Tiers = readAmountMap(in, "tiers")
			default:
				in.SkipRecursive()
			}
		})
	})
	if err == nil && !biddingSet {
		err = ErrInvalidArgument.With("bidding_token required")
	}
	return args, err
}

func DecodeCreateOrderArgs(data []byte) (*CreateOrderArgs, error) {
	args := &CreateOrderArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "proof":
				args.Proof = readProof(in)
			case "amount":
				args.Amount = readAmount(in, "amount")
			case "token":
				args.PayToken = readAddressPtr(in)
			case "tier":
				args.Tier = readAmount(in, "tier")
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeAuctionArgs(data []byte) (*AuctionArgs, error) {
	args := &AuctionArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			if key == "auction_id" {
				args.AuctionID = in.String()
				return
			}
			in.SkipRecursive()
		})
	})
	return args, err
}

func DecodeClaimArgs(data []byte) (*ClaimArgs, error) {
	args := &ClaimArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "schedule_time":
				args.ScheduleTime = in.Int64()
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeSetMerkleRootArgs(data []byte) (*SetMerkleRootArgs, error) {
	args := &SetMerkleRootArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "merkle_root":
				args.Root = in.String()
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeSetDefaultMerkleRootArgs(data []byte) (*SetDefaultMerkleRootArgs, error) {
	args := &SetDefaultMerkleRootArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			if key == "merkle_root" {
				args.Root = in.String()
				return
			}
			in.SkipRecursive()
		})
	})
	return args, err
}

func DecodeSetTiersArgs(data []byte) (*SetTiersArgs, error) {
	args := &SetTiersArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "tiers":
				args.Tiers = readAmountMap(in, "tiers")
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeSetTierArgs(data []byte) (*SetTierArgs, error) {
	args := &SetTierArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "bidder":
				args.Bidder = sdk.Address(in.String())
			case "tier":
				args.Tier = readAmount(in, "tier")
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeSetCSPRPriceArgs(data []byte) (*SetCSPRPriceArgs, error) {
	args := &SetCSPRPriceArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "price":
				args.Price = readAmount(in, "price")
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeSetTreasuryWalletArgs(data []byte) (*SetTreasuryWalletArgs, error) {
	args := &SetTreasuryWalletArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			if key == "treasury_wallet" {
				args.Wallet = sdk.Address(in.String())
				return
			}
			in.SkipRecursive()
		})
	})
	return args, err
}

func DecodeSetFeeDenominatorArgs(data []byte) (*SetFeeDenominatorArgs, error) {
	args := &SetFeeDenominatorArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			if key == "fee_denominator" {
				args.Value = in.Uint64()
				return
			}
			in.SkipRecursive()
		})
	})
	return args, err
}

func DecodeAdminArgs(data []byte) (*AdminArgs, error) {
	args := &AdminArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			if key == "admin" {
				args.Admin = sdk.Address(in.String())
				return
			}
			in.SkipRecursive()
		})
	})
	return args, err
}

func DecodeChangeTimeSchedulesArgs(data []byte) (*ChangeTimeSchedulesArgs, error) {
	args := &ChangeTimeSchedulesArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "start_time":
				args.StartTime = in.Int64()
			case "end_time":
				args.EndTime = in.Int64()
			case "open_time":
				args.OpenTime = in.Int64()
			case "schedules":
				args.Schedules = readSchedules(in)
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeAddOrdersArgs(data []byte) (*AddOrdersArgs, error) {
	args := &AddOrdersArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "orders":
				args.Orders = readAmountMap(in, "orders")
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

func DecodeBidderQueryArgs(data []byte) (*BidderQueryArgs, error) {
	args := &BidderQueryArgs{}
	err := decodeJSON(data, func(in *jlexer.Lexer) {
		readObject(in, func(key string) {
			switch key {
			case "auction_id":
				args.AuctionID = in.String()
			case "bidder":
				args.Bidder = sdk.Address(in.String())
			case "schedule_time":
				args.ScheduleTime = in.Int64()
			default:
				in.SkipRecursive()
			}
		})
	})
	return args, err
}

// -----------------------------------------------------------------------------
// Query results
// -----------------------------------------------------------------------------

func writeAmountField(w *jwriter.Writer, name string, v *uint256.Int, first bool) {
	if !first {
		w.RawByte(',')
	}
	w.String(name)
	w.RawByte(':')
	w.String(zeroIfNil(v).Dec())
}

// EncodeAuctionJSON renders the record plus its status at now.
func EncodeAuctionJSON(a *Auction, now int64) []byte {
	w := jwriter.Writer{}
	w.RawString(`{"id":`)
	w.String(a.ID)
	w.RawString(`,"info":`)
	w.String(a.Info)
	w.RawString(`,"creator":`)
	w.String(a.Creator.String())
	w.RawString(`,"status":`)
	w.String(a.StatusAt(now).String())
	w.RawString(`,"created_time":`)
	w.Int64(a.CreatedTime)
	w.RawString(`,"start_time":`)
	w.Int64(a.StartTime)
	w.RawString(`,"end_time":`)
	w.Int64(a.EndTime)
	w.RawString(`,"open_time":`)
	w.Int64(a.OpenTime)
	w.RawString(`,"auction_token":`)
	w.String(a.AuctionToken.String())
	writeAmountField(&w, "token_price", a.TokenPrice, false)
	writeAmountField(&w, "token_capacity", a.TokenCapacity, false)

	w.RawString(`,"bidding_token":{`)
	switch a.Bidding.Kind {
	case BiddingNative:
		w.RawString(`"native":{`)
		if a.Bidding.NativePrice != nil {
			writeAmountField(&w, "price", a.Bidding.NativePrice, true)
		}
		w.RawByte('}')
	case BiddingERC20s:
		w.RawString(`"erc20s":{`)
		for i, tok := range a.Bidding.sortedTokens() {
			writeAmountField(&w, tok.String(), a.Bidding.PriceTable[tok], i == 0)
		}
		w.RawByte('}')
	}
	w.RawByte('}')

	w.RawString(`,"fee_numerator":`)
	w.Uint64(a.FeeNumerator)
	w.RawString(`,"schedules":{`)
	for i, t := range a.Schedules.sortedTimes() {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(strconv.FormatInt(t, 10))
		w.RawByte(':')
		w.Uint64(a.Schedules[t])
	}
	w.RawByte('}')
	if a.MerkleRoot != nil {
		w.RawString(`,"merkle_root":`)
		w.String(*a.MerkleRoot)
	}
	writeAmountField(&w, "sold_amount", a.SoldAmount, false)
	w.RawString(`,"total_participants":`)
	w.Uint64(a.TotalParticipants)
	writeAmountField(&w, "unlocked_amount", a.UnlockedAmount, false)
	w.RawByte('}')
	b, _ := w.BuildBytes()
	return b
}

// EncodeConfigJSON renders the contract configuration.
func EncodeConfigJSON(cfg *ContractConfig) []byte {
	w := jwriter.Writer{}
	w.RawString(`{"owner":`)
	w.String(cfg.Owner.String())
	w.RawString(`,"treasury_wallet":`)
	w.String(cfg.Treasury.String())
	w.RawString(`,"fee_denominator":`)
	w.Uint64(cfg.FeeDenominator)
	w.RawString(`,"public_creation":`)
	w.Bool(cfg.AuctionCreationPublic)
	w.RawString(`,"default_merkle_root":`)
	w.String(cfg.DefaultMerkleRoot)
	w.RawByte('}')
	b, _ := w.BuildBytes()
	return b
}

// encodeAmountResult renders {"<name>":"<amount>"}.
func encodeAmountResult(name string, v *uint256.Int) []byte {
	w := jwriter.Writer{}
	w.RawByte('{')
	writeAmountField(&w, name, v, true)
	w.RawByte('}')
	b, _ := w.BuildBytes()
	return b
}

func encodeBoolResult(name string, v bool) []byte {
	w := jwriter.Writer{}
	w.RawByte('{')
	w.String(name)
	w.RawByte(':')
	w.Bool(v)
	w.RawByte('}')
	b, _ := w.BuildBytes()
	return b
}

// EncodeProofJSON renders a proof in the shape create_order expects.
func EncodeProofJSON(proof []ProofStep) []byte {
	w := jwriter.Writer{}
	w.RawByte('[')
	for i, step := range proof {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawByte('[')
		w.String(step.Sibling)
		w.RawByte(',')
		w.Uint8(uint8(step.Side))
		w.RawByte(']')
	}
	w.RawByte(']')
	b, _ := w.BuildBytes()
	return b
}
