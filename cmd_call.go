package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"okinoko_ido/contract"
	"okinoko_ido/sdk"
)

var (
	callSender       string
	callTimestamp    int64
	callTxID         string
	callDepositPurse string
)

var callCmd = &cobra.Command{
	Use:   "call [entry] [payload]",
	Short: "Execute one entry point against the local database",
	Long: `Runs a single contract call and prints its receipt as JSON.

Example:
  okinoko-ido call create_order '{"auction_id":"ido-1","proof":[],"amount":"40","token":"hash-05dc"}' \
    --sender account-hash-b1dde2 --timestamp 1500`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

var auctionCmd = &cobra.Command{
	Use:   "auction [id]",
	Short: "Print an auction record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuction,
}

var entryPointsCmd = &cobra.Command{
	Use:   "entrypoints",
	Short: "List callable entry points",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range contract.EntryPoints() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	callCmd.Flags().StringVar(&callSender, "sender", "", "caller address (defaults to the configured owner)")
	callCmd.Flags().Int64Var(&callTimestamp, "timestamp", 0, "block time in unix seconds (defaults to now)")
	callCmd.Flags().StringVar(&callTxID, "tx", "", "transaction id (defaults to a random uuid)")
	callCmd.Flags().StringVar(&callDepositPurse, "deposit-purse", "", "purse carrying native coin for the call")
}

func callEnv(sender string) sdk.Env {
	env := sdk.Env{
		ContractID: sdk.Address(cfg.Contract.Address),
		TxID:       callTxID,
		Timestamp:  callTimestamp,
		Sender:     sdk.Address(sender),
	}
	if env.TxID == "" {
		env.TxID = uuid.NewString()
	}
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().Unix()
	}
	if callDepositPurse != "" {
		p := sdk.Purse(callDepositPurse)
		env.DepositPurse = &p
	}
	return env
}

func runCall(cmd *cobra.Command, args []string) error {
	host, closeFn, err := openHost()
	if err != nil {
		return err
	}
	defer closeFn()

	payload := "{}"
	if len(args) == 2 {
		payload = args[1]
	}
	sender := callSender
	if sender == "" {
		sender = cfg.Contract.Owner
	}

	receipt, err := host.Execute(cmd.Context(), callEnv(sender), args[0], []byte(payload))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(receipt); err != nil {
		return err
	}
	if !receipt.Success {
		return fmt.Errorf("%s rejected: %s", args[0], receipt.Err)
	}
	return nil
}

func runAuction(cmd *cobra.Command, args []string) error {
	host, closeFn, err := openHost()
	if err != nil {
		return err
	}
	defer closeFn()

	out := jwriter.Writer{}
	out.RawString(`{"auction_id":`)
	out.String(args[0])
	out.RawByte('}')
	payload, err := out.BuildBytes()
	if err != nil {
		return err
	}

	receipt, err := host.Execute(cmd.Context(), callEnv(cfg.Contract.Address), "get_auction", payload)
	if err != nil {
		return err
	}
	if !receipt.Success {
		return fmt.Errorf("get_auction: %s", receipt.Err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), receipt.Ret)
	return nil
}

var balanceCmd = &cobra.Command{
	Use:   "balance [token] [owner]",
	Short: "Print a token balance in base units and whole tokens",
	Args:  cobra.ExactArgs(2),
	RunE:  runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	host, closeFn, err := openHost()
	if err != nil {
		return err
	}
	defer closeFn()

	token, owner := sdk.Address(args[0]), sdk.Address(args[1])
	return host.View(cmd.Context(), func(l *sdk.KVLedger) error {
		dec, err := l.Decimals(token)
		if err != nil {
			return err
		}
		bal, err := l.BalanceOf(token, owner)
		if err != nil {
			return err
		}
		whole, err := decimal.NewFromString(bal.Dec())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", bal.Dec(), whole.Shift(-int32(dec)).String())
		return nil
	})
}
