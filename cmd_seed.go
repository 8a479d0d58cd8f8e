package main

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"okinoko_ido/sdk"
)

// seed commands write ledger state directly. They exist for local networks
// and demos where no real token contracts are deployed.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bootstrap ledger state (tokens, balances, purses)",
}

var seedTokenCmd = &cobra.Command{
	Use:   "token [address] [decimals]",
	Short: "Register a token with its decimals",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dec, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return fmt.Errorf("decimals: %w", err)
		}
		return seed(cmd, func(l *sdk.KVLedger) error {
			token, err := contractAddress(args[0])
			if err != nil {
				return err
			}
			l.RegisterToken(token, uint8(dec))
			return nil
		})
	},
}

var seedMintCmd = &cobra.Command{
	Use:   "mint [token] [owner] [amount]",
	Short: "Credit token balance to an account",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := uint256.FromDecimal(args[2])
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		return seed(cmd, func(l *sdk.KVLedger) error {
			return l.Mint(sdk.Address(args[0]), sdk.Address(args[1]), amount)
		})
	},
}

var seedApproveCmd = &cobra.Command{
	Use:   "approve [token] [owner] [amount]",
	Short: "Approve the contract to spend an account's tokens",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := uint256.FromDecimal(args[2])
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		return seed(cmd, func(l *sdk.KVLedger) error {
			return l.Approve(sdk.Address(args[0]), sdk.Address(args[1]), sdk.Address(cfg.Contract.Address), amount)
		})
	},
}

var seedPurseCmd = &cobra.Command{
	Use:   "purse [owner] [name] [amount]",
	Short: "Create a purse for an account and fund it with native coin",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := uint256.FromDecimal(args[2])
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		return seed(cmd, func(l *sdk.KVLedger) error {
			p, err := l.CreatePurse(sdk.Address(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return l.FundPurse(p, amount)
		})
	},
}

func init() {
	seedCmd.AddCommand(seedTokenCmd, seedMintCmd, seedApproveCmd, seedPurseCmd)
}

func contractAddress(s string) (sdk.Address, error) {
	a := sdk.Address(s)
	if a.Type() != sdk.AddressTypeContract || !a.IsValid() {
		return "", fmt.Errorf("%q is not a contract address", s)
	}
	return a, nil
}

func seed(cmd *cobra.Command, fn func(l *sdk.KVLedger) error) error {
	host, closeFn, err := openHost()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := host.Seed(cmd.Context(), fn); err != nil {
		return err
	}
	logger.Info("ledger seeded", zap.String("command", cmd.CommandPath()), zap.Strings("args", cmd.Flags().Args()))
	return nil
}
