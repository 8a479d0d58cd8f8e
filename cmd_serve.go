package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"okinoko_ido/contract"
	"okinoko_ido/gateway"
	"okinoko_ido/sdk"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract over HTTP",
	Long: `Opens the state database and serves contract calls on the configured
listen address. On a fresh database init is called first with the owner,
treasury and fee settings from the config file.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	host, closeFn, err := openHost()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	if err := bootstrap(ctx, host); err != nil {
		return err
	}

	handler := gateway.NewHandler(host, sdk.Address(cfg.Contract.Address), logger.Named("gateway"))
	srv := &http.Server{
		Addr:         cfg.HTTP.Listen,
		Handler:      gateway.NewRouter(handler),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// bootstrap calls init when the config names an owner. A database that is
// already initialized is left alone.
func bootstrap(ctx context.Context, host *contract.Host) error {
	cc := cfg.Contract
	if cc.Owner == "" {
		return nil
	}
	treasury := cc.TreasuryWallet
	if treasury == "" {
		treasury = cc.Owner
	}

	out := jwriter.Writer{}
	out.RawString(`{"treasury_wallet":`)
	out.String(treasury)
	out.RawString(`,"fee_denominator":`)
	out.Uint64(cc.FeeDenominator)
	out.RawString(`,"public_creation":`)
	out.Bool(cc.PublicAuctionCreation)
	if cc.DefaultMerkleRoot != "" {
		out.RawString(`,"default_merkle_root":`)
		out.String(cc.DefaultMerkleRoot)
	}
	out.RawByte('}')
	payload, err := out.BuildBytes()
	if err != nil {
		return err
	}

	env := sdk.Env{
		ContractID: sdk.Address(cc.Address),
		TxID:       uuid.NewString(),
		Timestamp:  time.Now().Unix(),
		Sender:     sdk.Address(cc.Owner),
	}
	receipt, err := host.Execute(ctx, env, "init", payload)
	if err != nil {
		return err
	}
	switch {
	case receipt.Success:
		logger.Info("contract initialized", zap.String("owner", cc.Owner), zap.String("treasury", treasury))
	case receipt.ErrCode == contract.ErrAlreadyInitialized.Code:
		logger.Debug("contract already initialized")
	default:
		return fmt.Errorf("init: %s", receipt.Err)
	}
	return nil
}
