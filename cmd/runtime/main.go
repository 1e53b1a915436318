package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/hxuan190/evm-quote-engine/internal/adapters/persistence"
	"github.com/hxuan190/evm-quote-engine/internal/aggregator"
	"github.com/hxuan190/evm-quote-engine/internal/aggregator/adapters/blockchain"
	"github.com/hxuan190/evm-quote-engine/internal/common"
	"github.com/hxuan190/evm-quote-engine/internal/config"
	"github.com/hxuan190/evm-quote-engine/internal/http"
	"github.com/hxuan190/evm-quote-engine/internal/registry"
	"github.com/hxuan190/evm-quote-engine/internal/telemetry"
)

// @title EVM Quote Engine API
// @version 1.0
// @description Swap quotes and multi-hop routing over Uniswap-V2 style pairs on Sepolia and Scroll Sepolia.
// @description
// @description ## - Features
// @description - **Direct and two-hop routing** through a per-chain whitelist of intermediaries
// @description - **Price impact** against the cumulative mid price, with severity warnings
// @description - **Fee in USD** from the on-chain oracle
// @description - **Unsigned swap calldata** with an approve call when the allowance is short
// @description
// @description ## - Usage Tips
// @description - Amounts are human-readable and scaled by the token's decimals
// @description - Tokens may be given by address or by symbol
// @description - Default slippage is 50 bps (0.5%)
// @description - Swaps expire 20 minutes after they are built
// @BasePath /
// @schemes http https
// @tag.name quote
// @tag.description Swap quotes with price impact analysis and routing information
// @tag.name swap
// @tag.description Unsigned swap transactions ready for signing
// @tag.name registry
// @tag.description Supported chains, tokens and pairs

type app struct {
	general   *config.GeneralConfig
	rpc       *config.RPCConfig
	quote     *config.QuoteConfig
	storage   *config.StorageConfig
	telemetry *config.TelemetryConfig

	registry *registry.Registry
	reader   *blockchain.EthReader
	history  *persistence.Storage
	svc      *aggregator.Service

	shutdownTracing telemetry.ShutdownFunc
}

// setup loads configuration and wires the engine. withHistory opens the quote store.
func setup(ctx context.Context, withHistory bool) (*app, error) {
	a := &app{
		general:   &config.GeneralConfig{},
		rpc:       &config.RPCConfig{},
		quote:     &config.QuoteConfig{},
		storage:   &config.StorageConfig{},
		telemetry: &config.TelemetryConfig{},
	}
	if err := config.Load(a.general, a.rpc, a.quote, a.storage, a.telemetry); err != nil {
		return nil, err
	}
	common.InitLogger(a.general.LogLevel, a.general.Env)

	shutdown, err := telemetry.Setup(ctx, a.telemetry, a.general.Env)
	if err != nil {
		return nil, err
	}
	a.shutdownTracing = shutdown

	a.registry, err = registry.Load(a.quote.RegistryPath)
	if err != nil {
		return nil, err
	}

	for _, id := range a.registry.SupportedChains() {
		if _, ok := a.rpc.URLs[id]; !ok {
			log.Warn().Uint64("chainId", id).Msg("no RPC_URL configured, quotes on this chain will fail")
		}
	}

	a.reader, err = blockchain.NewEthReader(ctx, a.rpc)
	if err != nil {
		return nil, err
	}

	var history aggregator.HistoryStore
	if withHistory && a.storage.HistoryEnabled {
		a.history, err = persistence.NewStorage(a.storage.DBPath, a.storage.HistoryLimit)
		if err != nil {
			a.reader.Close()
			return nil, err
		}
		history = a.history
	}

	a.svc = aggregator.NewService(a.registry, a.reader, a.quote, history)

	log.Info().
		Interface("chains", a.registry.SupportedChains()).
		Bool("history", history != nil).
		Msg("quote engine ready")
	return a, nil
}

func (a *app) close() {
	a.svc.Stop()
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close quote store")
		}
	}
	a.reader.Close()
	if err := a.shutdownTracing(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to flush traces")
	}
}

func serve(c *cli.Context) error {
	a, err := setup(c.Context, true)
	if err != nil {
		return err
	}
	defer a.close()

	httpSvc, err := http.NewHTTPService(a.general, a.svc)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSvc.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-c.Context.Done():
	}

	log.Info().Msg("Shutting down services...")
	if err := httpSvc.Stop(); err != nil {
		return err
	}
	log.Info().Msg("Shutdown complete")
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cliApp := &cli.App{
		Name:  "quote-engine",
		Usage: "swap quotes and multi-hop routing for Uniswap-V2 style pairs",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			quoteCommand(),
			tokensCommand(),
			watchCommand(),
		},
		DefaultCommand: "serve",
	}

	err := cliApp.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
