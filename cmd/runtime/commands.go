package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/http"
	"github.com/hxuan190/evm-quote-engine/internal/registry"
	"github.com/hxuan190/evm-quote-engine/internal/services/session"
)

var (
	chainFlag = &cli.Uint64Flag{
		Name:    "chain",
		Aliases: []string{"c"},
		Usage:   "chain id",
		Value:   registry.SepoliaChainID,
	}
	tokenInFlag = &cli.StringFlag{
		Name:     "in",
		Usage:    "input token address or symbol",
		Required: true,
	}
	tokenOutFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "output token address or symbol",
		Required: true,
	}
	slippageFlag = &cli.UintFlag{
		Name:  "slippage",
		Usage: "slippage tolerance in bps, defaults to QUOTE_DEFAULT_SLIPPAGE_BPS",
	}
)

func printJSON(v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func slippageFrom(c *cli.Context) *uint32 {
	if !c.IsSet(slippageFlag.Name) {
		return nil
	}
	bps := uint32(c.Uint(slippageFlag.Name))
	return &bps
}

// resolve maps a symbol to an address. Unknown references are returned unchanged so the
// quoter reports them.
func resolve(reg *registry.Registry, chainID domain.ChainID, ref string) string {
	if tok, ok := reg.ResolveToken(chainID, ref); ok {
		return tok.Address.Hex()
	}
	return ref
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "quote",
		Usage:     "price one swap and print it as JSON",
		ArgsUsage: "<amount>",
		Flags:     []cli.Flag{chainFlag, tokenInFlag, tokenOutFlag, slippageFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one amount argument", 2)
			}
			a, err := setup(c.Context, false)
			if err != nil {
				return err
			}
			defer a.close()

			chainID := c.Uint64(chainFlag.Name)
			quote, err := a.svc.Quote(c.Context, domain.QuoteRequest{
				ChainID:     chainID,
				TokenIn:     resolve(a.registry, chainID, c.String(tokenInFlag.Name)),
				TokenOut:    resolve(a.registry, chainID, c.String(tokenOutFlag.Name)),
				AmountIn:    c.Args().First(),
				SlippageBps: slippageFrom(c),
			})
			if err != nil {
				return err
			}
			return printJSON(http.NewQuoteResponse(quote))
		},
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "list the tokens of a chain",
		Flags: []cli.Flag{chainFlag},
		Action: func(c *cli.Context) error {
			reg, err := registry.Load(os.Getenv("REGISTRY_PATH"))
			if err != nil {
				return err
			}
			chainID := c.Uint64(chainFlag.Name)
			cfg, ok := reg.GetChainConfig(chainID)
			if !ok {
				return fmt.Errorf("chain %d: %w", chainID, domain.ErrChainNotSupported)
			}

			fmt.Printf("%s (%d)\n", cfg.Name, cfg.ID)
			for _, t := range reg.GetAllTokens(chainID) {
				fmt.Printf("  %-6s %s %2d\n", t.Symbol, t.Address.Hex(), t.Decimals)
			}
			fmt.Printf("intermediaries: %s\n", strings.Join(reg.GetIntermediaryTokens(chainID), ", "))
			return nil
		},
	}
}

type watchEvent struct {
	Status     session.Status `json:"status"`
	Generation uint64         `json:"generation"`
	AmountOut  string         `json:"amountOut,omitempty"`
	Route      string         `json:"route,omitempty"`
	ImpactBps  int64          `json:"priceImpactBps,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func toWatchEvent(st session.State) watchEvent {
	ev := watchEvent{Status: st.Status, Generation: st.Generation}
	if st.Quote != nil {
		ev.AmountOut = st.Quote.AmountOutFormatted
		ev.Route = st.Quote.Route
		ev.ImpactBps = st.Quote.PriceImpactBps
	}
	if st.Err != nil {
		ev.Error = st.Err.Error()
	}
	return ev
}

// watchCommand drives a quote session from stdin. Each line is an amount, "refetch", or
// "chain <id>".
func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "read amounts from stdin and print session state changes",
		Flags: []cli.Flag{chainFlag, tokenInFlag, tokenOutFlag, slippageFlag},
		Action: func(c *cli.Context) error {
			a, err := setup(c.Context, false)
			if err != nil {
				return err
			}
			defer a.close()

			s := a.svc.NewSession()
			defer s.Close()

			states, unsubscribe := s.Subscribe()
			defer unsubscribe()
			done := make(chan struct{})
			go func() {
				defer close(done)
				for st := range states {
					_ = printJSON(toWatchEvent(st))
				}
			}()

			inRef, outRef := c.String(tokenInFlag.Name), c.String(tokenOutFlag.Name)
			input := onChain(a.registry, session.Input{SlippageBps: slippageFrom(c)}, c.Uint64(chainFlag.Name), inRef, outRef)

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "refetch":
					s.Refetch()
				case strings.HasPrefix(line, "chain "):
					id, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, "chain ")), 10, 64)
					if err != nil {
						fmt.Fprintln(os.Stderr, "invalid chain id:", err)
						continue
					}
					input = onChain(a.registry, input, id, inRef, outRef)
					s.Update(input)
				default:
					input.AmountIn = line
					s.Update(input)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			waitForSettle(c.Context, s, 30*time.Second)
			unsubscribe()
			<-done
			return nil
		},
	}
}

// onChain moves the session input to chainID, resolving the token references against that
// chain's registry entries.
func onChain(reg *registry.Registry, in session.Input, chainID domain.ChainID, inRef, outRef string) session.Input {
	in.ChainID = chainID
	in.TokenIn = resolve(reg, chainID, inRef)
	in.TokenOut = resolve(reg, chainID, outRef)
	return in
}

func waitForSettle(ctx context.Context, s *session.Session, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if s.State().Status != session.StatusLoading && !s.Pending() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
