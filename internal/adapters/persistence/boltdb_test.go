package persistence

import (
	"math/big"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

func newTestStorage(t *testing.T, limit int) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "quotes.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testQuote(chainID domain.ChainID, amountOut int64) *domain.QuoteResult {
	tokenIn := domain.TokenConfig{Address: common.HexToAddress("0x01"), Symbol: "vETH", Decimals: 18}
	tokenOut := domain.TokenConfig{Address: common.HexToAddress("0x02"), Symbol: "vUSDC", Decimals: 6}
	return &domain.QuoteResult{
		ChainID:        chainID,
		TokenIn:        tokenIn,
		TokenOut:       tokenOut,
		AmountIn:       big.NewInt(1_000_000_000_000_000_000),
		AmountOut:      big.NewInt(amountOut),
		MinReceived:    big.NewInt(amountOut - 1),
		PriceImpactBps: -128,
		FeeBps:         30,
		SlippageBps:    50,
		Route:          domain.RouteDirect,
		RoutePath:      domain.Path{tokenIn.Address, tokenOut.Address},
		QuotedAt:       time.UnixMilli(1_700_000_000_000),
	}
}

func TestSaveAndRecentNewestFirst(t *testing.T) {
	s := newTestStorage(t, 10)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, s.SaveQuote(testQuote(11155111, i*100)))
	}

	got, err := s.RecentQuotes(11155111, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "300", got[0].AmountOut)
	require.Equal(t, "200", got[1].AmountOut)
	require.Equal(t, "vETH", got[0].TokenInSymbol)
	require.Equal(t, int64(-128), got[0].PriceImpactBps)
	require.Len(t, got[0].Path, 2)
	require.Equal(t, int64(1_700_000_000_000), got[0].QuotedAt)
}

func TestHistoryIsPerChain(t *testing.T) {
	s := newTestStorage(t, 10)

	require.NoError(t, s.SaveQuote(testQuote(11155111, 100)))
	require.NoError(t, s.SaveQuote(testQuote(534351, 200)))

	got, err := s.RecentQuotes(534351, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "200", got[0].AmountOut)

	empty, err := s.RecentQuotes(1, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSavePrunesBeyondLimit(t *testing.T) {
	s := newTestStorage(t, 3)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, s.SaveQuote(testQuote(11155111, i)))
	}

	count, err := s.GetQuoteCount(11155111)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	got, err := s.RecentQuotes(11155111, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "5", got[0].AmountOut)
	require.Equal(t, "3", got[2].AmountOut)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.db")
	s, err := NewStorage(path, 10)
	require.NoError(t, err)
	require.NoError(t, s.SaveQuote(testQuote(11155111, 42)))
	require.NoError(t, s.Close())

	s, err = NewStorage(path, 10)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.RecentQuotes(11155111, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "42", got[0].AmountOut)
}

func TestConcurrentSavesAcrossChains(t *testing.T) {
	s := newTestStorage(t, 100)

	chains := []domain.ChainID{11155111, 534351}
	var wg sync.WaitGroup
	for _, chainID := range chains {
		for i := int64(1); i <= 20; i++ {
			wg.Add(1)
			go func(chainID domain.ChainID, out int64) {
				defer wg.Done()
				require.NoError(t, s.SaveQuote(testQuote(chainID, out)))
			}(chainID, i)
		}
	}
	wg.Wait()

	for _, chainID := range chains {
		count, err := s.GetQuoteCount(chainID)
		require.NoError(t, err)
		require.Equal(t, 20, count)
	}
}
