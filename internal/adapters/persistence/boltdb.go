package persistence

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
)

const (
	QuotesBucketPrefix = "quotes-"

	DefaultDBPath       = "./data/quotes.db"
	DefaultHistoryLimit = 1000
)

type StoredQuote struct {
	ChainID            uint64   `json:"chainId"`
	TokenIn            string   `json:"tokenIn"`
	TokenInSymbol      string   `json:"tokenInSymbol"`
	TokenOut           string   `json:"tokenOut"`
	TokenOutSymbol     string   `json:"tokenOutSymbol"`
	AmountIn           string   `json:"amountIn"`
	AmountOut          string   `json:"amountOut"`
	AmountOutFormatted string   `json:"amountOutFormatted"`
	PriceImpactBps     int64    `json:"priceImpactBps"`
	FeeBps             int64    `json:"feeBps"`
	FeeUSD             string   `json:"feeUsd,omitempty"`
	MinReceived        string   `json:"minReceived"`
	SlippageBps        uint32   `json:"slippageBps"`
	Route              string   `json:"route"`
	Path               []string `json:"path"`
	Severity           string   `json:"severity"`
	QuotedAt           int64    `json:"quotedAt"`
}

// Storage keeps the most recent settled quotes per chain. Keys are the bucket sequence in
// big-endian so cursor order is insertion order.
type Storage struct {
	db     *bolt.DB
	dbPath string
	limit  int
}

func NewStorage(dbPath string, limit int) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	log.Info().Str("path", dbPath).Int("limit", limit).Msg("[quoteStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
		limit:  limit,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func bucketName(chainID domain.ChainID) []byte {
	return []byte(QuotesBucketPrefix + strconv.FormatUint(chainID, 10))
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// SaveQuote appends q to its chain's history and drops entries beyond the configured limit.
func (s *Storage) SaveQuote(q *domain.QuoteResult) error {
	data, err := sonic.Marshal(quoteToStored(q))
	if err != nil {
		metrics.HistoryWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(q.ChainID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return err
		}
		return prune(b, seq, uint64(s.limit))
	})
	if err != nil {
		metrics.HistoryWrites.WithLabelValues("error").Inc()
		log.Error().Err(err).Uint64("chainId", q.ChainID).Msg("[quoteStorage] failed to save quote")
		return err
	}

	metrics.HistoryWrites.WithLabelValues("ok").Inc()
	return nil
}

func prune(b *bolt.Bucket, seq, limit uint64) error {
	if seq <= limit {
		return nil
	}
	cutoff := seq - limit
	var stale [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil && binary.BigEndian.Uint64(k) <= cutoff; k, _ = c.Next() {
		stale = append(stale, append([]byte(nil), k...))
	}
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// RecentQuotes returns up to limit quotes for chainID, newest first.
func (s *Storage) RecentQuotes(chainID domain.ChainID, limit int) ([]StoredQuote, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	quotes := make([]StoredQuote, 0, min(limit, 64))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(chainID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(quotes) < limit; k, v = c.Prev() {
			var stored StoredQuote
			if err := sonic.Unmarshal(v, &stored); err != nil {
				log.Warn().Err(err).Uint64("seq", binary.BigEndian.Uint64(k)).Msg("[quoteStorage] failed to unmarshal quote, skipping")
				continue
			}
			quotes = append(quotes, stored)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read quotes: %w", err)
	}
	return quotes, nil
}

func (s *Storage) GetQuoteCount(chainID domain.ChainID) (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketName(chainID)); b != nil {
			count = b.Stats().KeyN
		}
		return nil
	})
	return count, err
}

func quoteToStored(q *domain.QuoteResult) *StoredQuote {
	return &StoredQuote{
		ChainID:            q.ChainID,
		TokenIn:            q.TokenIn.Address.Hex(),
		TokenInSymbol:      q.TokenIn.Symbol,
		TokenOut:           q.TokenOut.Address.Hex(),
		TokenOutSymbol:     q.TokenOut.Symbol,
		AmountIn:           bigString(q.AmountIn),
		AmountOut:          bigString(q.AmountOut),
		AmountOutFormatted: q.AmountOutFormatted,
		PriceImpactBps:     q.PriceImpactBps,
		FeeBps:             q.FeeBps,
		FeeUSD:             q.FeeUSD,
		MinReceived:        bigString(q.MinReceived),
		SlippageBps:        q.SlippageBps,
		Route:              q.Route,
		Path:               q.RoutePath.Strings(),
		Severity:           q.Severity,
		QuotedAt:           q.QuotedAt.UnixMilli(),
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
