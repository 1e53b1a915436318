// Package session drives quote requests from changing user input. It debounces input,
// drops requests whose fingerprint has not changed, and only publishes the result of the
// most recently issued request.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
	"github.com/hxuan190/evm-quote-engine/internal/services"
)

const (
	SESSION_SERVICE = "quote-session"

	DefaultDebounce = 300 * time.Millisecond
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSettled Status = "settled"
)

// Quoter is satisfied by router.Quoter and router.CachedQuoter.
type Quoter interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error)
}

type Input struct {
	ChainID     domain.ChainID
	TokenIn     string
	TokenOut    string
	AmountIn    string
	SlippageBps *uint32
}

func (in Input) request() domain.QuoteRequest {
	return domain.QuoteRequest{
		ChainID:     in.ChainID,
		TokenIn:     in.TokenIn,
		TokenOut:    in.TokenOut,
		AmountIn:    in.AmountIn,
		SlippageBps: in.SlippageBps,
	}
}

// quotable reports whether the input can produce a quote at all. Missing tokens and
// empty, malformed or non-positive amounts keep the session idle.
func (in Input) quotable() bool {
	if strings.TrimSpace(in.TokenIn) == "" || strings.TrimSpace(in.TokenOut) == "" {
		return false
	}
	amount := strings.TrimSpace(in.AmountIn)
	if amount == "" {
		return false
	}
	d, err := decimal.NewFromString(amount)
	return err == nil && d.Sign() > 0
}

// State is a snapshot of the session. In StatusSettled exactly one of Quote and Err is set.
type State struct {
	Status      Status
	Quote       *domain.QuoteResult
	Err         error
	Fingerprint string
	Generation  uint64
	UpdatedAt   time.Time
}

type Option func(*Session)

// WithDebounce sets the delay between the last input change and the request. Zero issues
// requests immediately.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithQuoteTimeout bounds each quote computation. Zero means no deadline.
func WithQuoteTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.quoteTimeout = d
	}
}

type Session struct {
	quoter       Quoter
	debounce     time.Duration
	quoteTimeout time.Duration
	logger       *services.ServiceLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu              sync.Mutex
	input           Input
	state           State
	lastFingerprint string
	timer           *time.Timer
	inflightCancel  context.CancelFunc
	subscribers     map[int]chan State
	nextSubID       int
	closed          bool

	generation atomic.Uint64
}

func New(quoter Quoter, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		quoter:      quoter,
		debounce:    DefaultDebounce,
		ctx:         ctx,
		cancel:      cancel,
		state:       State{Status: StatusIdle, UpdatedAt: time.Now()},
		subscribers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = services.NewServiceLogger(s)
	return s
}

func (s *Session) ID() string {
	return SESSION_SERVICE
}

// Update replaces the current input and schedules a quote when it changed. A new chain
// clears the previous result immediately, as SetChain does.
func (s *Session) Update(in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	chainChanged := s.input.ChainID != 0 && s.input.ChainID != in.ChainID
	s.input = in
	if chainChanged {
		s.goIdleLocked()
	}
	if !in.quotable() {
		s.goIdleLocked()
		return
	}

	fp := in.request().Fingerprint()
	if fp == s.lastFingerprint {
		metrics.SessionSkipped.Inc()
		return
	}
	s.scheduleLocked(s.debounce)
}

// SetChain switches chains. The previous result is cleared immediately and the current
// input is re-quoted on the new chain after the debounce.
func (s *Session) SetChain(chainID domain.ChainID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.input.ChainID = chainID
	s.goIdleLocked()
	if s.input.quotable() {
		s.scheduleLocked(s.debounce)
	}
}

// Refetch re-issues the current input immediately, even when its fingerprint is unchanged.
func (s *Session) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.input.quotable() {
		return
	}
	s.scheduleLocked(0)
}

// Pending reports whether a debounced request is waiting to be issued.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that always holds the latest state. Intermediate states may
// be coalesced when the reader is slow. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Close stops pending and in-flight work and closes all subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation.Add(1)
	s.stopLocked()
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Session) goIdleLocked() {
	s.generation.Add(1)
	s.stopLocked()
	s.lastFingerprint = ""
	s.setStateLocked(State{Status: StatusIdle})
}

func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.inflightCancel != nil {
		s.inflightCancel()
		s.inflightCancel = nil
	}
}

// scheduleLocked supersedes any pending or in-flight request and arms a new one.
func (s *Session) scheduleLocked(delay time.Duration) {
	gen := s.generation.Add(1)
	s.stopLocked()

	req := s.input.request()
	s.lastFingerprint = req.Fingerprint()
	s.timer = time.AfterFunc(delay, func() {
		s.run(gen, req)
	})
}

func (s *Session) run(gen uint64, req domain.QuoteRequest) {
	s.mu.Lock()
	if s.closed || gen != s.generation.Load() {
		s.mu.Unlock()
		return
	}
	var ctx context.Context
	var cancel context.CancelFunc
	if s.quoteTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, s.quoteTimeout)
	} else {
		ctx, cancel = context.WithCancel(s.ctx)
	}
	s.inflightCancel = cancel
	s.timer = nil
	fp := req.Fingerprint()
	s.setStateLocked(State{Status: StatusLoading, Fingerprint: fp, Generation: gen})
	s.mu.Unlock()

	quote, err := s.quoter.Quote(ctx, req)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation.Load() {
		metrics.SessionDiscarded.Inc()
		s.logger.Debug().Str("fingerprint", fp).Uint64("generation", gen).Msg("discarding superseded quote")
		return
	}
	s.inflightCancel = nil

	if errors.Is(err, domain.ErrInvalidAmount) {
		s.lastFingerprint = ""
		s.setStateLocked(State{Status: StatusIdle, Generation: gen})
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("fingerprint", fp).Msg("quote failed")
		s.setStateLocked(State{Status: StatusSettled, Err: err, Fingerprint: fp, Generation: gen})
		return
	}
	s.setStateLocked(State{Status: StatusSettled, Quote: quote, Fingerprint: fp, Generation: gen})
}

func (s *Session) setStateLocked(st State) {
	st.UpdatedAt = time.Now()
	s.state = st
	metrics.SessionTransitions.WithLabelValues(string(st.Status)).Inc()

	for _, ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}
