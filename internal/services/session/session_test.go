package session

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

const (
	tokenA = "0xE91d02E66a9152Fee1BC79c1830121F6507a4F6D"
	tokenB = "0xBAcDBe38Df8421d0AA90262BEB1C20d32a634fe7"
)

// stubQuoter echoes the requested amount as AmountOut. Delays are keyed by amount.
type stubQuoter struct {
	mu     sync.Mutex
	calls  []domain.QuoteRequest
	delays map[string]time.Duration
	errs   map[string]error
}

func newStubQuoter() *stubQuoter {
	return &stubQuoter{
		delays: make(map[string]time.Duration),
		errs:   make(map[string]error),
	}
}

func (q *stubQuoter) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error) {
	q.mu.Lock()
	q.calls = append(q.calls, req)
	delay := q.delays[req.AmountIn]
	err := q.errs[req.AmountIn]
	q.mu.Unlock()

	if delay > 0 {
		// Ignore cancellation so superseded results still arrive late.
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	out, _ := new(big.Int).SetString(req.AmountIn, 10)
	return &domain.QuoteResult{ChainID: req.ChainID, AmountOut: out, AmountOutFormatted: req.AmountIn}, nil
}

func (q *stubQuoter) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

func (q *stubQuoter) lastCall() domain.QuoteRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls[len(q.calls)-1]
}

func input(amount string) Input {
	return Input{ChainID: 11155111, TokenIn: tokenA, TokenOut: tokenB, AmountIn: amount}
}

func waitSettled(t *testing.T, s *Session) State {
	t.Helper()
	var st State
	require.Eventually(t, func() bool {
		st = s.State()
		return st.Status == StatusSettled
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestIdleInputsNeverQuote(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(0))
	defer s.Close()

	for _, in := range []Input{
		input("0"),
		input(""),
		input("   "),
		input("abc"),
		input("-5"),
		{ChainID: 11155111, TokenIn: tokenA, AmountIn: "1"},
	} {
		s.Update(in)
		st := s.State()
		require.Equal(t, StatusIdle, st.Status)
		require.Nil(t, st.Quote)
		require.NoError(t, st.Err)
	}

	time.Sleep(30 * time.Millisecond)
	require.Zero(t, q.callCount())
}

func TestDebounceCoalescesRapidUpdates(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(40*time.Millisecond))
	defer s.Close()

	s.Update(input("1"))
	s.Update(input("12"))
	s.Update(input("123"))
	require.True(t, s.Pending())

	st := waitSettled(t, s)
	require.Equal(t, "123", st.Quote.AmountOutFormatted)
	require.Equal(t, 1, q.callCount())
	require.False(t, s.Pending())
}

func TestIdenticalFingerprintIsSkipped(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(0))
	defer s.Close()

	s.Update(input("5"))
	waitSettled(t, s)

	s.Update(input("5"))
	s.Update(input(" 5 "))
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, q.callCount())

	s.Refetch()
	require.Eventually(t, func() bool { return q.callCount() == 2 }, time.Second, 5*time.Millisecond)
	waitSettled(t, s)
}

func TestRefetchBypassesDebounce(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(time.Hour))
	defer s.Close()

	s.Update(input("7"))
	require.Equal(t, StatusIdle, s.State().Status)

	s.Refetch()
	st := waitSettled(t, s)
	require.Equal(t, "7", st.Quote.AmountOutFormatted)
}

func TestLastRequestWins(t *testing.T) {
	q := newStubQuoter()
	q.delays["1"] = 150 * time.Millisecond
	s := New(q, WithDebounce(0))
	defer s.Close()

	s.Update(input("1"))
	require.Eventually(t, func() bool { return q.callCount() == 1 }, time.Second, time.Millisecond)
	s.Update(input("2"))

	st := waitSettled(t, s)
	require.Equal(t, "2", st.Quote.AmountOutFormatted)

	// The slow first response lands later and must not replace the settled result.
	time.Sleep(200 * time.Millisecond)
	st = s.State()
	require.Equal(t, StatusSettled, st.Status)
	require.Equal(t, "2", st.Quote.AmountOutFormatted)
}

func TestGoingIdleDiscardsInFlight(t *testing.T) {
	q := newStubQuoter()
	q.delays["3"] = 80 * time.Millisecond
	s := New(q, WithDebounce(0))
	defer s.Close()

	s.Update(input("3"))
	require.Eventually(t, func() bool { return s.State().Status == StatusLoading }, time.Second, time.Millisecond)
	s.Update(input("0"))

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, StatusIdle, s.State().Status)

	// Idle clears the fingerprint, so the same input quotes again.
	s.Update(input("3"))
	waitSettled(t, s)
	require.Equal(t, 2, q.callCount())
}

func TestSetChainClearsAndRequotes(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.Update(input("9"))
	waitSettled(t, s)

	s.SetChain(534351)
	st := s.State()
	require.Equal(t, StatusIdle, st.Status)
	require.Nil(t, st.Quote)

	st = waitSettled(t, s)
	require.EqualValues(t, 534351, st.Quote.ChainID)
	require.EqualValues(t, 534351, q.lastCall().ChainID)
}

func TestUpdateOnNewChainClearsImmediately(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(200*time.Millisecond))
	defer s.Close()

	s.Update(input("9"))
	s.Refetch()
	waitSettled(t, s)

	in := input("9")
	in.ChainID = 534351
	s.Update(in)
	st := s.State()
	require.Equal(t, StatusIdle, st.Status)
	require.Nil(t, st.Quote)
	require.Empty(t, st.Fingerprint)
	require.True(t, s.Pending())

	st = waitSettled(t, s)
	require.EqualValues(t, 534351, st.Quote.ChainID)
	require.EqualValues(t, 534351, q.lastCall().ChainID)
}

func TestErrorsSettleAndInvalidAmountIdles(t *testing.T) {
	q := newStubQuoter()
	q.errs["4"] = domain.ErrNoRouteFound
	q.errs["0.0000001"] = domain.ErrInvalidAmount
	s := New(q, WithDebounce(0))
	defer s.Close()

	s.Update(input("4"))
	st := waitSettled(t, s)
	require.True(t, errors.Is(st.Err, domain.ErrNoRouteFound))
	require.Nil(t, st.Quote)

	s.Update(input("0.0000001"))
	require.Eventually(t, func() bool {
		st := s.State()
		return st.Status == StatusIdle && q.callCount() == 2
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.State().Err)
}

func TestSubscribeReceivesLatestState(t *testing.T) {
	q := newStubQuoter()
	s := New(q, WithDebounce(0))

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()
	require.Equal(t, StatusIdle, (<-ch).Status)

	s.Update(input("8"))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			if st.Status == StatusSettled {
				require.Equal(t, "8", st.Quote.AmountOutFormatted)
				s.Close()
				_, open := <-ch
				require.False(t, open)
				return
			}
		case <-deadline:
			t.Fatal("no settled state received")
		}
	}
}
