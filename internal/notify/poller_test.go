package notify_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sovereign-client/internal/dependencies/mocks"
	"github.com/mcoot/sovereign-client/internal/notify"
	"github.com/mcoot/sovereign-client/internal/storage/memory"
	"github.com/mcoot/sovereign-client/internal/testutil"
)

// fakeFetcher counts calls and returns a configurable result
type fakeFetcher struct {
	calls  atomic.Int32
	mu     sync.Mutex
	count  int
	err    error
	before func()
}

func (f *fakeFetcher) UnreadCount(ctx context.Context) (int, error) {
	f.calls.Add(1)
	f.mu.Lock()
	before, count, err := f.before, f.count, f.err
	f.mu.Unlock()
	if before != nil {
		before()
	}
	return count, err
}

func (f *fakeFetcher) set(count int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = count
	f.err = err
}

type PollerSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	fetcher *fakeFetcher
	store   *memory.Storage
	poller  *notify.Poller
}

func TestPollerSuite(t *testing.T) {
	suite.Run(t, new(PollerSuite))
}

func (s *PollerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.fetcher = &fakeFetcher{count: 2}
	s.store = memory.NewWithToken("tok")
	s.poller = notify.New(s.fetcher, s.store, s.clock, notify.Config{}, testutil.NopLogger())
}

func (s *PollerSuite) TearDownTest() {
	s.poller.Stop()
}

func (s *PollerSuite) waitForCalls(n int32) {
	s.Eventually(func() bool { return s.fetcher.calls.Load() >= n }, time.Second, 5*time.Millisecond)
}

func (s *PollerSuite) TestStartFetchesImmediately() {
	s.poller.Start()
	s.waitForCalls(1)
	s.Eventually(func() bool { return s.poller.Unread() == 2 }, time.Second, 5*time.Millisecond)
}

func (s *PollerSuite) TestFetchesOnEveryInterval() {
	s.poller.Start()
	s.waitForCalls(1)

	s.fetcher.set(5, nil)
	s.clock.Advance(notify.DefaultInterval)
	s.waitForCalls(2)
	s.Eventually(func() bool { return s.poller.Unread() == 5 }, time.Second, 5*time.Millisecond)

	s.clock.Advance(notify.DefaultInterval)
	s.waitForCalls(3)
}

func (s *PollerSuite) TestNoTickBeforeInterval() {
	s.poller.Start()
	s.waitForCalls(1)

	s.clock.Advance(notify.DefaultInterval - time.Second)
	time.Sleep(20 * time.Millisecond)
	s.Equal(int32(1), s.fetcher.calls.Load())
}

func (s *PollerSuite) TestStartIsIdempotent() {
	s.poller.Start()
	s.poller.Start()
	s.poller.Start()

	s.Equal(1, s.clock.ActiveTickers())
	s.waitForCalls(1)
	time.Sleep(20 * time.Millisecond)
	s.Equal(int32(1), s.fetcher.calls.Load(), "one immediate fetch, not three")
}

func (s *PollerSuite) TestStartWithoutTokenDoesNothing() {
	s.Require().NoError(s.store.Clear(context.Background()))
	s.poller.Start()

	s.False(s.poller.Running())
	s.Equal(0, s.clock.ActiveTickers())
	s.clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	s.Equal(int32(0), s.fetcher.calls.Load())
}

func (s *PollerSuite) TestNoFetchAfterStop() {
	s.poller.Start()
	s.waitForCalls(1)

	s.poller.Stop()
	calls := s.fetcher.calls.Load()

	s.False(s.poller.Running())
	s.Equal(0, s.clock.ActiveTickers())
	for i := 0; i < 5; i++ {
		s.clock.Advance(notify.DefaultInterval)
	}
	time.Sleep(20 * time.Millisecond)
	s.Equal(calls, s.fetcher.calls.Load())
	s.Equal(0, s.poller.Unread())
}

func (s *PollerSuite) TestFailuresAreSwallowedAndPollingContinues() {
	s.fetcher.set(0, errors.New("boom"))
	s.poller.Start()
	s.waitForCalls(1)

	s.fetcher.set(7, nil)
	s.clock.Advance(notify.DefaultInterval)
	s.waitForCalls(2)
	s.Eventually(func() bool { return s.poller.Unread() == 7 }, time.Second, 5*time.Millisecond)
	s.True(s.poller.Running())
}

func (s *PollerSuite) TestFailureKeepsLastCount() {
	s.poller.Refresh(context.Background())
	s.Equal(2, s.poller.Unread())

	s.fetcher.set(0, errors.New("boom"))
	s.poller.Refresh(context.Background())
	s.Equal(2, s.poller.Unread())
}

func (s *PollerSuite) TestRefreshWithoutTokenIsNetworkFree() {
	s.Require().NoError(s.store.Clear(context.Background()))
	s.poller.Refresh(context.Background())
	s.Equal(int32(0), s.fetcher.calls.Load())
}

func (s *PollerSuite) TestRestartAfterStop() {
	s.poller.Start()
	s.waitForCalls(1)
	s.poller.Stop()

	s.poller.Start()
	s.waitForCalls(2)
	s.True(s.poller.Running())
	s.Equal(1, s.clock.ActiveTickers())
}

func (s *PollerSuite) TestSubscribeSeesLatestCount() {
	ch := s.poller.Subscribe()
	s.fetcher.set(3, nil)
	s.poller.Refresh(context.Background())
	s.fetcher.set(4, nil)
	s.poller.Refresh(context.Background())

	select {
	case n := <-ch:
		s.Equal(4, n)
	case <-time.After(time.Second):
		s.Fail("no update published")
	}
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	clk := mocks.NewMockClock(time.Now())
	fetcher := &fakeFetcher{count: 9}
	poller := notify.New(fetcher, memory.NewWithToken("tok"), clk, notify.Config{Interval: time.Second}, testutil.NopLogger())

	release := make(chan struct{})
	entered := make(chan struct{})
	fetcher.before = func() {
		close(entered)
		<-release
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		poller.Refresh(context.Background())
	}()

	<-entered
	poller.Stop()
	close(release)
	<-done

	assert.Equal(t, 0, poller.Unread())
}

func TestDefaultsApplied(t *testing.T) {
	clk := mocks.NewMockClock(time.Now())
	poller := notify.New(&fakeFetcher{}, memory.NewWithToken("tok"), clk, notify.Config{}, nil)
	poller.Start()
	defer poller.Stop()

	require.Equal(t, 1, clk.ActiveTickers())
	assert.True(t, poller.Running())
}

func TestSubscriberNeverHoldsCountOlderThanStop(t *testing.T) {
	for i := 0; i < 200; i++ {
		clk := mocks.NewMockClock(time.Now())
		poller := notify.New(&fakeFetcher{count: 5}, memory.NewWithToken("tok"), clk, notify.Config{Interval: time.Second}, testutil.NopLogger())
		updates := poller.Subscribe()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			poller.Refresh(context.Background())
		}()
		go func() {
			defer wg.Done()
			poller.Stop()
		}()
		wg.Wait()

		select {
		case got := <-updates:
			require.Equal(t, poller.Unread(), got, "iteration %d", i)
		default:
			t.Fatalf("iteration %d: stop published nothing", i)
		}
	}
}
