package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketFusion/internal/pipeline"
)

type stubRunner struct {
	calls int
	err   error
}

func (s *stubRunner) Run(_ context.Context) (*pipeline.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &pipeline.Result{RunID: "r1", Rows: 3}, nil
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRunner{})
	require.NoError(t, s.Register("0 30 18 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	err := s.Register("not a cron")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a cron")
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRunNow(t *testing.T) {
	r := &stubRunner{}
	s := NewScheduler(context.Background(), r)
	s.RunNow()
	s.RunNow()

	n, err := s.Stats()
	assert.Equal(t, 2, n)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.calls)
}

func TestRunNow_Failure(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler(context.Background(), &stubRunner{err: boom})
	s.RunNow()

	n, err := s.Stats()
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, boom)
}

func TestRunNow_CanceledContextSkips(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &stubRunner{}
	s := NewScheduler(ctx, r)
	s.RunNow()

	assert.Equal(t, 0, r.calls)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRunner{})
	require.NoError(t, s.Register("@every 1h"))
	s.Start()
	s.Stop()
}

// blockingRunner holds each run until release is closed and records the
// highest number of runs in flight.
type blockingRunner struct {
	started  chan struct{}
	release  chan struct{}
	calls    int32
	inFlight int32
	maxSeen  int32
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *blockingRunner) Run(_ context.Context) (*pipeline.Result, error) {
	atomic.AddInt32(&b.calls, 1)
	n := atomic.AddInt32(&b.inFlight, 1)
	for {
		m := atomic.LoadInt32(&b.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(&b.maxSeen, m, n) {
			break
		}
	}
	b.started <- struct{}{}
	<-b.release
	atomic.AddInt32(&b.inFlight, -1)
	return &pipeline.Result{RunID: "r"}, nil
}

func TestRunNow_SkipsWhileRunInProgress(t *testing.T) {
	r := newBlockingRunner()
	s := NewScheduler(context.Background(), r)

	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()
	<-r.started

	s.RunNow() // returns at once: the first run still holds the slot
	close(r.release)
	<-done

	assert.EqualValues(t, 1, atomic.LoadInt32(&r.calls))
	n, _ := s.Stats()
	assert.Equal(t, 1, n)
}

func TestStartupRunAndTicksNeverOverlap(t *testing.T) {
	r := newBlockingRunner()
	s := NewScheduler(context.Background(), r)
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()

	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()
	<-r.started

	// Several per-second ticks fire while the startup run is held.
	time.Sleep(2500 * time.Millisecond)
	close(r.release)
	<-done
	s.Stop()

	assert.EqualValues(t, 1, atomic.LoadInt32(&r.maxSeen))
}
