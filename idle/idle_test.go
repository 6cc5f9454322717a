package idle

import (
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// Timing tests allow generous slack so they stay reliable on loaded CI
// machines.
const slack = 40 * time.Millisecond

func TestAwaitQuiescentAfterNotify(t *testing.T) {
	tr := NewTracker()
	tr.Notify()

	start := time.Now()
	idle := tr.AwaitQuiescent(time.Second)
	elapsed := time.Since(start)

	require.True(t, idle)
	require.GreaterOrEqual(t, elapsed, Debounce-5*time.Millisecond)
	require.Less(t, elapsed, Debounce+slack)
}

func TestAwaitQuiescentFallbackWithoutData(t *testing.T) {
	tr := NewTracker()

	start := time.Now()
	idle := tr.AwaitQuiescent(time.Second)
	elapsed := time.Since(start)

	require.True(t, idle)
	require.Less(t, elapsed, InitialIdleFallback+slack)
}

func TestAwaitQuiescentFallbackBoundedByTimeout(t *testing.T) {
	tr := NewTracker()

	start := time.Now()
	tr.AwaitQuiescent(5 * time.Millisecond)
	elapsed := time.Since(start)

	require.Less(t, elapsed, InitialIdleFallback)
}

func TestAwaitQuiescentTimesOutWhileDataFlows(t *testing.T) {
	tr := NewTracker()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				tr.Notify()
			}
		}
	}()

	tr.Notify()
	idle := tr.AwaitQuiescent(100 * time.Millisecond)
	require.False(t, idle)

	close(stop)
	wg.Wait()
}

func TestBurstProducesSingleFire(t *testing.T) {
	tr := NewTracker()
	tr.Notify()

	done := make(chan bool, 1)
	go func() {
		done <- tr.AwaitQuiescent(time.Second)
	}()

	// Keep re-arming inside the debounce window; the fire must land only
	// after the last notify.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		tr.Notify()
	}
	last := time.Now()

	require.True(t, <-done)
	require.GreaterOrEqual(t, time.Since(last), Debounce-5*time.Millisecond)
}

func TestBatchWaiterRelease(t *testing.T) {
	tr := NewTracker()
	tr.Notify()

	const waiters = 8
	results := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			results <- tr.AwaitQuiescent(time.Second)
		}()
	}

	for i := 0; i < waiters; i++ {
		require.True(t, <-results)
	}
}

func TestAwaitFirstData(t *testing.T) {
	tr := NewTracker()

	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.Notify()
	}()

	require.NoError(t, tr.AwaitFirstData(time.Second))

	// Already-seen data resolves immediately.
	start := time.Now()
	require.NoError(t, tr.AwaitFirstData(time.Second))
	require.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestAwaitFirstDataTimeout(t *testing.T) {
	tr := NewTracker()
	err := tr.AwaitFirstData(30 * time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestSeenData(t *testing.T) {
	tr := NewTracker()
	require.False(t, tr.SeenData())
	tr.Notify()
	require.True(t, tr.SeenData())
}

func TestCloseWakesWaitersWithoutSuccess(t *testing.T) {
	tr := NewTracker()
	tr.Notify()

	quiescent := make(chan bool, 1)
	firstErr := make(chan error, 1)
	tr2 := NewTracker()
	go func() { quiescent <- tr.AwaitQuiescent(time.Second) }()
	go func() { firstErr <- tr2.AwaitFirstData(time.Second) }()

	time.Sleep(10 * time.Millisecond)
	tr.Close()
	tr2.Close()

	require.False(t, <-quiescent)
	require.ErrorIs(t, <-firstErr, ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Notify()
	tr.Close()
	tr.Close()

	require.False(t, tr.AwaitQuiescent(10*time.Millisecond))
	require.ErrorIs(t, tr.AwaitFirstData(10*time.Millisecond), ErrClosed)
}

func TestNotifyAfterCloseIsIgnored(t *testing.T) {
	tr := NewTracker()
	tr.Close()
	tr.Notify()
	require.False(t, tr.SeenData())
}

func TestBurstSingleFireProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("any sub-debounce burst yields one fire after the last notify", prop.ForAll(
		func(burst int) bool {
			tr := NewTracker()
			defer tr.Close()

			done := make(chan bool, 1)
			tr.Notify()
			go func() { done <- tr.AwaitQuiescent(2 * time.Second) }()

			for i := 0; i < burst; i++ {
				time.Sleep(5 * time.Millisecond)
				tr.Notify()
			}
			last := time.Now()

			idle := <-done
			return idle && time.Since(last) >= Debounce-5*time.Millisecond
		},
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}
