package sequence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
)

type counterState struct {
	prefix string
	next   int64
}

type mockRow struct {
	value  int64
	prefix string
	err    error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = m.value
		}
	}
	if len(dest) > 1 {
		if p, ok := dest[1].(*string); ok {
			*p = m.prefix
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences row with the same serialization
// guarantee the database gives: one issuance at a time per counter.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]*counterState

	failNext  int // fail this many calls before succeeding
	failError error
	calls     int
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]*counterState)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.failNext > 0 {
		m.failNext--
		return &mockRow{err: m.failError}
	}

	key := args[0].(string) + "/" + args[1].(string)

	// Provision carries prefix and start value.
	if len(args) == 4 {
		st, ok := m.counters[key]
		if !ok {
			st = &counterState{prefix: args[2].(string), next: args[3].(int64)}
			m.counters[key] = st
		} else if start := args[3].(int64); start > st.next {
			st.next = start
		}
		return &mockRow{value: st.next}
	}

	st, ok := m.counters[key]
	if !ok {
		return &mockRow{err: pgx.ErrNoRows}
	}
	issued := st.next
	st.next++
	return &mockRow{value: issued, prefix: st.prefix}
}

func TestIssueNext_Sequential(t *testing.T) {
	q := newMockQuerier()
	alloc := New(q)
	ctx := context.Background()

	require.NoError(t, alloc.Provision(ctx, "main", CounterTracking, "GT", 100000))

	first, err := alloc.IssueNext(ctx, "main", CounterTracking)
	require.NoError(t, err)
	assert.Equal(t, "GT100000", first)

	second, err := alloc.IssueNext(ctx, "main", CounterTracking)
	require.NoError(t, err)
	assert.Equal(t, "GT100001", second)
}

func TestIssueNext_NotProvisioned(t *testing.T) {
	alloc := New(newMockQuerier())

	_, err := alloc.IssueNext(context.Background(), "ghost", CounterTracking)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeSequenceNotProvisioned))
}

func TestIssueNext_ConcurrentCallersGetDistinctValues(t *testing.T) {
	q := newMockQuerier()
	alloc := New(q)
	ctx := context.Background()

	require.NoError(t, alloc.Provision(ctx, "main", CounterManifest, "MAN", 1))

	const workers = 50
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := alloc.IssueNext(ctx, "main", CounterManifest)
			if err != nil {
				t.Errorf("issue failed: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, workers)
	var all []string
	for num := range results {
		assert.False(t, seen[num], "duplicate number issued: %s", num)
		seen[num] = true
		all = append(all, num)
	}
	require.Len(t, all, workers)

	// Values cover a contiguous range: nothing skipped, nothing reused.
	sort.Strings(all)
	assert.Equal(t, "MAN1", all[0])
}

func TestIssueNext_RetriesOnceOnTransientFailure(t *testing.T) {
	q := newMockQuerier()
	q.failNext = 1
	q.failError = errors.New("connection reset")

	alloc := New(q)
	alloc.retryDelay = time.Millisecond
	ctx := context.Background()

	require.NoError(t, alloc.Provision(ctx, "main", CounterTracking, "GT", 100000))
	q.failNext = 1

	num, err := alloc.IssueNext(ctx, "main", CounterTracking)
	require.NoError(t, err)
	assert.Equal(t, "GT100000", num)
}

func TestIssueNext_DoesNotRetryTwice(t *testing.T) {
	q := newMockQuerier()
	q.failNext = 2
	q.failError = errors.New("connection reset")

	alloc := New(q)
	alloc.retryDelay = time.Millisecond

	_, err := alloc.IssueNext(context.Background(), "main", CounterTracking)
	require.Error(t, err)
}

func TestProvision_NeverLowersCounter(t *testing.T) {
	q := newMockQuerier()
	alloc := New(q)
	ctx := context.Background()

	require.NoError(t, alloc.Provision(ctx, "main", CounterTracking, "GT", 100000))
	_, err := alloc.IssueNext(ctx, "main", CounterTracking)
	require.NoError(t, err)

	// Re-running setup with a lower start must not reissue old numbers.
	require.NoError(t, alloc.Provision(ctx, "main", CounterTracking, "GT", 1))

	num, err := alloc.IssueNext(ctx, "main", CounterTracking)
	require.NoError(t, err)
	assert.Equal(t, "GT100001", num)
}

func TestProvision_RejectsInvalidStart(t *testing.T) {
	alloc := New(newMockQuerier())

	err := alloc.Provision(context.Background(), "main", CounterTracking, "GT", 0)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
