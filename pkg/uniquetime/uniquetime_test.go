package uniquetime_test

import (
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/gobytes/pkg/fs"
	"github.com/calvinalkan/gobytes/pkg/reentrantlock"
	"github.com/calvinalkan/gobytes/pkg/uniquetime"
)

func openProvider(t *testing.T, path string, hostID int64) *uniquetime.Provider {
	t.Helper()

	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	p, err := uniquetime.Open(fs.NewReal(), locks, path, uniquetime.Options{HostID: hostID})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	return p
}

func TestCurrentTimeNanosEncodesHostID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 7)

	v, err := p.CurrentTimeNanos()
	require.NoError(t, err)
	require.EqualValues(t, 7, uniquetime.HostIDOf(v))
}

func TestCurrentTimeNanosStrictlyIncreasesWithinOneProvider(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 3)

	prev, err := p.CurrentTimeNanos()
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		v, err := p.CurrentTimeNanos()
		require.NoError(t, err)
		require.Greater(t, v, prev)
		require.EqualValues(t, 3, uniquetime.HostIDOf(v))

		prev = v
	}
}

func TestCurrentTimeNanosConcurrentCallersYieldDistinctIncreasingValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 7)

	const (
		goroutines = 8
		perRoutine = 200
	)

	var (
		mu     sync.Mutex
		values = make([]int64, 0, goroutines*perRoutine)
		wg     sync.WaitGroup
	)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < perRoutine; i++ {
				v, err := p.CurrentTimeNanos()
				require.NoError(t, err)

				mu.Lock()
				values = append(values, v)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Len(t, values, goroutines*perRoutine)

	seen := make(map[int64]bool, len(values))
	for _, v := range values {
		require.False(t, seen[v], "duplicate timestamp %d", v)
		seen[v] = true
		require.EqualValues(t, 7, uniquetime.HostIDOf(v))
	}

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i := 1; i < len(values); i++ {
		require.Greater(t, values[i], values[i-1])
	}
}

func TestCurrentTimeMicrosSharesMonotonicityWithNanos(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 1)

	n1, err := p.CurrentTimeNanos()
	require.NoError(t, err)

	m, err := p.CurrentTimeMicros()
	require.NoError(t, err)
	require.Greater(t, m, n1)

	n2, err := p.CurrentTimeNanos()
	require.NoError(t, err)
	require.Greater(t, n2, m)
}

func TestTimestampOfAndHostIDOfRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 42)

	v, err := p.CurrentTimeNanos()
	require.NoError(t, err)

	require.EqualValues(t, 42, uniquetime.HostIDOf(v))
	require.Zero(t, uniquetime.TimestampOf(v) % uniquetime.HostIDs)
	require.Equal(t, v, uniquetime.TimestampOf(v)+uniquetime.HostIDOf(v))
}

func TestFormatParseRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 9)

	v, err := p.CurrentTimeNanos()
	require.NoError(t, err)

	s := uniquetime.Format(v)

	got, err := uniquetime.Parse(s)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	_, err := uniquetime.Parse("not-a-timestamp")
	require.ErrorIs(t, err, uniquetime.ErrInvalidFormat)
}

func TestCompareAndRetainNewerDeduplicatesByHostID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	p := openProvider(t, path, 5)

	older := uniquetime.TimestampOf(1_000_000) + 5
	newer := uniquetime.TimestampOf(2_000_000) + 5

	cmp, err := p.CompareAndRetainNewer(older)
	require.NoError(t, err)
	require.Equal(t, 1, cmp)

	cmp, err = p.CompareByHostID(older)
	require.NoError(t, err)
	require.Zero(t, cmp)

	cmp, err = p.CompareAndRetainNewer(newer)
	require.NoError(t, err)
	require.Equal(t, 1, cmp)

	cmp, err = p.CompareAndRetainNewer(older)
	require.NoError(t, err)
	require.Equal(t, -1, cmp)

	cmp, err = p.CompareByHostID(newer)
	require.NoError(t, err)
	require.Zero(t, cmp)
}

func TestReopeningExistingFilePreservesLastTime(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")

	first := openProvider(t, path, 2)

	v1, err := first.CurrentTimeNanos()
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openProvider(t, path, 2)

	v2, err := second.CurrentTimeNanos()
	require.NoError(t, err)

	require.Greater(t, v2, v1)
}

func TestOpenRejectsHostIDOutOfRange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	_, err := uniquetime.Open(fs.NewReal(), locks, path, uniquetime.Options{HostID: 100})
	require.Error(t, err)
}

func TestOpenSurfacesUnderlyingFilesystemFaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")

	chaos := fs.NewChaos(fs.NewReal(), 1, &fs.ChaosConfig{OpenFailRate: 1.0})
	locks := reentrantlock.NewRegistry(fs.NewLocker(chaos))

	_, err := uniquetime.Open(chaos, locks, path, uniquetime.Options{HostID: 1})
	require.Error(t, err)
}

func TestCurrentTimeNanosUsesInjectedClock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "time.tsf")
	locks := reentrantlock.NewRegistry(fs.NewLocker(fs.NewReal()))

	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := uniquetime.Open(fs.NewReal(), locks, path, uniquetime.Options{
		HostID: 4,
		Clock:  func() time.Time { return fixed },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	v, err := p.CurrentTimeNanos()
	require.NoError(t, err)
	require.Equal(t, uniquetime.TimestampOf(v), fixed.UnixNano()-fixed.UnixNano()%uniquetime.HostIDs)
}
