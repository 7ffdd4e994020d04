package id

import (
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var crockford = regexp.MustCompile(`^[0-7][0-9A-HJKMNP-TV-Z]{25}$`)

func TestNewULID(t *testing.T) {
	t.Parallel()

	before := time.Now().Truncate(time.Millisecond)
	u := NewULID()
	require.Len(t, u, ULIDLen)
	require.Regexp(t, crockford, u)

	ts, err := Time(u)
	require.NoError(t, err)
	require.False(t, ts.Before(before.UTC()))
	require.WithinDuration(t, time.Now(), ts, time.Second)

	ts, err = Time(strings.ToLower(u))
	require.NoError(t, err)
	require.False(t, ts.IsZero())
}

func TestNewULID_Concurrent(t *testing.T) {
	t.Parallel()

	const workers, each = 8, 250
	var (
		mu  sync.Mutex
		all []string
		wg  sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, each)
			for i := range local {
				local[i] = NewULID()
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	slices.Sort(all)
	require.Len(t, slices.Compact(all), workers*each)
}

func TestGenerator_Monotonic(t *testing.T) {
	t.Parallel()

	fixed := time.UnixMilli(1_700_000_000_000)
	g := &generator{now: func() time.Time { return fixed }}

	prev := g.next()
	for range 100 {
		next := g.next()
		require.Less(t, prev, next)
		prev = next
	}
	ts, err := Time(prev)
	require.NoError(t, err)
	require.Equal(t, fixed.UTC(), ts)

	// the clock going backwards must not break ordering
	g.now = func() time.Time { return fixed.Add(-time.Second) }
	require.Less(t, prev, g.next())
}

func TestGenerator_Overflow(t *testing.T) {
	t.Parallel()

	fixed := time.UnixMilli(1_700_000_000_000)
	g := &generator{now: func() time.Time { return fixed }}
	first := g.next()
	for i := range g.rnd {
		g.rnd[i] = 0xff
	}

	next := g.next()
	require.Less(t, first, next)
	ts, err := Time(next)
	require.NoError(t, err)
	require.Equal(t, fixed.Add(time.Millisecond).UTC(), ts)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	require.Equal(t, strings.Repeat("0", ULIDLen), encode([16]byte{}))

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	require.Equal(t, "7"+strings.Repeat("Z", ULIDLen-1), encode(ones))

	raw := [16]byte{0x01, 0x8b, 0xcf, 0xe5, 0x68, 0x00}
	ts, err := Time(encode(raw))
	require.NoError(t, err)
	require.Equal(t, int64(0x018bcfe56800), ts.UnixMilli())
}

func TestTime_Invalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"",
		"01ARZ3NDEKTSV4RRFFQ69G5FA",
		"01ARZ3NDEKTSV4RRFFQ69G5FAVX",
		"01ARZ3NDEKTSV4RRFFQ69G5FAU",
		"81ARZ3NDEKTSV4RRFFQ69G5FAV",
	} {
		_, err := Time(s)
		require.ErrorIs(t, err, ErrInvalidULID, s)
	}
}

func BenchmarkNewULID(b *testing.B) {
	for b.Loop() {
		_ = NewULID()
	}
}
