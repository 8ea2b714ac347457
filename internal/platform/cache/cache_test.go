package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memclock "github.com/Overland-East-Bay/scoring-api/internal/adapters/memory/clock"
)

func TestMemory_RoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Unix(1000, 0))
	c := NewMemory(Policy{DefaultTTL: 60 * time.Second}, clk)

	c.Set("k", []byte("v"), 0)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clk.Advance(60 * time.Second)
	_, ok = c.Get("k")
	assert.True(t, ok, "entry is live at exactly ttl")

	clk.Advance(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "expired entries are not swept")
}

func TestMemory_PerCallTTL(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Unix(1000, 0))
	c := NewMemory(Policy{DefaultTTL: time.Second}, clk)

	c.Set("long", []byte("1"), time.Hour)
	c.Set("short", []byte("2"), 0)
	clk.Advance(2 * time.Second)

	_, ok := c.Get("long")
	assert.True(t, ok)
	_, ok = c.Get("short")
	assert.False(t, ok)
}

func TestMemory_SetCopiesValue(t *testing.T) {
	t.Parallel()

	c := NewMemory(Policy{DefaultTTL: time.Minute}, memclock.NewManualClock(time.Unix(0, 0)))
	buf := []byte("abc")
	c.Set("k", buf, 0)
	buf[0] = 'x'

	got, _ := c.Get("k")
	assert.Equal(t, "abc", string(got))
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	c := NewMemory(Policy{DefaultTTL: time.Minute}, memclock.NewManualClock(time.Unix(0, 0)))
	c.Set("k", []byte("abc"), 0)

	got, ok := c.Get("k")
	require.True(t, ok)
	got[0] = 'x'

	again, _ := c.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestMemory_ConcurrentSets(t *testing.T) {
	t.Parallel()

	c := NewMemory(Policy{DefaultTTL: time.Minute}, memclock.NewManualClock(time.Unix(0, 0)))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("shared", []byte(fmt.Sprint(i)), 0)
			c.Get("shared")
		}(i)
	}
	wg.Wait()

	_, ok := c.Get("shared")
	assert.True(t, ok)
}
