// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestLRU(capacity int, ttl time.Duration) (*LRU[int, string], *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[int, string](capacity, ttl)
	c.now = clk.Now
	return c, clk
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(4, time.Minute)

	c.Set(603, "https://image.tmdb.org/t/p/w500/matrix.jpg")
	got, ok := c.Get(603)
	if !ok || got != "https://image.tmdb.org/t/p/w500/matrix.jpg" {
		t.Errorf("Get(603) = %q,%v", got, ok)
	}
	if _, ok := c.Get(550); ok {
		t.Error("Get(550) should miss")
	}

	c.Set(603, "updated")
	if got, _ := c.Get(603); got != "updated" {
		t.Errorf("overwrite: Get(603) = %q", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 {
		t.Errorf("Stats = %+v, want 2 hits 1 miss", st)
	}
	if hr := st.HitRate(); hr < 66 || hr > 67 {
		t.Errorf("HitRate() = %v", hr)
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(3, time.Minute)

	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(3, "c")
	c.Get(1) // 2 is now least recently used
	c.Set(4, "d")

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d should be present", k)
		}
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Errorf("Evictions = %d, want 1", ev)
	}
}

func TestLRU_TTL(t *testing.T) {
	c, clk := newTestLRU(10, time.Hour)

	c.Set(1, "long")
	c.SetWithTTL(2, "short", time.Minute)
	c.SetWithTTL(3, "default", 0)

	clk.Advance(2 * time.Minute)
	if _, ok := c.Get(2); ok {
		t.Error("short-lived entry should have expired")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("long-lived entry should still be present")
	}

	clk.Advance(2 * time.Hour)
	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup", c.Len())
	}
}

func TestLRU_DeleteClear(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	c.Set(1, "a")
	c.Set(2, "b")

	if !c.Delete(1) || c.Delete(1) {
		t.Error("Delete should report presence exactly once")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	c.Set(3, "c")
	if _, ok := c.Get(3); !ok {
		t.Error("cache unusable after Clear")
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[string, int](0, 0)
	if c.capacity != 1024 || c.ttl != 5*time.Minute {
		t.Errorf("defaults = %d/%v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c, _ := newTestLRU(64, time.Minute)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := (w*500 + i) % 100
				c.Set(k, strconv.Itoa(k))
				if v, ok := c.Get(k); ok && v != strconv.Itoa(k) {
					t.Errorf("Get(%d) = %q", k, v)
				}
			}
		}(w)
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
