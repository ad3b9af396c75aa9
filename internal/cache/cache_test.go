package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a cache whose clock the test controls.
func fixedClock(c *Cache) *time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return &now
}

func TestCache_SetAndGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("categories", "", []string{"a", "b"})

	got, ok := Get[[]string](c, "categories", "")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c := New(time.Minute)

	_, ok := Get[string](c, "categories", "")
	assert.False(t, ok)
}

func TestCache_SubKeysAreIndependentSlots(t *testing.T) {
	c := New(time.Minute)

	c.Set("forms", "cat-1", "forms of category 1")
	c.Set("forms", "cat-2", "forms of category 2")
	c.Set("forms", "", "all forms")

	v, ok := Get[string](c, "forms", "cat-1")
	require.True(t, ok)
	assert.Equal(t, "forms of category 1", v)

	v, ok = Get[string](c, "forms", "")
	require.True(t, ok)
	assert.Equal(t, "all forms", v)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(time.Minute)
	now := fixedClock(c)

	c.Set("forms", "f1", "payload")

	*now = now.Add(59 * time.Second)
	_, ok := Get[string](c, "forms", "f1")
	assert.True(t, ok, "entry inside TTL must hit")

	*now = now.Add(2 * time.Second)
	_, ok = Get[string](c, "forms", "f1")
	assert.False(t, ok, "entry past TTL must miss")
	assert.Equal(t, 0, c.Len(), "expired entry is evicted on read")
}

func TestCache_InvalidateTypeDropsAllSubKeys(t *testing.T) {
	c := New(time.Minute)

	c.Set("forms", "f1", 1)
	c.Set("forms", "f2", 2)
	c.Set("categories", "", 3)

	c.InvalidateType("forms")

	_, ok := Get[int](c, "forms", "f1")
	assert.False(t, ok)
	_, ok = Get[int](c, "forms", "f2")
	assert.False(t, ok)
	v, ok := Get[int](c, "categories", "")
	require.True(t, ok, "other types survive invalidation")
	assert.Equal(t, 3, v)
}

func TestCache_TypeMismatchIsMiss(t *testing.T) {
	c := New(time.Minute)
	c.Set("forms", "", 42)

	_, ok := Get[string](c, "forms", "")
	assert.False(t, ok)
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New(time.Minute)

	calls := 0
	load := func() (string, error) {
		calls++
		return "loaded", nil
	}

	v, err := GetOrLoad(c, "forms", "f1", load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)

	v, err = GetOrLoad(c, "forms", "f1", load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	assert.Equal(t, 1, calls, "second read is served from cache")
}

func TestCache_GetOrLoadErrorDoesNotPopulate(t *testing.T) {
	c := New(time.Minute)

	_, err := GetOrLoad(c, "forms", "f1", func() (string, error) {
		return "", errors.New("backend down")
	})
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}
