package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTTLCache[string, int](func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", 2, 0)
	_, ok = c.Get("b")
	assert.False(t, ok)

	c.Set("c", 3, time.Hour)
	c.Delete("c")
	_, ok = c.Get("c")
	assert.False(t, ok)
}
