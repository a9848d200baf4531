package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
	require.Equal(t, 1, c.Len())
}

func TestMemory_TTL_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	// Freeze time via now indirection
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	_, ok, _ := c.Get(ctx, "k")
	require.True(t, ok, "expected hit before expiry")

	base = base.Add(2 * time.Second)
	_, ok, _ = c.Get(ctx, "k")
	require.False(t, ok, "expected miss after expiry")

	require.Equal(t, 1, c.PurgeExpired())
	require.Equal(t, 0, c.Len())
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	require.Equal(t, []byte("abc"), got)
	got[1] = 'z'

	again, _, _ := c.Get(ctx, "k")
	require.Equal(t, []byte("abc"), again)
}

func TestMemory_Delete_Close(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "1", []byte("10"), 0))
	require.NoError(t, c.Set(ctx, "2", []byte("20"), 0))

	require.NoError(t, c.Delete(ctx, "1"))
	_, ok, _ := c.Get(ctx, "1")
	require.False(t, ok)
	require.Equal(t, 1, c.Len())

	require.NoError(t, c.Close())
	require.Equal(t, 0, c.Len())
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			for r := 0; r < 100; r++ {
				_ = c.Set(ctx, key, []byte{byte(r)}, 0)
				_, _, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 26, c.Len())
}
