package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return &Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func TestGetMissingKeyReturnsEmpty(t *testing.T) {
	client := newTestClient(t)

	value, err := client.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSetAndGet(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "greeting", "hello", time.Minute))

	value, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestJSONRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, client.SetJSON(ctx, "p", payload{Name: "leads", Count: 3}, time.Minute))

	var got payload
	found, err := client.GetJSON(ctx, "p", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "leads", Count: 3}, got)

	found, err = client.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExistsAndDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))

	exists, err := client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, client.Delete(ctx, "k"))

	exists, err = client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeletePattern(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "leads:id:1", "a", time.Minute))
	require.NoError(t, client.Set(ctx, "leads:list:x", "b", time.Minute))
	require.NoError(t, client.Set(ctx, "users:id:1", "c", time.Minute))

	require.NoError(t, client.DeletePattern(ctx, "leads:*"))

	exists, err := client.Exists(ctx, "leads:id:1")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = client.Exists(ctx, "users:id:1")
	require.NoError(t, err)
	assert.True(t, exists)
}
