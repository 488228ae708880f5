package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestStore_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	store := NewStore(client, "test")
	ctx := context.Background()

	// disabled store is a no-op
	require.NoError(t, store.SetJSON(ctx, "k", []string{"a"}, time.Minute))

	var got []string
	found, err := store.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestStore_Key(t *testing.T) {
	store := NewStore(&Client{}, "fscore")
	assert.Equal(t, "fscore:universe:latest", store.key("universe:latest"))
}

func TestStore_RoundTrip(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" || testing.Short() {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	cfg := &config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}}
	ctx := context.Background()

	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	store := NewStore(client, "fscore_test")
	require.NoError(t, store.SetJSON(ctx, "symbols", []string{"AAPL", "MSFT"}, time.Minute))
	defer store.Delete(ctx, "symbols")

	var got []string
	found, err := store.GetJSON(ctx, "symbols", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}
