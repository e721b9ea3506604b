package redisc

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a live server: REDIS_TEST_URL=redis://localhost:6379/15
func testRedisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	return url
}

func TestInitRedis_BadURL(t *testing.T) {
	_, err := InitRedis(context.Background(), "://nope")
	require.Error(t, err)
}

func TestCache_IsMiss(t *testing.T) {
	c := &Cache{}
	assert.True(t, c.IsMiss(ErrCacheMiss))
	assert.False(t, c.IsMiss(errors.New("connection refused")))
	assert.False(t, c.IsMiss(nil))
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, err := InitRedis(ctx, testRedisURL(t))
	require.NoError(t, err)
	defer client.Close()

	c := NewCache(client, "test:"+uuid.NewString()+":")

	_, err = c.Get(ctx, "repos:octocat")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.True(t, c.IsMiss(err))

	require.NoError(t, c.Set(ctx, "repos:octocat", []byte(`[{"name":"hello"}]`), time.Minute))

	got, err := c.Get(ctx, "repos:octocat")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"hello"}]`, string(got))
}

func TestFeedBroker_RelaysPublishedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := InitRedis(ctx, testRedisURL(t))
	require.NoError(t, err)
	defer client.Close()

	b := NewFeedBroker(client)
	b.channel = "test:feed:" + uuid.NewString()

	got := make(chan []byte, 1)
	go b.Subscribe(ctx, func(_ context.Context, data []byte) error {
		got <- data
		return nil
	})

	// the subscription is established asynchronously; publish until it lands
	require.Eventually(t, func() bool {
		if err := b.Publish(ctx, []byte(`{"type":"post.created"}`)); err != nil {
			return false
		}
		select {
		case data := <-got:
			return string(data) == `{"type":"post.created"}`
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}
