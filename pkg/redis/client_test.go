package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, client.Del(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestPublishRecordsChannel(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}

	receivers, err := client.Publish(context.Background(), "push:delivery/abc", `{"status":0}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), receivers)
	require.Len(t, mock.published, 1)
	assert.Equal(t, "push:delivery/abc", mock.published[0].channel)
}

func TestIncrWithTTLCounts(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, "rl:ip", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	_, err := client.Publish(context.Background(), "c", "p")
	assert.Error(t, err)
	_, err = client.PSubscribe(context.Background(), "push:*")
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "ms:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "ms:lock:cron", client.LockKey("cron"))
	assert.Equal(t, "ms:event:notifications:evt-1", client.EventKey("notifications", "evt-1"))
	assert.Equal(t, "ms:rl:payment-confirm:1.2.3.4", client.RateLimitKey("payment-confirm:1.2.3.4"))
	assert.Equal(t, "ms:idempotency:scope", client.IdempotencyKey("scope", ""), "empty parts are skipped")
}

type mockCmdable struct {
	data      map[string]string
	published []publishCall
}

type publishCall struct {
	channel string
	payload any
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	var n int64
	if v, ok := m.data[key]; ok {
		fmt.Sscan(v, &n)
	}
	n++
	m.data[key] = fmt.Sprint(n)
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	_, ok := m.data[key]
	return redis.NewBoolResult(ok, nil)
}

func (m *mockCmdable) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	m.published = append(m.published, publishCall{channel: channel, payload: message})
	return redis.NewIntResult(1, nil)
}
