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

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "test:"), mr
}

type scoreRow struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	in := []scoreRow{{Username: "alice_01", Points: 15}, {Username: "bob_team", Points: 8}}
	require.NoError(t, helper.Set(ctx, "leaderboard", in, time.Minute))

	var out []scoreRow
	require.NoError(t, helper.Get(ctx, "leaderboard", &out))
	assert.Equal(t, in, out)
}

func TestCacheHelper_GetMissingKey(t *testing.T) {
	helper, _ := newTestHelper(t)

	var out []scoreRow
	err := helper.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, "leaderboard", []scoreRow{{Username: "alice_01"}}, 30*time.Second))

	mr.FastForward(31 * time.Second)

	var out []scoreRow
	err := helper.Get(ctx, "leaderboard", &out)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, "a", scoreRow{Username: "alice_01"}, time.Minute))
	require.NoError(t, helper.Set(ctx, "b", scoreRow{Username: "bob_team"}, time.Minute))
	require.NoError(t, helper.Delete(ctx, "a", "b"))

	exists, err := helper.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheHelper_KeysArePrefixed(t *testing.T) {
	helper, mr := newTestHelper(t)

	require.NoError(t, helper.Set(context.Background(), "key", scoreRow{}, time.Minute))
	assert.True(t, mr.Exists("test:key"))
}

// A nil client must degrade to a no-op cache, never an error path that
// breaks the leaderboard.
func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	assert.NoError(t, helper.Set(ctx, "k", scoreRow{}, time.Minute))
	assert.NoError(t, helper.Delete(ctx, "k"))

	var out scoreRow
	assert.ErrorIs(t, helper.Get(ctx, "k", &out), ErrCacheNotAvailable)

	_, err := helper.Exists(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheNotAvailable)

	assert.ErrorIs(t, helper.HealthCheck(ctx), ErrCacheNotAvailable)
}

func TestCacheHelper_ConfigPrefixes(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.SetWithConfig(ctx, "current", []scoreRow{{Username: "alice_01"}}, LeaderboardCacheConfig))
	assert.True(t, mr.Exists("test:leaderboard:current"))

	var out []scoreRow
	require.NoError(t, helper.GetWithConfig(ctx, "current", &out, LeaderboardCacheConfig))
	require.Len(t, out, 1)
	assert.Equal(t, "alice_01", out[0].Username)
}
