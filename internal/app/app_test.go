package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/cache"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/config"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "advisor.db")
	cfg.Database.Seed = true
	return cfg
}

func TestNew_SeededSQLite(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, sqliteConfig(t), observability.NopLogger(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	snap, err := svc.Catalog.Current()
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Len())
	assert.Equal(t, "Samsung Galaxy S23 Ultra", snap.Names()[0])

	ans, err := svc.Router.Answer(ctx, snap, "Which Samsung phone has the best battery under $1000?")
	require.NoError(t, err)
	assert.Equal(t, "Best battery under $1000: Samsung Galaxy M54 (6000mAh, price: $470).", ans.Text)

	ans, err = svc.Router.Answer(ctx, snap, "Specs of Samsung Galaxy S23 Ultra")
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "Samsung Galaxy S23 Ultra specs:\n")
	assert.Contains(t, ans.Text, "- Price: $1,199\n")
}

func TestNew_SkipCatalog(t *testing.T) {
	svc, err := New(context.Background(), sqliteConfig(t), observability.NopLogger(), Options{SkipCatalog: true})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	assert.Nil(t, svc.Catalog)
	assert.Nil(t, svc.Router)
	assert.NotNil(t, svc.Migrations)
}

func TestNew_UnreachableStoreFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "missing", "dir", "advisor.db")

	svc, err := New(context.Background(), cfg, observability.NopLogger(), Options{})
	require.Error(t, err)
	assert.Nil(t, svc)
}

func TestNewCache(t *testing.T) {
	cfg := config.DefaultConfig()

	c, err := NewCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryClient{}, c)

	cfg.Cache.Driver = "memcached"
	_, err = NewCache(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported cache driver")
}

func TestInvalidateSharedAnswers_SkipsLocalCaches(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	// caching off: nothing to clear, redis is never dialed
	cfg.Cache.Driver = "redis"
	cfg.Cache.Redis.Addr = "127.0.0.1:1"
	assert.NoError(t, InvalidateSharedAnswers(ctx, cfg))

	// memory caches belong to the serving process
	cfg.Advisor.CacheAnswers = true
	cfg.Cache.Driver = "memory"
	assert.NoError(t, InvalidateSharedAnswers(ctx, cfg))

	cfg.Cache.Driver = "redis"
	assert.ErrorContains(t, InvalidateSharedAnswers(ctx, cfg), "create cache")
}
