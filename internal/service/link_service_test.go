package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shortly-platform/internal/store"
	"shortly-platform/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// fixedCodes 按顺序返回预设短码
type fixedCodes struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (f *fixedCodes) GetCode() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	code := f.codes[0]
	if len(f.codes) > 1 {
		f.codes = f.codes[1:]
	}
	return code, nil
}

// countingLocator 记录调用次数并返回固定位置
type countingLocator struct {
	calls    int32
	location string
}

func (l *countingLocator) Locate(_ context.Context, _ string) string {
	atomic.AddInt32(&l.calls, 1)
	return l.location
}

func newTestService(t *testing.T, codes CodeSource, geo Locator) (*LinkService, *store.LinkStore) {
	svc, links, _ := newTestServiceWithCache(t, codes, geo, nil)
	return svc, links
}

// newTestServiceWithCache cache 为 nil 时不启用跳转缓存
func newTestServiceWithCache(t *testing.T, codes CodeSource, geo Locator, cache *redis.Client) (*LinkService, *store.LinkStore, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	links := store.NewLinkStore(db)
	opts := Options{MaxRetries: 3, CacheTTL: time.Hour}
	return NewLinkService(links, codes, geo, cache, opts, zap.NewNop().Sugar()), links, db
}

func TestShorten_CreatesThenReuses(t *testing.T) {
	svc, _ := newTestService(t, &fixedCodes{codes: []string{"abc123", "def456"}}, &countingLocator{})
	ctx := context.Background()

	first, err := svc.Shorten(ctx, 1, "https://example.com")
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.Equal(t, "abc123", first.Link.ShortID)

	second, err := svc.Shorten(ctx, 1, "https://example.com")
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, "abc123", second.Link.ShortID)

	other, err := svc.Shorten(ctx, 2, "https://example.com")
	require.NoError(t, err)
	assert.False(t, other.Reused)
	assert.Equal(t, "def456", other.Link.ShortID)
}

func TestShorten_RetriesOnCollision(t *testing.T) {
	codes := &fixedCodes{codes: []string{"taken", "taken", "fresh"}}
	svc, links := newTestService(t, codes, &countingLocator{})
	ctx := context.Background()

	_, err := links.Create(ctx, "https://first.example", "taken", 9)
	require.NoError(t, err)

	res, err := svc.Shorten(ctx, 1, "https://second.example")
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.Link.ShortID)
}

func TestShorten_GivesUpAfterMaxRetries(t *testing.T) {
	svc, links := newTestService(t, &fixedCodes{codes: []string{"taken"}}, &countingLocator{})
	ctx := context.Background()

	_, err := links.Create(ctx, "https://first.example", "taken", 9)
	require.NoError(t, err)

	_, err = svc.Shorten(ctx, 1, "https://second.example")
	assert.ErrorIs(t, err, ErrShortIDExhausted)
}

func TestShorten_RandomnessFailureIsLoud(t *testing.T) {
	svc, _ := newTestService(t, &fixedCodes{err: errors.New("entropy exhausted")}, &countingLocator{})

	_, err := svc.Shorten(context.Background(), 1, "https://example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidURL)
}

func TestShorten_RejectsInvalidURL(t *testing.T) {
	svc, _ := newTestService(t, &fixedCodes{codes: []string{"x"}}, &countingLocator{})

	for _, raw := range []string{"", "example.com", "ftp://example.com/file", "https://", "javascript:alert(1)"} {
		_, err := svc.Shorten(context.Background(), 1, raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestVisit_UnknownShortIDRecordsNothing(t *testing.T) {
	geo := &countingLocator{location: "Somewhere"}
	svc, _ := newTestService(t, &fixedCodes{codes: []string{"x"}}, geo)

	_, err := svc.Visit(context.Background(), "xyz999", "8.8.8.8")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, int32(0), atomic.LoadInt32(&geo.calls))
}

func TestVisit_RecordsClickBeforeReturning(t *testing.T) {
	geo := &countingLocator{location: "Ontario, Canada"}
	svc, _, db := newTestServiceWithCache(t, &fixedCodes{codes: []string{"go1"}}, geo, nil)
	ctx := context.Background()

	res, err := svc.Shorten(ctx, 1, "https://example.com/page")
	require.NoError(t, err)

	target, err := svc.Visit(ctx, "go1", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", target)

	assert.Equal(t, int64(1), testutil.CountClicks(t, db, res.Link.ID))

	dash, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, dash.Links, 1)
	assert.Equal(t, []string{"Ontario, Canada"}, dash.Links[0].Locations)
}

func TestVisit_ConcurrentClicksAreNotLost(t *testing.T) {
	svc, _, db := newTestServiceWithCache(t, &fixedCodes{codes: []string{"busy"}}, &countingLocator{location: "Unknown"}, nil)
	ctx := context.Background()

	res, err := svc.Shorten(ctx, 1, "https://example.com")
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := svc.Visit(ctx, "busy", "8.8.8.8")
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(50), testutil.CountClicks(t, db, res.Link.ID))
}

func TestDelete_OwnerScoped(t *testing.T) {
	svc, _ := newTestService(t, &fixedCodes{codes: []string{"mine"}}, &countingLocator{})
	ctx := context.Background()

	_, err := svc.Shorten(ctx, 1, "https://example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "mine", 2), store.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "mine", 1))

	_, err = svc.Visit(ctx, "mine", "8.8.8.8")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVisit_RedirectCacheFilledAndInvalidatedOnDelete(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	svc, _, db := newTestServiceWithCache(t, &fixedCodes{codes: []string{"hot1"}}, &countingLocator{location: "Unknown"}, rdb)
	ctx := context.Background()

	res, err := svc.Shorten(ctx, 1, "https://example.com/hot")
	require.NoError(t, err)
	assert.False(t, mr.Exists(linkCachePrefix+"hot1"))

	target, err := svc.Visit(ctx, "hot1", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hot", target)
	assert.True(t, mr.Exists(linkCachePrefix+"hot1"))
	assert.Greater(t, mr.TTL(linkCachePrefix+"hot1"), time.Duration(0))

	// 命中缓存的跳转同样记录点击
	target, err = svc.Visit(ctx, "hot1", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hot", target)
	assert.Equal(t, int64(2), testutil.CountClicks(t, db, res.Link.ID))

	require.NoError(t, svc.Delete(ctx, "hot1", 1))
	assert.False(t, mr.Exists(linkCachePrefix+"hot1"))

	_, err = svc.Visit(ctx, "hot1", "8.8.8.8")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVisit_CacheUnavailableFallsBackToStore(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	svc, _, db := newTestServiceWithCache(t, &fixedCodes{codes: []string{"cold"}}, &countingLocator{location: "Unknown"}, rdb)
	ctx := context.Background()

	res, err := svc.Shorten(ctx, 1, "https://example.com/cold")
	require.NoError(t, err)

	mr.Close()
	target, err := svc.Visit(ctx, "cold", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cold", target)
	assert.Equal(t, int64(1), testutil.CountClicks(t, db, res.Link.ID))
}
