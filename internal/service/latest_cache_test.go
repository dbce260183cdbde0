package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"biotrack/internal/core/cache"
	"biotrack/internal/domain"
	"biotrack/internal/repo/memory"
	"biotrack/internal/service"
)

func redisLatest(t *testing.T) (*service.RedisLatestCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return service.NewRedisLatestCache(c, 5*time.Minute, nil), mr
}

func measureLoader(m *domain.Measure, calls *int) func(context.Context) (*domain.Measure, error) {
	return func(context.Context) (*domain.Measure, error) {
		*calls++
		return m, nil
	}
}

func TestRedisLatestCache_HitAndForget(t *testing.T) {
	lc, _ := redisLatest(t)
	ctx := context.Background()

	calls := 0
	old := &domain.Measure{ID: 1, UserID: 7, WeightKg: 70}
	for i := 0; i < 2; i++ {
		got, err := lc.Latest(ctx, 7, measureLoader(old, &calls))
		if err != nil || got == nil || got.ID != 1 {
			t.Fatalf("round %d: got (%v, %v)", i, got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a cache hit, loaded %d times", calls)
	}

	lc.Forget(ctx, 7)
	newer := &domain.Measure{ID: 2, UserID: 7, WeightKg: 68}
	got, err := lc.Latest(ctx, 7, measureLoader(newer, &calls))
	if err != nil || got == nil || got.ID != 2 || calls != 2 {
		t.Fatalf("after forget got (%v, %v) with %d loads", got, err, calls)
	}
}

func TestRedisLatestCache_CachesAbsence(t *testing.T) {
	lc, _ := redisLatest(t)
	ctx := context.Background()

	calls := 0
	for i := 0; i < 2; i++ {
		got, err := lc.Latest(ctx, 3, measureLoader(nil, &calls))
		if err != nil || got != nil {
			t.Fatalf("round %d: got (%v, %v)", i, got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("absence not cached, loaded %d times", calls)
	}
}

// A write that lands while a miss is loading must not leave the old value
// behind for the rest of the TTL.
func TestRedisLatestCache_WriteDuringLoadIsNotServedStale(t *testing.T) {
	lc, _ := redisLatest(t)
	ctx := context.Background()

	old := &domain.Measure{ID: 1, UserID: 7, WeightKg: 70}
	got, err := lc.Latest(ctx, 7, func(ctx context.Context) (*domain.Measure, error) {
		lc.Forget(ctx, 7)
		return old, nil
	})
	if err != nil || got == nil || got.ID != 1 {
		t.Fatalf("first read got (%v, %v)", got, err)
	}

	calls := 0
	newer := &domain.Measure{ID: 2, UserID: 7, WeightKg: 68}
	got, err = lc.Latest(ctx, 7, measureLoader(newer, &calls))
	if err != nil || got == nil || got.ID != 2 || calls != 1 {
		t.Fatalf("after concurrent write got (%v, %v) with %d loads", got, err, calls)
	}
}

func TestMeasureService_LatestThroughRedis(t *testing.T) {
	lc, _ := redisLatest(t)
	st := memory.NewStore()
	users := service.NewUserService(st.Users(), st.Measures(), fakeHasher{}, service.UserConfig{Cache: lc})
	measures := service.NewMeasureService(st.Users(), st.Measures(), lc, nil)
	ctx := context.Background()

	u, err := users.Create(ctx, userReq("Ana", "ana@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := measures.Create(ctx, u.ID, measureReq(10, 70, 175)); err != nil {
		t.Fatal(err)
	}
	if m, err := measures.Latest(ctx, u.ID); err != nil || m == nil || m.WeightKg != 70 {
		t.Fatalf("latest = (%v, %v)", m, err)
	}

	if _, err := measures.Create(ctx, u.ID, measureReq(20, 68, 175)); err != nil {
		t.Fatal(err)
	}
	m, err := measures.Latest(ctx, u.ID)
	if err != nil || m == nil || m.WeightKg != 68 {
		t.Fatalf("latest after write = (%v, %v)", m, err)
	}

	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := measures.Latest(ctx, u.ID); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("latest after delete: %v", err)
	}
}
