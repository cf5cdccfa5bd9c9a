package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"judgemicro/internal/judge/model"
)

func testCache(t *testing.T) (*VerdictCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, time.Minute), mr
}

func cacheSubmission(source string) model.Submission {
	return model.Submission{
		Language:   model.LanguageC,
		SourceCode: source,
		Case: model.CaseConfig{
			Params:       []model.Parameter{{Name: "a", Type: model.TypeInt, InputValue: int64(3)}},
			Expected:     map[string]interface{}{"a": int64(6)},
			FunctionType: model.TypeInt,
		},
	}
}

func TestCacheMissThenHit(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	sub := cacheSubmission("int solve(int *a){*a=*a*2;return 0;}")

	if _, ok, err := c.Get(ctx, sub); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	match := true
	v := model.Verdict{Status: model.StatusSuccess, Match: &match}
	if err := c.Put(ctx, sub, v); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, sub)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Status != model.StatusSuccess || got.Match == nil || !*got.Match {
		t.Fatalf("cached verdict = %+v", got)
	}
}

func TestCacheKeyCoversSource(t *testing.T) {
	a := cacheSubmission("int solve(int *a){*a=1;return 0;}")
	b := cacheSubmission("int solve(int *a){*a=2;return 0;}")
	if Key(a) == Key(b) {
		t.Fatal("different sources must not share a cache key")
	}

	c := cacheSubmission("int solve(int *a){*a=1;return 0;}")
	if Key(a) != Key(c) {
		t.Fatal("identical submissions must share a cache key")
	}
}

func TestCacheSkipsTransientStatuses(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()
	sub := cacheSubmission("int solve(int *a){for(;;);}")

	if err := c.Put(ctx, sub, model.Verdict{Status: model.StatusTimeout}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, sub, model.Verdict{Status: model.StatusInternalError}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("transient verdicts must not be cached, keys = %v", mr.Keys())
	}
}

func TestCacheExpiry(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()
	sub := cacheSubmission("int solve(int *a){return 0;}")

	if err := c.Put(ctx, sub, model.Verdict{Status: model.StatusWrongAnswer}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, sub); ok {
		t.Fatal("entry must expire after TTL")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *VerdictCache
	ctx := context.Background()
	sub := cacheSubmission("x")
	if _, ok, err := c.Get(ctx, sub); ok || err != nil {
		t.Fatalf("nil cache get: ok=%v err=%v", ok, err)
	}
	if err := c.Put(ctx, sub, model.Verdict{Status: model.StatusSuccess}); err != nil {
		t.Fatalf("nil cache put: %v", err)
	}
}
