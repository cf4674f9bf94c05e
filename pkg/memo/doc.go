// Package memo provides Redis-backed memoization for expensive task results.
//
// A Cache stores computed values under string keys with a TTL, so repeated
// invocations across application instances reuse earlier results instead of
// recomputing them. Do combines lookup and computation with SetNX-based
// locking so only one instance computes a missing value at a time.
//
// Basic usage:
//
//	cache, err := memo.New(memo.Config{
//		Redis:  redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
//		Prefix: "reports",
//		TTL:    10 * time.Minute,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cache.Close()
//
//	data, err := cache.Do(ctx, "daily-summary", func(ctx context.Context) ([]byte, error) {
//		return buildDailySummary(ctx)
//	})
//
// Values are opaque byte slices; callers handle their own encoding.
package memo
