package parallel

import (
	"fmt"
	"testing"

	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
)

// BenchmarkReduce measures parallel reduction against per-grain
// scheduling overhead.
func BenchmarkReduce(b *testing.B) {
	pool := forkjoin.New(0)
	defer func() { <-pool.Shutdown() }()

	const n = 1 << 20
	for _, grain := range []int{256, 4096, 65536} {
		b.Run(fmt.Sprintf("grain=%d", grain), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, err := Reduce(pool, 0, n, grain,
					func(lo, hi int) int64 {
						var s int64
						for j := lo; j < hi; j++ {
							s += int64(j)
						}
						return s
					},
					func(a, b int64) int64 { return a + b },
				)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkFor measures parallel iteration over a slice of counters.
func BenchmarkFor(b *testing.B) {
	pool := forkjoin.New(0)
	defer func() { <-pool.Shutdown() }()

	out := make([]int64, 1<<18)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := For(pool, 0, len(out), 2048, func(j int) {
			out[j] = int64(j) * 3
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}
