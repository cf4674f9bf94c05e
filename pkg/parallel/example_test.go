package parallel_test

import (
	"fmt"
	"log"

	"github.com/vnykmshr/forkjoin/pkg/forkjoin"
	"github.com/vnykmshr/forkjoin/pkg/parallel"
)

// Example demonstrates a parallel reduction over an index range.
func Example() {
	pool := forkjoin.New(4)
	defer func() { <-pool.Shutdown() }()

	sum, err := parallel.Reduce(pool, 0, 10_000, 256,
		func(lo, hi int) int64 {
			var s int64
			for i := lo; i < hi; i++ {
				s += int64(i)
			}
			return s
		},
		func(a, b int64) int64 { return a + b },
	)
	if err != nil {
		log.Fatalf("reduce failed: %v", err)
	}
	fmt.Println(sum)

	// Output: 49995000
}

// ExampleMap demonstrates transforming a slice in parallel.
func ExampleMap() {
	pool := forkjoin.New(2)
	defer func() { <-pool.Shutdown() }()

	squares, err := parallel.Map(pool, []int{1, 2, 3, 4, 5}, 2,
		func(n int) int { return n * n })
	if err != nil {
		log.Fatalf("map failed: %v", err)
	}
	fmt.Println(squares)

	// Output: [1 4 9 16 25]
}

// ExampleDo demonstrates running independent thunks concurrently.
func ExampleDo() {
	pool := forkjoin.New(2)
	defer func() { <-pool.Shutdown() }()

	var a, b int
	err := parallel.Do(pool,
		func() error { a = 1; return nil },
		func() error { b = 2; return nil },
	)
	if err != nil {
		log.Fatalf("do failed: %v", err)
	}
	fmt.Println(a + b)

	// Output: 3
}
