package testutil

import (
	"sync"
	"sync/atomic"
)

// RunConcurrent executes fn across goroutines and reports how many calls
// returned nil alongside every error encountered. It replaces the WaitGroup
// plus counter boilerplate in concurrency tests.
func RunConcurrent(goroutines int, fn func(idx int) error) (successes int, errs []error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			ok.Add(1)
		}(i)
	}

	wg.Wait()
	return int(ok.Load()), errs
}
