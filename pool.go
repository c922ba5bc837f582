package translator

import (
	"context"
	"sync"
)

// DefaultConcurrency is the number of provider calls a Translator keeps in
// flight when WithConcurrency is not given.
const DefaultConcurrency = 8

// pool bounds the number of leaf translations running at once. One pool is
// shared by every document a Translator works on.
type pool struct {
	sem chan struct{}
}

func newPool(size int) *pool {
	if size <= 0 {
		size = 1
	}
	return &pool{sem: make(chan struct{}, size)}
}

// run calls fn for 0..n-1 and waits for all calls to return. The first
// error cancels the context passed to the calls that are still pending and
// is returned.
func (p *pool) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for i := 0; i < n; i++ {
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			if firstErr != nil {
				return firstErr
			}
			return ctx.Err()
		}
		wg.Add(1)

		go func(i int) {
			defer func() {
				<-p.sem
				wg.Done()
			}()

			if err := fn(ctx, i); err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
