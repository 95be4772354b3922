package utils

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// ChunkWorkFunc processes the items in [from, to) of a batch.
type ChunkWorkFunc func(ctx context.Context, from, to int) error

// ParallelChunks splits totalSize items into at most ParallelFactor contiguous chunks and runs work on
// each chunk in its own goroutine. The last chunk takes the remainder. The first failing chunk cancels
// the context handed to the others; the returned error combines every failure except the cancellations
// it caused.
func ParallelChunks(ctx context.Context, totalSize int, work ChunkWorkFunc) error {
	if totalSize <= 0 {
		return ctx.Err()
	}
	numChunks := ParallelFactor
	if numChunks > totalSize {
		numChunks = totalSize
	}
	chunkSize := totalSize / numChunks
	extra := totalSize % numChunks

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	var bigError error
	var bigErrorMutex sync.Mutex
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		if bigError == nil || !errors.Is(err, context.Canceled) {
			bigError = multierr.Combine(bigError, err)
		}
	}

	helper := func(from, to int) {
		defer func() {
			if thePanic := recover(); thePanic != nil {
				storeError(errors.Errorf("got panic processing items [%d, %d): %v", from, to, thePanic))
				cancel()
			}
			wg.Done()
		}()
		if err := work(ctx, from, to); err != nil {
			storeError(err)
			cancel()
		}
	}

	wg.Add(numChunks)
	from := 0
	for chunk := 0; chunk < numChunks; chunk++ {
		to := from + chunkSize
		if chunk == numChunks-1 {
			to += extra
		}
		go helper(from, to)
		from = to
	}
	wg.Wait()
	return bigError
}
