package async

import (
	"context"
	"sync"

	"github.com/secmon-lab/actionboard/pkg/utils/errutil"
	"github.com/secmon-lab/actionboard/pkg/utils/logging"
)

var inflight sync.WaitGroup

// Dispatch executes a handler function asynchronously in a new goroutine
// It creates a background context and handles errors and panics
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	// Create a new background context but preserve logger
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler has returned. Used on shutdown
// and in tests.
func Wait() {
	inflight.Wait()
}
