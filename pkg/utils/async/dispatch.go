package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
)

// Dispatcher runs handlers in the background and tracks them so a server
// can wait for in-flight work before exiting.
type Dispatcher struct {
	wg sync.WaitGroup
}

var defaultDispatcher = &Dispatcher{}

// Dispatch executes handler asynchronously on the default dispatcher
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	defaultDispatcher.Dispatch(ctx, handler)
}

// Wait blocks until handlers of the default dispatcher finish or ctx is done
func Wait(ctx context.Context) error {
	return defaultDispatcher.Wait(ctx)
}

// Dispatch executes a handler function asynchronously with proper context and panic recovery
//
// Behavior:
//   - Creates a new background context with preserved logger, so cancellation
//     of ctx (e.g. the end of an HTTP request) does not stop the handler
//   - Recovers from panics and logs them
//   - Logs errors returned by handler
func (d *Dispatcher) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(newCtx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger := ctxlog.From(newCtx)
			logger.Error("error in async handler", "error", err)
		}
	}()
}

// Wait blocks until every dispatched handler returned or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newBackgroundContext creates a new background context preserving the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
