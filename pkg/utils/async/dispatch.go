package async

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a handler in a new goroutine with panic recovery. The
// handler gets a fresh background context that preserves the logger of the
// original context, so cancellation of the trigger does not abort the work.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
		}
	}()
}

// Guard serializes dispatches: while a dispatched handler is still running,
// further dispatches are dropped. Used by the watcher so a slow build never
// piles up behind the next timer tick.
type Guard struct {
	busy atomic.Bool
}

// NewGuard creates a Guard
func NewGuard() *Guard {
	return &Guard{}
}

// Dispatch runs handler like the package-level Dispatch, unless a previous
// handler dispatched through this Guard has not finished yet. Returns false
// when the dispatch was dropped.
func (g *Guard) Dispatch(ctx context.Context, handler func(ctx context.Context) error) bool {
	if !g.busy.CompareAndSwap(false, true) {
		return false
	}

	Dispatch(ctx, func(ctx context.Context) error {
		defer g.busy.Store(false)
		return handler(ctx)
	})

	return true
}

// newBackgroundContext creates a background context preserving the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
