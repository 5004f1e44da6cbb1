package async_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/buildgate/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		ctx := context.Background()
		done := make(chan struct{})

		async.Dispatch(ctx, func(ctx context.Context) error {
			close(done)
			return nil
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})

	t.Run("survives cancellation of the trigger context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		done := make(chan error, 1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			done <- ctx.Err()
			return nil
		})

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler was not executed")
		}
	})

	t.Run("recovers from panic", func(t *testing.T) {
		ctx := context.Background()

		async.Dispatch(ctx, func(ctx context.Context) error {
			panic("boom")
		})

		// A panicking handler must not crash the process; give the
		// goroutine time to hit the recover path
		time.Sleep(50 * time.Millisecond)
	})
}

func TestGuard(t *testing.T) {
	t.Run("drops dispatch while handler is running", func(t *testing.T) {
		ctx := context.Background()
		guard := async.NewGuard()

		release := make(chan struct{})
		started := make(chan struct{})

		ok := guard.Dispatch(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
		gt.Value(t, ok).Equal(true)

		<-started
		gt.Value(t, guard.Dispatch(ctx, func(ctx context.Context) error { return nil })).Equal(false)

		close(release)
	})

	t.Run("allows dispatch after handler finished", func(t *testing.T) {
		ctx := context.Background()
		guard := async.NewGuard()

		var wg sync.WaitGroup
		wg.Add(1)
		ok := guard.Dispatch(ctx, func(ctx context.Context) error {
			wg.Done()
			return nil
		})
		gt.Value(t, ok).Equal(true)
		wg.Wait()

		// The busy flag is cleared by the dispatched goroutine; poll
		// briefly to avoid a race with its defer
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if guard.Dispatch(ctx, func(ctx context.Context) error { return nil }) {
				return
			}
			time.Sleep(time.Millisecond)
		}
		t.Fatal("guard never became free again")
	})
}
