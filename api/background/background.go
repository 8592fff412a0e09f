package background

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrShuttingDown = errors.New("background tasks are shutting down")

// Background tracks fire-and-forget goroutines spawned by handlers so that
// the server can wait for them before exiting.
type Background struct {
	log      logrus.FieldLogger
	wg       sync.WaitGroup
	mu       sync.Mutex
	shutdown bool
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

func (b *Background) Add(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return ErrShuttingDown
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		defer func() {
			if rec := recover(); rec != nil {
				b.log.Errorf("background task panic: %v", rec)
			}
		}()

		if err := fn(); err != nil {
			b.log.WithError(err).Error("background task failed")
		}
	}()

	return nil
}

func (b *Background) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.shutdown = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
