// Package shutdownqueue collects cleanup tasks and drains them in LIFO
// order at the end of main.
//
// Register with Add from anywhere; drain once with Shutdown. Task panics
// are recovered and reported, and all task errors come back joined.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error if
// it cannot finish in time.
type Task func(ctx context.Context) error

var (
	mu     sync.Mutex
	tasks  []Task
	closed bool
)

// Add registers a task to run on Shutdown. Nil tasks and registrations
// after shutdown started are ignored.
func Add(t Task) {
	if t == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if closed {
		return
	}

	tasks = append(tasks, t)
}

// Shutdown drains all registered tasks, newest first. It is idempotent;
// if ctx ends mid-drain the remaining tasks are skipped and the context
// error is included in the result.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	pending := tasks
	tasks = nil
	closed = true
	mu.Unlock()

	var errs []error

	for i := len(pending) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, pending[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
