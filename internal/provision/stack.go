package provision

import (
	"context"
	"fmt"
	"sync"
)

// Stack is a LIFO queue of teardown funcs accumulated while a driver creates
// resources. The first resource created is the last one torn down.
type Stack struct {
	mu    sync.Mutex
	stack []func(context.Context) error
	done  chan struct{}
}

func NewStack() *Stack {
	return &Stack{
		stack: make([]func(context.Context) error, 0),
		done:  make(chan struct{}),
	}
}

// Add registers a teardown func. Adding after Teardown has run is an error.
func (s *Stack) Add(f func(ctx context.Context) error) error {
	select {
	case <-s.done:
		return fmt.Errorf("teardown already done")
	default:
		s.mu.Lock()
		defer s.mu.Unlock()

		s.stack = append(s.stack, f)
		return nil
	}
}

// Empty reports whether no teardown funcs have been registered.
func (s *Stack) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack) == 0
}

// Teardown runs all registered funcs in reverse order. It can run at most
// once; subsequent calls fail.
func (s *Stack) Teardown(ctx context.Context) error {
	s.mu.Lock()
	select {
	case <-ctx.Done():
		s.mu.Unlock()
		return ctx.Err()
	case <-s.done:
		s.mu.Unlock()
		return fmt.Errorf("teardown already done")
	default:
		close(s.done)
		s.mu.Unlock()
	}

	var errs []error
	for i := len(s.stack) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.stack[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to tear down resources: %v", errs)
	}

	return nil
}
