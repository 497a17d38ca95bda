package util

import "sync"

// Lazy is a compute-once cell.  The first call to Get runs the compute function
// and every later call returns the memoized result, even if the computation
// failed.  A Lazy is safe for concurrent use.
type Lazy[T any] struct {
	once    sync.Once
	compute func() (T, error)

	value T
	err   error
}

// NewLazy creates a new compute-once cell over the given function.
func NewLazy[T any](compute func() (T, error)) *Lazy[T] {
	return &Lazy[T]{compute: compute}
}

// Get returns the value of the cell, computing it if necessary.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.compute()

		// release anything captured by the closure
		l.compute = nil
	})

	return l.value, l.err
}
