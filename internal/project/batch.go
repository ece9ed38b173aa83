package project

import (
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// Item is the outcome of a batch operation for one project.
type Item[T any] struct {
	Name  string
	Value T
	Err   error
}

// BatchResult holds per-project outcomes in project list order.
type BatchResult[T any] struct {
	Items []Item[T]
}

// Succeeded returns the number of items without an error.
func (b *BatchResult[T]) Succeeded() int {
	n := 0
	for _, it := range b.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of items with an error.
func (b *BatchResult[T]) Failed() int {
	return len(b.Items) - b.Succeeded()
}

// runBatch applies op to every name with at most m.Concurrency goroutines.
// A failing item is logged and recorded; it never stops the others.
func runBatch[T any](m *Manager, op string, names []string, fn func(name string) (T, error)) *BatchResult[T] {
	mapper := iter.Mapper[string, Item[T]]{MaxGoroutines: m.concurrency()}
	items := mapper.Map(names, func(name *string) Item[T] {
		v, err := fn(*name)
		if err != nil {
			m.logger.Warn(op+" failed", zap.String("project", *name), zap.Error(err))
		}
		return Item[T]{Name: *name, Value: v, Err: err}
	})
	return &BatchResult[T]{Items: items}
}
