package rc

import "github.com/go-logr/logr"

type options[T any] struct {
	deleter func(T)
	logger  *logr.Logger
}

// Option configures how an owned object is destroyed and logged.
type Option[T any] func(*options[T])

// WithDeleter replaces the default destroy step. The deleter receives the
// view the object was first owned through and runs exactly once.
func WithDeleter[T any](d func(T)) Option[T] {
	return func(o *options[T]) {
		o.deleter = d
	}
}

// WithLogger sets the logger for a single object, overriding SetLogger.
func WithLogger[T any](l logr.Logger) Option[T] {
	return func(o *options[T]) {
		o.logger = &l
	}
}

func buildOptions[T any](opts []Option[T]) options[T] {
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options[T]) deleterFunc() func(any) {
	if o.deleter == nil {
		return nil
	}
	d := o.deleter
	return func(obj any) {
		d(obj.(T))
	}
}
