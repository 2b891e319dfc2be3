package rc

import (
	"io"
	"reflect"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Destroyer is implemented by objects that release resources when their last
// owner goes away.
type Destroyer interface {
	Destroy()
}

type control struct {
	strong  atomic.Int64
	obj     any
	typ     reflect.Type
	deleter func(any)
	logger  *logr.Logger
}

func newControl(obj any, typ reflect.Type, deleter func(any), logger *logr.Logger) *control {
	c := &control{
		obj:     obj,
		typ:     typ,
		deleter: deleter,
		logger:  logger,
	}
	c.strong.Store(1)
	return c
}

func (c *control) retain() {
	if c.strong.Add(1) <= 1 {
		panic("rc: retain of released object")
	}
}

// tryRetain takes a new strong reference only while the object is still live.
func (c *control) tryRetain() bool {
	for {
		n := c.strong.Load()
		if n <= 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *control) release() {
	n := c.strong.Add(-1)
	switch {
	case n == 0:
		c.destroy()
	case n < 0:
		panic("rc: too many releases")
	}
}

func (c *control) count() int64 {
	return c.strong.Load()
}

func (c *control) destroy() {
	obj := c.obj
	c.obj = nil
	c.log().V(1).Info("destroying object", "type", c.typ)
	if c.deleter != nil {
		c.deleter(obj)
		return
	}
	switch o := obj.(type) {
	case Destroyer:
		o.Destroy()
	case io.Closer:
		if err := o.Close(); err != nil {
			c.log().Error(err, "failed to close object", "type", c.typ)
		}
	}
}

func (c *control) log() logr.Logger {
	if c.logger != nil {
		return *c.logger
	}
	return logger()
}
