package rc

import "sync/atomic"

// SharedFromThiser is implemented by objects that can hand out new owners of
// themselves. Embedding EnableSharedFromThis provides it.
type SharedFromThiser[T any] interface {
	SharedFromThis() *Ptr[T]
}

type selfAttacher interface {
	attachSelf(obj any, c *control)
}

func attachSelf[T any](v T, c *control) {
	if a, ok := any(v).(selfAttacher); ok {
		a.attachSelf(any(v), c)
	}
}

// EnableSharedFromThis is embedded in E to let a *E obtain an owning Ptr to
// itself. It holds no ownership: the back reference is recorded the first time
// a Ptr takes ownership of the *E, and is replaced only after every owner of
// that Ptr's control block has gone away.
//
//	type Session struct {
//		rc.EnableSharedFromThis[Session]
//		...
//	}
type EnableSharedFromThis[E any] struct {
	self *E
	ctrl atomic.Pointer[control]
}

func (s *EnableSharedFromThis[E]) attachSelf(obj any, c *control) {
	self, ok := obj.(*E)
	if !ok {
		return
	}
	if cur := s.ctrl.Load(); cur != nil && cur.count() > 0 {
		return
	}
	s.self = self
	s.ctrl.Store(c)
}

// SharedFromThis returns a new owner of the enclosing object. The result is
// empty when no Ptr owns the object, or when all of its owners are gone.
func (s *EnableSharedFromThis[E]) SharedFromThis() *Ptr[*E] {
	p := &Ptr[*E]{}
	c := s.ctrl.Load()
	if c != nil && c.tryRetain() {
		p.set(s.self, c)
	}
	return p
}
