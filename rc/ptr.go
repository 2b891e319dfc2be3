// Package rc implements atomically reference-counted shared ownership of heap
// objects.
//
// A Ptr owns one strong reference to a control block and exposes a typed view
// of the owned object. Many Ptrs, possibly with different view types, may share
// a control block. The object's destroy step runs when the last of them is
// released.
//
// Ptrs are used through pointers. Copying a Ptr by value does not create a new
// owner; use Clone. A nil *Ptr behaves as an empty Ptr for every read-only
// method and for Reset.
//
// A Ptr that becomes unreachable while it still owns is released by the
// garbage collector. Reachability is not scope: a view returned by Get does not
// keep its Ptr alive, so once the Ptr itself is no longer used the object may
// be destroyed while the view is still in use. Keep the Ptr reachable for as
// long as its views are used, with defer p.Release() or runtime.KeepAlive(p).
package rc

import (
	"reflect"
	"runtime"
	"unsafe"

	"github.com/partite-ai/checkedptr/internal/addr"
	"github.com/partite-ai/checkedptr/internal/util"
)

// Ptr is a shared-ownership pointer with view type T. T must be a pointer,
// interface, map, channel or unsafe.Pointer type.
//
// The zero value is an empty Ptr ready to use.
type Ptr[T any] struct {
	_       util.NoCopy
	v       T
	ctrl    *control
	cleanup runtime.Cleanup
}

// New takes ownership of p. A nil p yields an empty Ptr.
//
// p must not be owned by another control block.
func New[E any](p *E, opts ...Option[*E]) *Ptr[*E] {
	return Own(p, opts...)
}

// Make allocates a zero E and takes ownership of it.
func Make[E any](opts ...Option[*E]) *Ptr[*E] {
	return New(new(E), opts...)
}

// Own takes ownership of the object that v refers to. A nil v yields an empty
// Ptr.
func Own[T any](v T, opts ...Option[T]) *Ptr[T] {
	p := &Ptr[T]{}
	p.own(v, opts)
	return p
}

// Alias returns a Ptr that shares r's control block and exposes v. v must stay
// valid for as long as the object owned by r. The result is empty when r or v
// is empty.
func Alias[T, U any](r *Ptr[U], v T) *Ptr[T] {
	addr.CheckValue(v)
	p := &Ptr[T]{}
	if r == nil || r.ctrl == nil || addr.IsNil(v) {
		return p
	}
	r.ctrl.retain()
	p.set(v, r.ctrl)
	return p
}

// AliasMove is like Alias but takes r's ownership instead of sharing it. r is
// always left empty.
func AliasMove[T, U any](r *Ptr[U], v T) *Ptr[T] {
	addr.CheckValue(v)
	p := &Ptr[T]{}
	if r == nil {
		return p
	}
	_, c := r.take()
	if c == nil {
		return p
	}
	if addr.IsNil(v) {
		c.release()
		return p
	}
	p.set(v, c)
	return p
}

// SameOwner reports whether a and b share a control block.
func SameOwner[T, U any](a *Ptr[T], b *Ptr[U]) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ctrl != nil && a.ctrl == b.ctrl
}

func (p *Ptr[T]) own(v T, opts []Option[T]) {
	addr.CheckValue(v)
	if addr.IsNil(v) {
		return
	}
	o := buildOptions(opts)
	c := newControl(any(v), reflect.TypeFor[T](), o.deleterFunc(), o.logger)
	attachSelf(v, c)
	p.set(v, c)
}

// set installs an ownership unit already counted in c.
func (p *Ptr[T]) set(v T, c *control) {
	p.v = v
	p.ctrl = c
	p.cleanup = runtime.AddCleanup(p, releaseUnreachable, c)
}

// take detaches the ownership unit without releasing it.
func (p *Ptr[T]) take() (T, *control) {
	var zero T
	v, c := p.v, p.ctrl
	if c != nil {
		p.cleanup.Stop()
	}
	p.v = zero
	p.ctrl = nil
	p.cleanup = runtime.Cleanup{}
	return v, c
}

func releaseUnreachable(c *control) {
	c.log().Info("releasing unreachable pointer", "type", c.typ)
	c.release()
}

// Clone returns a new owner of the same object.
func (p *Ptr[T]) Clone() *Ptr[T] {
	q := &Ptr[T]{}
	if p == nil || p.ctrl == nil {
		return q
	}
	p.ctrl.retain()
	q.set(p.v, p.ctrl)
	return q
}

// Move returns a Ptr holding p's ownership and leaves p empty. The use count
// does not change.
func (p *Ptr[T]) Move() *Ptr[T] {
	q := &Ptr[T]{}
	if p == nil {
		return q
	}
	if v, c := p.take(); c != nil {
		q.set(v, c)
	}
	return q
}

// Assign releases p's ownership and makes p another owner of r's object.
func (p *Ptr[T]) Assign(r *Ptr[T]) {
	if r == nil || r.ctrl == nil {
		p.Reset()
		return
	}
	v, c := r.v, r.ctrl
	c.retain()
	p.Reset()
	p.set(v, c)
}

// AssignMove releases p's ownership and moves r's ownership into p.
func (p *Ptr[T]) AssignMove(r *Ptr[T]) {
	if p == r {
		return
	}
	if r == nil {
		p.Reset()
		return
	}
	v, c := r.take()
	p.Reset()
	if c != nil {
		p.set(v, c)
	}
}

// Reset releases p's ownership and leaves p empty.
func (p *Ptr[T]) Reset() {
	if p == nil {
		return
	}
	if _, c := p.take(); c != nil {
		c.release()
	}
}

// Release is Reset.
func (p *Ptr[T]) Release() {
	p.Reset()
}

// ResetTo releases p's ownership and takes ownership of the object v refers to.
func (p *Ptr[T]) ResetTo(v T, opts ...Option[T]) {
	p.AssignMove(Own(v, opts...))
}

// Swap exchanges the objects owned by p and o.
func (p *Ptr[T]) Swap(o *Ptr[T]) {
	if p == o {
		return
	}
	pv, pc := p.take()
	ov, oc := o.take()
	if oc != nil {
		p.set(ov, oc)
	}
	if pc != nil {
		o.set(pv, pc)
	}
}

// Get returns the view without affecting ownership. It is the zero value when
// p is empty.
func (p *Ptr[T]) Get() T {
	if p == nil {
		var zero T
		return zero
	}
	return p.v
}

// UseCount returns the number of owners of p's object, or 0 when p is empty.
func (p *Ptr[T]) UseCount() int64 {
	if p == nil || p.ctrl == nil {
		return 0
	}
	return p.ctrl.count()
}

// Valid reports whether p owns an object.
func (p *Ptr[T]) Valid() bool {
	return p != nil && p.ctrl != nil
}

// Addr returns the address the view refers to, or nil when p is empty.
func (p *Ptr[T]) Addr() unsafe.Pointer {
	if p == nil || p.ctrl == nil {
		return nil
	}
	return addr.Of(p.v)
}
