// Package checked provides Handle, a shared-ownership pointer whose every
// dereference is checked.
//
// A Handle wraps an rc.Ptr. Construction, copying (Clone), moving (Move),
// aliasing and casting behave as they do for rc.Ptr and share its control
// block. Deref and Must are the difference: on an empty handle they fail
// with a *NullHandleError instead of handing back a nil view.
//
// The checks stop at dereference. Three things are deliberately left to the
// caller: giving New a pointer that is already owned, calling SharedFromThis
// on an empty handle, and using a DynamicCast result without testing it.
//
// Views returned by Get, Deref and Must do not keep the handle alive. A handle
// that is no longer used may be released by the garbage collector, destroying
// its object, even while one of its views is still in use. Keep the handle
// reachable, usually with defer h.Release().
package checked

import (
	"github.com/partite-ai/checkedptr/internal/util"
	"github.com/partite-ai/checkedptr/rc"
)

// Handle is a checked shared-ownership pointer with view type T. T must be a
// pointer, interface, map, channel or unsafe.Pointer type.
//
// Handles are used through pointers. The zero value is an empty handle. A nil
// *Handle behaves as an empty handle for every read-only method and for Reset.
type Handle[T any] struct {
	_ util.NoCopy
	p *rc.Ptr[T]
}

// Null returns an empty handle.
func Null[T any]() *Handle[T] {
	return &Handle[T]{}
}

// New returns a handle owning p, or an empty handle if p is nil.
func New[E any](p *E, opts ...rc.Option[*E]) *Handle[*E] {
	return &Handle[*E]{p: rc.New(p, opts...)}
}

// Make allocates a zero E owned by a new handle.
func Make[E any](opts ...rc.Option[*E]) *Handle[*E] {
	return &Handle[*E]{p: rc.Make(opts...)}
}

// Own returns a handle owning the object v refers to.
func Own[T any](v T, opts ...rc.Option[T]) *Handle[T] {
	return &Handle[T]{p: rc.Own(v, opts...)}
}

// FromShared returns a handle sharing ownership with p.
func FromShared[T any](p *rc.Ptr[T]) *Handle[T] {
	return &Handle[T]{p: p.Clone()}
}

// Adopt moves p's ownership into a new handle and leaves p empty.
func Adopt[T any](p *rc.Ptr[T]) *Handle[T] {
	return &Handle[T]{p: p.Move()}
}

// ConvertShared returns a handle sharing ownership with p through the view
// conv(p.Get()).
func ConvertShared[T, U any](p *rc.Ptr[U], conv func(U) T) *Handle[T] {
	if !p.Valid() {
		return Null[T]()
	}
	return &Handle[T]{p: rc.Alias(p, conv(p.Get()))}
}

// Convert returns a new owner of r's object viewed through conv(r.Get()).
//
//	var e *checked.Handle[Employee] = checked.Convert(dev, func(d *Developer) Employee { return d })
func Convert[T, U any](r *Handle[U], conv func(U) T) *Handle[T] {
	return ConvertShared(r.ptr(), conv)
}

// ConvertMove is like Convert but moves r's ownership. r is always left empty.
func ConvertMove[T, U any](r *Handle[U], conv func(U) T) *Handle[T] {
	if !r.Valid() {
		r.Reset()
		return Null[T]()
	}
	return AliasMove(r, conv(r.Get()))
}

// Alias returns a handle sharing r's control block that exposes v. v must point
// into the object graph owned by r, for example at an embedded field.
func Alias[T, U any](r *Handle[U], v T) *Handle[T] {
	return &Handle[T]{p: rc.Alias(r.ptr(), v)}
}

// AliasMove is like Alias but moves r's ownership. r is always left empty.
func AliasMove[T, U any](r *Handle[U], v T) *Handle[T] {
	if r == nil {
		return Null[T]()
	}
	return &Handle[T]{p: rc.AliasMove(r.ptr(), v)}
}

func (h *Handle[T]) ptr() *rc.Ptr[T] {
	if h == nil {
		return nil
	}
	return h.p
}

// mut returns the underlying Ptr, creating it for a zero Handle.
func (h *Handle[T]) mut() *rc.Ptr[T] {
	if h.p == nil {
		h.p = &rc.Ptr[T]{}
	}
	return h.p
}

// Clone returns a new owner of h's object. The use count goes up by one.
func (h *Handle[T]) Clone() *Handle[T] {
	return &Handle[T]{p: h.ptr().Clone()}
}

// Move returns a handle holding h's ownership and leaves h empty.
func (h *Handle[T]) Move() *Handle[T] {
	return &Handle[T]{p: h.ptr().Move()}
}

// Assign makes h another owner of r's object, releasing what h held.
func (h *Handle[T]) Assign(r *Handle[T]) {
	h.mut().Assign(r.ptr())
}

// AssignMove moves r's ownership into h, releasing what h held. r is left
// empty.
func (h *Handle[T]) AssignMove(r *Handle[T]) {
	if h == r {
		return
	}
	h.mut().AssignMove(r.ptr())
}

// Reset releases h's ownership and leaves h empty.
func (h *Handle[T]) Reset() {
	h.ptr().Reset()
}

// Release is Reset.
func (h *Handle[T]) Release() {
	h.Reset()
}

// ResetTo releases h's ownership and takes ownership of the object v refers to.
func (h *Handle[T]) ResetTo(v T, opts ...rc.Option[T]) {
	h.mut().ResetTo(v, opts...)
}

// Swap exchanges the objects owned by h and o.
func (h *Handle[T]) Swap(o *Handle[T]) {
	h.p, o.p = o.p, h.p
}

// Swap exchanges the objects owned by a and b.
func Swap[T any](a, b *Handle[T]) {
	a.Swap(b)
}

// Get returns the view without checking it. It is the zero value when h is
// empty.
func (h *Handle[T]) Get() T {
	return h.ptr().Get()
}

// UseCount returns the number of owners of h's object, or 0 when h is empty.
func (h *Handle[T]) UseCount() int64 {
	return h.ptr().UseCount()
}

// Valid reports whether h owns an object.
func (h *Handle[T]) Valid() bool {
	return h.ptr().Valid()
}

// Deref returns the view, or a *NullHandleError if h is empty.
func (h *Handle[T]) Deref() (T, error) {
	if !h.Valid() {
		var zero T
		return zero, nullHandle[T]()
	}
	return h.p.Get(), nil
}

// Must returns the view and panics with a *NullHandleError if h is empty.
func (h *Handle[T]) Must() T {
	v, err := h.Deref()
	if err != nil {
		panic(err)
	}
	return v
}

// Shared returns a new rc.Ptr sharing ownership with h.
func (h *Handle[T]) Shared() *rc.Ptr[T] {
	return h.ptr().Clone()
}
