package checked

import "github.com/partite-ai/checkedptr/rc"

// SelfReferencing is the capability a view type T has when its object embeds
// rc.EnableSharedFromThis. Functions constrained by it do not compile for
// other types.
type SelfReferencing[T any] interface {
	rc.SharedFromThiser[T]
}

// WithoutSelfReference is the method set shared by every handle.
type WithoutSelfReference[T any] interface {
	Get() T
	Deref() (T, error)
	Must() T
	UseCount() int64
	Valid() bool
}

// WithSelfReference is WithoutSelfReference plus SharedFromThis. Only
// SelfRefHandle implements it.
type WithSelfReference[T any] interface {
	WithoutSelfReference[T]
	SharedFromThis() *Handle[T]
}

var _ WithoutSelfReference[*struct{}] = (*Handle[*struct{}])(nil)

// SelfRefHandle is a Handle whose view type supports SharedFromThis.
type SelfRefHandle[T SelfReferencing[T]] struct {
	*Handle[T]
}

// WithSelf exposes the self-reference capability of h.
func WithSelf[T SelfReferencing[T]](h *Handle[T]) SelfRefHandle[T] {
	return SelfRefHandle[T]{Handle: h}
}

// SharedFromThis returns a new owner of the object, sharing its control block.
//
// It is not checked: calling it on an empty handle panics with a nil
// dereference rather than a *NullHandleError. Test Valid first.
func (s SelfRefHandle[T]) SharedFromThis() *Handle[T] {
	return Adopt(s.Get().SharedFromThis())
}

// SharedFromThis is WithSelf(h).SharedFromThis().
func SharedFromThis[T SelfReferencing[T]](h *Handle[T]) *Handle[T] {
	return WithSelf(h).SharedFromThis()
}
