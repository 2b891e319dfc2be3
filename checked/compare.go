package checked

import (
	"cmp"
	"fmt"
	"hash/maphash"
	"unsafe"
)

// Key is the address identity of a handle's view. It is comparable and can
// be used as a map key. The zero Key identifies empty handles.
type Key struct {
	p unsafe.Pointer
}

// Key returns h's address identity.
func (h *Handle[T]) Key() Key {
	return Key{p: h.Addr()}
}

// Addr returns the address h's view refers to, or nil when h is empty.
func (h *Handle[T]) Addr() unsafe.Pointer {
	return h.ptr().Addr()
}

// IsNil reports whether h is empty.
func IsNil[T any](h *Handle[T]) bool {
	return !h.Valid()
}

// Equal reports whether a and b refer to the same address. Two empty handles
// are equal. Values are never compared.
func Equal[T, U any](a *Handle[T], b *Handle[U]) bool {
	return a.Addr() == b.Addr()
}

// Compare orders handles by address. Empty handles sort before all others.
func Compare[T, U any](a *Handle[T], b *Handle[U]) int {
	return cmp.Compare(uintptr(a.Addr()), uintptr(b.Addr()))
}

// Less reports whether a sorts before b under Compare.
func Less[T, U any](a *Handle[T], b *Handle[U]) bool {
	return Compare(a, b) < 0
}

// Hash returns a hash of h's address identity, consistent with Equal.
func Hash[T any](seed maphash.Seed, h *Handle[T]) uint64 {
	return maphash.Comparable(seed, uintptr(h.Addr()))
}

// String renders the address h refers to, or "<nil>" when h is empty. The
// object itself is never formatted.
func (h *Handle[T]) String() string {
	a := h.Addr()
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%p", a)
}

// Format implements fmt.Formatter. %v and %s render String, never the object.
// fmt handles %p itself, so %p shows the address of the *Handle, not of its
// object.
func (h *Handle[T]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		fmt.Fprint(f, h.String())
	default:
		fmt.Fprintf(f, "%%!%c(checked.Handle=%s)", verb, h.String())
	}
}
