package checked

import (
	"fmt"
	"reflect"

	"github.com/partite-ai/checkedptr/internal/addr"
)

// The casts below re-type the view and share r's control block through Alias.
// An empty r always yields an empty result.

// StaticCast views r's object as T. The caller guarantees the dynamic value
// of r's view is a T; otherwise StaticCast panics with the runtime's type
// assertion error.
func StaticCast[T, U any](r *Handle[U]) *Handle[T] {
	if !r.Valid() {
		return Null[T]()
	}
	return Alias(r, any(r.Get()).(T))
}

// DynamicCast views r's object as T if its dynamic value is a T, and returns
// an empty handle otherwise.
func DynamicCast[T, U any](r *Handle[U]) *Handle[T] {
	if !r.Valid() {
		return Null[T]()
	}
	v, ok := any(r.Get()).(T)
	if !ok {
		return Null[T]()
	}
	return Alias(r, v)
}

// ConstCast re-types a pointer view between element types that share an
// underlying type, such as Config and a read-only `type FrozenConfig Config`.
// It panics if *U is not convertible to *T.
func ConstCast[T, U any](r *Handle[*U]) *Handle[*T] {
	from, to := reflect.TypeFor[*U](), reflect.TypeFor[*T]()
	if !from.ConvertibleTo(to) {
		panic(fmt.Sprintf("checked: cannot const cast %v to %v", from, to))
	}
	if !r.Valid() {
		return Null[*T]()
	}
	return Alias(r, addr.Cast[*T](r.Get()))
}

// ReinterpretCast views the memory r points at as a T without any check. The
// caller is responsible for T and U having compatible layouts.
func ReinterpretCast[T, U any](r *Handle[*U]) *Handle[*T] {
	if !r.Valid() {
		return Null[*T]()
	}
	return Alias(r, addr.Cast[*T](r.Get()))
}
