// Package addr extracts the address identity of reference-shaped values.
package addr

import (
	"fmt"
	"reflect"
	"unsafe"
)

type shape uint8

const (
	shapeWord shape = iota + 1
	shapeInterface
)

func shapeOf(typ reflect.Type) shape {
	if typ == nil {
		return 0
	}
	switch typ.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan:
		return shapeWord
	case reflect.Interface:
		return shapeInterface
	}
	return 0
}

// Supported reports whether values of T carry an address that Of can read.
func Supported[T any]() bool {
	return shapeOf(reflect.TypeFor[T]()) != 0
}

// Check panics if T is not a pointer, interface, map, channel or unsafe.Pointer.
func Check[T any]() {
	if !Supported[T]() {
		panic(fmt.Sprintf("addr: %v is not a reference type", reflect.TypeFor[T]()))
	}
}

// CheckValue is Check plus, for interface types, a check that the dynamic
// value of a non-nil v is itself a reference type. Boxes of non-reference
// values may be shared by the runtime, so their data word is not an identity.
func CheckValue[T any](v T) {
	Check[T]()
	if shapeOf(reflect.TypeFor[T]()) != shapeInterface {
		return
	}
	if dyn := reflect.TypeOf(any(v)); dyn != nil && shapeOf(dyn) != shapeWord {
		panic(fmt.Sprintf("addr: %v is not a reference type", dyn))
	}
}

// Of returns the address v refers to. For interfaces this is the data word,
// which is the pointer itself when the dynamic value is pointer-shaped.
func Of[T any](v T) unsafe.Pointer {
	switch shapeOf(reflect.TypeFor[T]()) {
	case shapeWord:
		return *(*unsafe.Pointer)(unsafe.Pointer(&v))
	case shapeInterface:
		return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
	}
	panic(fmt.Sprintf("addr: %v is not a reference type", reflect.TypeFor[T]()))
}

// IsNil reports whether v refers to nothing. An interface holding a typed nil
// pointer counts as nil.
func IsNil[T any](v T) bool {
	return Of(v) == nil
}

// Cast reinterprets the word held by a pointer-shaped value as another
// pointer-shaped type. No layout checks are performed.
func Cast[To, From any](v From) To {
	if shapeOf(reflect.TypeFor[From]()) != shapeWord || shapeOf(reflect.TypeFor[To]()) != shapeWord {
		panic(fmt.Sprintf("addr: cannot reinterpret %v as %v", reflect.TypeFor[From](), reflect.TypeFor[To]()))
	}
	return *(*To)(unsafe.Pointer(&v))
}
