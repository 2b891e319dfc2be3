package checked

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// ErrNullHandle matches every NullHandleError under errors.Is.
var ErrNullHandle = errors.New("checked: dereference of empty handle")

// NullHandleError is returned, or raised by Must, whenever an empty Handle is
// dereferenced.
type NullHandleError struct {
	// Type is the view type of the dereferenced handle.
	Type reflect.Type
}

func (e *NullHandleError) Error() string {
	return fmt.Sprintf("checked: dereference of empty %v handle", e.Type)
}

func (e *NullHandleError) Is(target error) bool {
	return target == ErrNullHandle
}

func nullHandle[T any]() error {
	return errors.WithStack(&NullHandleError{Type: reflect.TypeFor[T]()})
}
