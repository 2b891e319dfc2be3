package checked_test

import (
	"errors"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/partite-ai/checkedptr/checked"
	"github.com/partite-ai/checkedptr/rc"
	"github.com/partite-ai/checkedptr/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("runtime.runfinq"),
		goleak.IgnoreAnyFunction("runtime.runCleanups"),
	)
}

func requireNullHandle(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, checked.ErrNullHandle)
	var nhe *checked.NullHandleError
	assert.ErrorAs(t, err, &nhe)
}

func TestEmptyHandles(t *testing.T) {
	var zero checked.Handle[*testutil.PlainObject]
	var nilHandle *checked.Handle[*testutil.PlainObject]
	cases := map[string]*checked.Handle[*testutil.PlainObject]{
		"zero":      &zero,
		"nil":       nilHandle,
		"null":      checked.Null[*testutil.PlainObject](),
		"new(nil)":  checked.New[testutil.PlainObject](nil),
		"new(zero)": new(checked.Handle[*testutil.PlainObject]),
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, h.Valid())
			assert.Nil(t, h.Get())
			assert.EqualValues(t, 0, h.UseCount())
			assert.True(t, checked.IsNil(h))

			_, err := h.Deref()
			requireNullHandle(t, err)
			assert.Panics(t, func() { h.Must() })
		})
	}
}

func TestNewFromRawPointer(t *testing.T) {
	obj := &testutil.PlainObject{ID: 1}
	h := checked.New(obj)
	defer h.Release()

	assert.Same(t, obj, h.Get())
	assert.EqualValues(t, 1, h.UseCount())
	v, err := h.Deref()
	require.NoError(t, err)
	assert.Same(t, obj, v)
}

func TestMake(t *testing.T) {
	h := checked.Make[testutil.PlainObject]()
	defer h.Release()
	h.Must().ID = 3
	assert.EqualValues(t, 3, h.Get().ID)
}

func TestFromShared(t *testing.T) {
	p := rc.New(&testutil.PlainObject{})
	defer p.Release()

	h := checked.FromShared(p)
	defer h.Release()
	assert.Same(t, p.Get(), h.Get())
	assert.EqualValues(t, 2, p.UseCount())
	assert.Equal(t, p.UseCount(), h.UseCount())

	shared := h.Shared()
	defer shared.Release()
	assert.True(t, rc.SameOwner(p, shared))
	assert.EqualValues(t, 3, p.UseCount())
}

func TestAdopt(t *testing.T) {
	p := rc.New(&testutil.PlainObject{})
	h := checked.Adopt(p)
	defer h.Release()
	assert.False(t, p.Valid())
	assert.EqualValues(t, 1, h.UseCount())
}

func TestConvertShared(t *testing.T) {
	p := rc.New(&testutil.Developer{})
	defer p.Release()

	h := checked.ConvertShared(p, func(d *testutil.Developer) testutil.Employee { return d })
	defer h.Release()
	assert.Equal(t, p.Addr(), h.Addr())
	assert.Equal(t, p.UseCount(), h.UseCount())
	assert.EqualValues(t, 2, h.UseCount())
}

func TestConvert(t *testing.T) {
	dev := checked.New(&testutil.Developer{})
	defer dev.Release()

	emp := checked.Convert(dev, func(d *testutil.Developer) testutil.Employee { return d })
	defer emp.Release()
	assert.True(t, checked.Equal(dev, emp))
	assert.EqualValues(t, 2, dev.UseCount())
}

func TestCopy(t *testing.T) {
	res := &testutil.Resource{}
	h := checked.New(res)
	c := h.Clone()
	assert.EqualValues(t, 2, h.UseCount())
	assert.True(t, checked.Equal(h, c))

	c.Release()
	assert.EqualValues(t, 1, h.UseCount())
	assert.True(t, h.Valid())
	assert.Same(t, res, h.Must())

	h.Release()
	assert.EqualValues(t, 1, res.Destroyed())
}

func TestAssign(t *testing.T) {
	a := checked.New(&testutil.PlainObject{})
	defer a.Release()
	var b checked.Handle[*testutil.PlainObject]

	b.Assign(a)
	assert.Same(t, a.Get(), b.Get())
	assert.EqualValues(t, 2, a.UseCount())

	b.Assign(&b)
	assert.EqualValues(t, 2, a.UseCount())

	b.Release()
	assert.EqualValues(t, 1, a.UseCount())
}

func TestMove(t *testing.T) {
	obj := &testutil.PlainObject{}
	h := checked.New(obj)
	m := h.Move()
	defer m.Release()

	assert.False(t, h.Valid())
	assert.Nil(t, h.Get())
	assert.Same(t, obj, m.Get())
	assert.EqualValues(t, 1, m.UseCount())
	assert.False(t, checked.Equal(h, m))
}

func TestAssignMove(t *testing.T) {
	obj := &testutil.PlainObject{}
	h := checked.New(obj)
	var other checked.Handle[*testutil.PlainObject]

	other.AssignMove(h)
	defer other.Release()
	assert.False(t, h.Valid())
	assert.Same(t, obj, other.Get())
	assert.EqualValues(t, 1, other.UseCount())

	other.AssignMove(&other)
	assert.Same(t, obj, other.Get())
}

func TestConvertMoveEmptiesSource(t *testing.T) {
	dev := checked.New(&testutil.Developer{})
	keep := dev.Clone()
	defer keep.Release()

	emp := checked.ConvertMove(dev, func(d *testutil.Developer) testutil.Employee { return d })
	defer emp.Release()
	assert.False(t, dev.Valid())
	assert.True(t, checked.Equal(keep, emp))
	assert.EqualValues(t, 2, emp.UseCount())

	empty := checked.ConvertMove(dev, func(d *testutil.Developer) testutil.Employee { return d })
	assert.False(t, empty.Valid())
}

func TestAliasBaseFromDerived(t *testing.T) {
	dev := checked.New(&testutil.Developer{})
	base := checked.Alias(dev, &dev.Get().Person)

	assert.Equal(t, dev.Addr(), base.Addr())
	assert.Equal(t, dev.UseCount(), base.UseCount())
	ds, bs := dev.Shared(), base.Shared()
	assert.True(t, rc.SameOwner(ds, bs))
	ds.Release()
	bs.Release()

	dev.Release()
	assert.EqualValues(t, 1, base.UseCount())
	base.Must().Name = "still alive"
	base.Release()
}

func TestAliasMove(t *testing.T) {
	dev := checked.New(&testutil.Developer{})
	ptr := dev.Get()
	base := checked.AliasMove(dev, &ptr.Person)
	defer base.Release()

	assert.False(t, dev.Valid())
	assert.Same(t, &ptr.Person, base.Get())
	assert.EqualValues(t, 1, base.UseCount())
}

func TestReset(t *testing.T) {
	a := &testutil.Resource{}
	b := &testutil.Resource{}
	h := checked.New(a)
	h.Reset()
	assert.True(t, checked.IsNil(h))
	assert.EqualValues(t, 1, a.Destroyed())

	h.ResetTo(b)
	assert.False(t, checked.IsNil(h))
	assert.Same(t, b, h.Get())
	h.Release()
	assert.EqualValues(t, 1, b.Destroyed())

	var z checked.Handle[*testutil.Resource]
	z.ResetTo(a)
	assert.True(t, z.Valid())
	z.Release()
}

func TestSwap(t *testing.T) {
	h1 := checked.Make[testutil.PlainObject]()
	h2 := checked.Make[testutil.PlainObject]()
	defer h1.Release()
	defer h2.Release()

	h1.Must().ID = 100
	h1.Must().Name = "john"
	h2.Must().ID = 200
	h2.Must().Name = "sia"

	checked.Swap(h1, h2)
	assert.EqualValues(t, 200, h1.Must().ID)
	assert.Equal(t, "sia", h1.Must().Name)
	assert.EqualValues(t, 100, h2.Must().ID)
	assert.Equal(t, "john", h2.Must().Name)

	h1.Swap(h2)
	assert.EqualValues(t, 100, h1.Must().ID)
}

func TestNullPtrAccess(t *testing.T) {
	h := checked.Make[testutil.PlainObject]()
	h.Assign(nil)

	_, err := h.Deref()
	requireNullHandle(t, err)

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		requireNullHandle(t, err)
	}()
	h.Must().Name = "empty"
}

func TestNullHandleErrorDetails(t *testing.T) {
	_, err := checked.Null[*testutil.PlainObject]().Deref()
	assert.EqualError(t, err, "checked: dereference of empty *testutil.PlainObject handle")

	var nhe *checked.NullHandleError
	require.True(t, errors.As(err, &nhe))
	assert.Equal(t, "*testutil.PlainObject", nhe.Type.String())
	assert.Contains(t, fmt.Sprintf("%+v", err), "TestNullHandleErrorDetails")
}

func TestIdentityNotValue(t *testing.T) {
	h1 := checked.Make[testutil.PlainObject]()
	h2 := checked.Make[testutil.PlainObject]()
	defer h1.Release()
	defer h2.Release()

	*h1.Must() = testutil.PlainObject{ID: 100, Name: "sia"}
	*h2.Must() = testutil.PlainObject{ID: 100, Name: "sia"}

	assert.False(t, checked.Equal(h1, h2))
	assert.Empty(t, cmp.Diff(h1.Must(), h2.Must()))

	h1.Reset()
	assert.True(t, checked.IsNil(h1))
	h2.Reset()
	assert.True(t, checked.Equal(h1, h2))
}

func TestDestroyOnLastOwner(t *testing.T) {
	res := &testutil.Resource{}
	h := checked.New(res)
	owners := []*checked.Handle[*testutil.Resource]{h.Clone(), h.Clone()}
	emp := checked.Alias(h, any(res))
	h.Release()
	for _, o := range owners {
		o.Release()
		assert.EqualValues(t, 0, res.Destroyed())
	}
	emp.Release()
	assert.EqualValues(t, 1, res.Destroyed())
}

func TestDeferredReleaseKeepsViewsValid(t *testing.T) {
	res := &testutil.Resource{}
	func() {
		h := checked.New(res)
		defer h.Release()
		v := h.Must()
		for range 3 {
			runtime.GC()
		}
		time.Sleep(10 * time.Millisecond)
		assert.EqualValues(t, 0, res.Destroyed())
		assert.Same(t, res, v)
	}()
	assert.EqualValues(t, 1, res.Destroyed())
}

type label string

func (l label) String() string { return string(l) }

func TestValueInInterfaceViewIsRejected(t *testing.T) {
	assert.Panics(t, func() { checked.Own[fmt.Stringer](label("a")) })

	a := checked.Own[fmt.Stringer](&testutil.Person{})
	b := checked.Own[fmt.Stringer](&testutil.Person{})
	defer a.Release()
	defer b.Release()
	assert.False(t, checked.Equal(a, b))
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestNilHandleReadOnlyMethods(t *testing.T) {
	var h *checked.Handle[*testutil.PlainObject]
	assert.False(t, h.Valid())
	assert.Nil(t, h.Get())
	assert.True(t, h.Addr() == nil)
	assert.False(t, h.Clone().Valid())
	assert.False(t, h.Move().Valid())
	assert.False(t, h.Shared().Valid())
	assert.Equal(t, "<nil>", h.String())
	h.Reset()
	h.Release()
}
