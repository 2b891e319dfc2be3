// Package testutil holds object graphs shared by the package tests.
package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/partite-ai/checkedptr/rc"
)

// Employee is the base view of Developer and Manager.
type Employee interface {
	Base() *Person
	String() string
}

type Person struct {
	ID   uint64
	Name string
}

func (p *Person) Base() *Person { return p }

func (p *Person) String() string {
	return fmt.Sprintf("Person=[(ID= %d)(Name=%s)]", p.ID, p.Name)
}

type Developer struct {
	Person
	Tasks uint8
}

func (d *Developer) String() string {
	return fmt.Sprintf("Developer=[%s(Tasks=%d)]", d.Person.String(), d.Tasks)
}

type Manager struct {
	Person
	CurrentTask string
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager=[%s(TaskName=%s)]", m.Person.String(), m.CurrentTask)
}

type PlainObject struct {
	ID   int32
	Name string
}

// Resource counts how many times it was destroyed.
type Resource struct {
	Name      string
	destroyed atomic.Int32
}

func (r *Resource) Destroy() {
	r.destroyed.Add(1)
}

func (r *Resource) Destroyed() int32 {
	return r.destroyed.Load()
}

// Closer fails to close with Err.
type Closer struct {
	Err    error
	closed atomic.Int32
}

func (c *Closer) Close() error {
	c.closed.Add(1)
	return c.Err
}

func (c *Closer) Closed() int32 {
	return c.closed.Load()
}

// Session opts into SharedFromThis.
type Session struct {
	rc.EnableSharedFromThis[Session]
	ID int
}

// Object does not opt into SharedFromThis.
type Object struct {
	ID int
}

type Config struct {
	Endpoint string
	Retries  int
}

// FrozenConfig shares Config's layout.
type FrozenConfig Config

// Header overlays the first field of Config.
type Header struct {
	Endpoint string
}
