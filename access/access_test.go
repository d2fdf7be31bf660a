/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package access_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/apis"
)

type Base struct {
	ID int
}

type Person struct {
	Base
	Name     string
	Children []string
	Tags     map[string]string
	Address  *Address

	counter int
	failGet bool
}

type Address struct {
	City string
}

func (p *Person) GetCity() string { return p.Address.City }
func (p *Person) Counter() int    { p.counter++; return p.counter }
func (p *Person) Nick() (string, error) {
	if p.failGet {
		return "", errors.New("nick unavailable")
	}
	return "nick-" + p.Name, nil
}
func (p *Person) SetNick(s string) error {
	if s == "" {
		return errors.New("empty nick")
	}
	p.Name = s
	return nil
}

var personType = reflect.TypeOf(&Person{})

func field(t *testing.T, name string, writable bool) *access.Chain {
	t.Helper()
	f, ok := personType.Elem().FieldByName(name)
	require.True(t, ok)
	return access.Root(personType).Then(access.Field(personType, f, writable))
}

func method(t *testing.T, getter, setter string, exec access.Executor) *access.Chain {
	t.Helper()
	m, err := access.Method(personType, nil, getter, setter, exec)
	require.NoError(t, err)
	return access.Root(personType).Then(m)
}

func TestFieldRoundTrip(t *testing.T) {
	p := &Person{Name: "ada"}

	c := field(t, "Name", true)
	require.NoError(t, c.Write(p, "grace"))
	got, err := c.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "grace", got)

	id := field(t, "ID", true)
	require.NoError(t, id.Write(p, int64(42)), "numeric values convert")
	assert.Equal(t, 42, p.ID)
	assert.Equal(t, "root.ID", id.Path())
}

func TestFieldWriteErrors(t *testing.T) {
	p := &Person{}

	err := field(t, "Name", false).Write(p, "x")
	assert.ErrorIs(t, err, access.ErrReadOnly)

	err = field(t, "Name", true).Write(p, 12)
	assert.ErrorIs(t, err, access.ErrNotAssignable)

	err = field(t, "Name", true).Write(Person{}, "x")
	assert.ErrorIs(t, err, access.ErrNotAssignable, "struct values are not addressable")
}

func TestNestedFieldThroughNilPointer(t *testing.T) {
	af, _ := personType.Elem().FieldByName("Address")
	cf, _ := reflect.TypeOf(Address{}).FieldByName("City")
	c := access.Root(personType).
		Then(access.Field(personType, af, false)).
		Then(access.Field(af.Type, cf, true))

	_, err := c.Read(&Person{})
	var aerr *access.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "City", aerr.Member)
	assert.ErrorIs(t, err, access.ErrNilTarget)

	p := &Person{Address: &Address{City: "Oslo"}}
	require.NoError(t, c.Write(p, "Bergen"))
	assert.Equal(t, "Bergen", p.Address.City)
}

func TestMethodGetterSetter(t *testing.T) {
	p := &Person{Name: "ada"}
	c := method(t, "Nick", "SetNick", nil)
	require.True(t, c.Writable())

	got, err := c.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "nick-ada", got)

	require.NoError(t, c.Write(p, "bob"))
	assert.Equal(t, "bob", p.Name)

	err = c.Write(p, "")
	assert.EqualError(t, errors.Unwrap(err), "empty nick")

	p.failGet = true
	_, err = c.Read(p)
	assert.ErrorContains(t, err, "nick unavailable")
}

func TestMethodReadOnly(t *testing.T) {
	c := method(t, "Counter", "", nil)
	err := c.Write(&Person{}, 1)
	assert.ErrorIs(t, err, access.ErrReadOnly)
}

func TestMethodSignatureChecks(t *testing.T) {
	_, err := access.Method(personType, nil, "Missing", "", nil)
	assert.ErrorIs(t, err, access.ErrSignature)

	_, err = access.Method(personType, nil, "SetNick", "", nil)
	assert.ErrorIs(t, err, access.ErrSignature, "a setter is not a getter")

	_, err = access.Method(personType, nil, "Nick", "Counter", nil)
	assert.ErrorIs(t, err, access.ErrSignature)
}

func TestMethodPanicIsRecovered(t *testing.T) {
	c := method(t, "GetCity", "", nil)
	_, err := c.Read(&Person{})
	assert.ErrorIs(t, err, access.ErrPanic)
}

type countingExec struct{ calls int }

func (e *countingExec) Execute(call func() error) error {
	e.calls++
	return call()
}

func TestMethodRunsThroughExecutor(t *testing.T) {
	exec := &countingExec{}
	c := method(t, "Counter", "", exec)
	_, err := c.Read(&Person{})
	require.NoError(t, err)
	assert.Equal(t, 1, exec.calls)
}

func TestSize(t *testing.T) {
	tests := []struct {
		name  string
		field string
		p     *Person
		want  int
	}{
		{"nil slice", "Children", &Person{}, 0},
		{"slice", "Children", &Person{Children: []string{"a", "b"}}, 2},
		{"nil map", "Tags", &Person{}, 0},
		{"map", "Tags", &Person{Tags: map[string]string{"k": "v"}}, 1},
		{"string runes", "Name", &Person{Name: "Zoë"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := field(t, tt.field, false)
			c := f.Then(access.Size(f.Type()))
			got, err := c.Read(tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	f := field(t, "Children", false)
	err := f.Then(access.Size(f.Type())).Write(&Person{}, 3)
	assert.ErrorIs(t, err, apis.ErrUnsupported)

	assert.True(t, access.SizeSupported(reflect.TypeOf("")))
	assert.True(t, access.SizeSupported(reflect.TypeOf(&[]int{})))
	assert.False(t, access.SizeSupported(reflect.TypeOf(0)))
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCachedNode(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m, err := access.Method(personType, nil, "Counter", "", nil)
	require.NoError(t, err)
	c := access.Root(personType).Then(access.Cached(m, time.Second, clock.Now))

	p := &Person{}
	first, err := c.Read(p)
	require.NoError(t, err)
	clock.Advance(500 * time.Millisecond)
	second, err := c.Read(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.counter)

	clock.Advance(600 * time.Millisecond)
	third, err := c.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2, third)
	assert.Equal(t, 2, p.counter, "exactly one recomputation after the timeout")
}

func TestCachedNodeWriteInvalidates(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m, err := access.Method(personType, nil, "Nick", "SetNick", nil)
	require.NoError(t, err)
	c := access.Root(personType).Then(access.Cached(m, time.Hour, clock.Now))

	p := &Person{Name: "ada"}
	v, _ := c.Read(p)
	assert.Equal(t, "nick-ada", v)
	require.NoError(t, c.Write(p, "bob"))
	v, _ = c.Read(p)
	assert.Equal(t, "nick-bob", v)
}

func TestForkIsolatesCaches(t *testing.T) {
	m, err := access.Method(personType, nil, "Counter", "", nil)
	require.NoError(t, err)
	shared := access.Root(personType).Then(access.Cached(m, time.Hour, nil))

	a, b := shared.Fork(), shared.Fork()
	pa, pb := &Person{counter: 10}, &Person{counter: 20}
	va, _ := a.Read(pa)
	vb, _ := b.Read(pb)
	assert.Equal(t, 11, va)
	assert.Equal(t, 21, vb)

	plain := field(t, "Name", false)
	assert.Same(t, plain, plain.Fork(), "stateless chains are shared")
}

type upper struct{}

func (upper) ToTransport(v any) (any, error) { return "<" + v.(string) + ">", nil }
func (upper) ToNative(v any) (any, error)    { return v.(string)[1 : len(v.(string))-1], nil }

func TestConverterApplied(t *testing.T) {
	c := field(t, "Name", true).WithConverter(upper{})
	p := &Person{}
	require.NoError(t, c.Write(p, "<x>"))
	assert.Equal(t, "x", p.Name)
	got, _ := c.Read(p)
	assert.Equal(t, "<x>", got)
}

func TestAssign(t *testing.T) {
	v, err := access.Assign(nil, reflect.TypeOf(0))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Interface())

	v, err = access.Assign(int32(7), reflect.TypeOf(float64(0)))
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.Interface())

	_, err = access.Assign(7, reflect.TypeOf(""))
	assert.ErrorIs(t, err, access.ErrNotAssignable, "int must not become a rune string")

	var e error = errors.New("x")
	v, err = access.Assign(e, reflect.TypeOf((*error)(nil)).Elem())
	require.NoError(t, err)
	assert.Equal(t, e, v.Interface())
}
