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

package reflect_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uref "dirpx.dev/mgmt/utils/reflect"
)

type inner struct {
	Depth int
}

type outer struct {
	*inner
	Name string
	note string
}

func (o outer) Label() string            { return o.Name }
func (o *outer) SetLabel(s string)       { o.Name = s }
func (o *outer) Lookup() (string, error) { return "", errors.New("boom") }
func (o *outer) Many(a ...int) int       { return len(a) }

func TestIndirect(t *testing.T) {
	var p **outer
	assert.Equal(t, reflect.TypeOf(outer{}), uref.Indirect(reflect.TypeOf(p)))
	assert.Nil(t, uref.Indirect(nil))
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "dirpx.dev/mgmt/utils/reflect_test.outer", uref.ClassName(reflect.TypeOf(&outer{})))
	assert.Equal(t, "reflect_test.outer", uref.ShortName(reflect.TypeOf(outer{})))
	assert.Equal(t, "int", uref.ClassName(reflect.TypeOf(0)))
	assert.Equal(t, "[]string", uref.ClassName(reflect.TypeOf([]string{})))
}

func TestAccessorStem(t *testing.T) {
	tests := []struct {
		in     string
		stem   string
		isPref bool
	}{
		{"GetFirstName", "FirstName", false},
		{"IsRunning", "Running", true},
		{"Count", "Count", false},
		{"Getaway", "Getaway", false},
		{"Is", "Is", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			stem, is := uref.AccessorStem(tt.in)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.isPref, is)
		})
	}
	assert.Equal(t, "firstName", uref.Uncapitalize("FirstName"))
	assert.Equal(t, "Name", uref.Capitalize("name"))
	assert.Equal(t, "", uref.Capitalize(""))
}

func TestMethodOn(t *testing.T) {
	vt := reflect.TypeOf(outer{})

	m, ok := uref.MethodOn(vt, "Label")
	require.True(t, ok)
	assert.Empty(t, m.In)
	assert.Equal(t, []reflect.Type{reflect.TypeOf("")}, m.Results())

	m, ok = uref.MethodOn(vt, "SetLabel")
	require.True(t, ok, "pointer method set is searched for struct types")
	assert.Equal(t, []reflect.Type{reflect.TypeOf("")}, m.In)

	m, ok = uref.MethodOn(vt, "Lookup")
	require.True(t, ok)
	assert.True(t, m.ReturnsError())
	assert.Len(t, m.Results(), 1)

	_, ok = uref.MethodOn(vt, "Many")
	assert.False(t, ok, "variadic methods are rejected")
	_, ok = uref.MethodOn(vt, "missing")
	assert.False(t, ok)
}

func TestMethodValue(t *testing.T) {
	o := &outer{Name: "x"}
	set, ok := uref.MethodValue(reflect.ValueOf(o).Elem(), "SetLabel")
	require.True(t, ok)
	set.Call([]reflect.Value{reflect.ValueOf("y")})
	assert.Equal(t, "y", o.Name)

	_, ok = uref.MethodValue(reflect.ValueOf(outer{}), "SetLabel")
	assert.False(t, ok, "non-addressable values cannot reach pointer methods")
}

func TestFieldOnAndFieldByIndex(t *testing.T) {
	f, ok := uref.FieldOn(reflect.TypeOf(&outer{}), "Depth")
	require.True(t, ok)

	_, ok = uref.FieldOn(reflect.TypeOf(outer{}), "note")
	assert.False(t, ok)

	o := &outer{inner: &inner{Depth: 3}}
	v, err := uref.FieldByIndex(reflect.ValueOf(o), f.Index)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Interface())

	_, err = uref.FieldByIndex(reflect.ValueOf(&outer{}), f.Index)
	assert.ErrorIs(t, err, uref.ErrReflectNilPointer)
}
