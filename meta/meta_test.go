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

package meta_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/meta"
)

type tagged struct {
	_     struct{} `mgmt:"bean,name='Demo:type=Tagged,name=#{name}',unique,desc='A tagged bean'"`
	_     struct{} `mgmt:"operation,method=Reset,params=reason|force,paramDescs='why, briefly',impact=action"`
	Name  string   `mgmt:"attribute,writable"`
	Kids  []string `mgmt:"attribute;size,name=kidCount"`
	Child *tagged  `mgmt:"reference,concat"`
	Level int      `mgmt:"attribute,type=level"`
	Plain string
}

type level int

type declared struct{ A int }

func (declared) ManagedClass() meta.Class {
	return meta.Class{
		Bean:    &meta.Bean{Name: "Demo:type=Declared"},
		Members: []meta.Member{meta.AttributeOf(meta.OnField("A"))},
	}
}

type ptrDeclared struct{ B int }

func (*ptrDeclared) ManagedClass() meta.Class {
	return meta.Class{Composite: &meta.Composite{Description: "ptr"}}
}

type untagged struct{ X int }

func TestTags_Parse(t *testing.T) {
	reg := meta.NewRegistry()
	require.NoError(t, reg.RegisterTypeName("level", reflect.TypeOf(level(0))))

	c, ok, err := meta.Tags(reg).TryDescribe(reflect.TypeOf(tagged{}))
	require.NoError(t, err)
	require.True(t, ok)

	require.NotNil(t, c.Bean)
	assert.Equal(t, "Demo:type=Tagged,name=#{name}", c.Bean.Name)
	assert.Equal(t, "A tagged bean", c.Bean.Description)
	assert.True(t, c.Bean.MakeNameUnique)

	want := []meta.Member{
		{Kind: meta.Operation, Method: "Reset", Params: []string{"reason", "force"},
			ParamDescriptions: []string{"why, briefly"}, Impact: apis.Action},
		{Kind: meta.Attribute, Field: "Name", Writable: true},
		{Kind: meta.Attribute, Field: "Kids"},
		{Kind: meta.SizeAttribute, Field: "Kids", Name: "kidCount"},
		{Kind: meta.Reference, Field: "Child", ConcatName: true},
		{Kind: meta.Attribute, Field: "Level", Type: reflect.TypeOf(level(0))},
	}
	assert.Equal(t, want, c.Members)
}

func TestTags_Untagged(t *testing.T) {
	_, ok, err := meta.Tags(nil).TryDescribe(reflect.TypeOf(untagged{}))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = meta.Tags(nil).TryDescribe(reflect.TypeOf(0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTags_Errors(t *testing.T) {
	cases := []struct {
		name string
		typ  reflect.Type
	}{
		{"unknown kind", reflect.TypeOf(struct {
			A int `mgmt:"gizmo"`
		}{})},
		{"unknown option", reflect.TypeOf(struct {
			A int `mgmt:"attribute,shiny"`
		}{})},
		{"bean on field", reflect.TypeOf(struct {
			A int `mgmt:"bean"`
		}{})},
		{"blank without method", reflect.TypeOf(struct {
			_ struct{} `mgmt:"operation"`
		}{})},
		{"operation on field", reflect.TypeOf(struct {
			A int `mgmt:"operation"`
		}{})},
		{"bad duration", reflect.TypeOf(struct {
			_ struct{} `mgmt:"attribute,method=Get,cache=soon"`
		}{})},
		{"bad impact", reflect.TypeOf(struct {
			_ struct{} `mgmt:"operation,method=Run,impact=huge"`
		}{})},
		{"unknown type", reflect.TypeOf(struct {
			A int `mgmt:"attribute,type=nope"`
		}{})},
		{"cache on field", reflect.TypeOf(struct {
			A int `mgmt:"attribute,cache=1s"`
		}{})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := meta.Tags(meta.NewRegistry()).TryDescribe(tc.typ)
			require.Error(t, err)
			assert.True(t, errors.Is(err, meta.ErrInvalidTag) || errors.Is(err, meta.ErrInvalidMember), err)
		})
	}
}

func TestTags_CachedMethodAttribute(t *testing.T) {
	typ := reflect.TypeOf(struct {
		_ struct{} `mgmt:"attribute,method=GetLoad,cache=250ms"`
	}{})
	c, ok, err := meta.Tags(nil).TryDescribe(typ)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, c.Members, 1)
	assert.Equal(t, 250*time.Millisecond, c.Members[0].CacheTimeout)
	assert.Equal(t, "GetLoad", c.Members[0].Method)
}

func TestRegistry_RegisterIdempotentAndConflict(t *testing.T) {
	reg := meta.NewRegistry()
	c := meta.Class{Bean: &meta.Bean{Name: "D:type=U"}}

	require.NoError(t, reg.Register(reflect.TypeOf(&untagged{}), c))
	require.NoError(t, reg.Register(reflect.TypeOf(untagged{}), c))

	got, ok := reg.Lookup(reflect.TypeOf(&untagged{}))
	require.True(t, ok)
	assert.Equal(t, c, got)
	assert.Equal(t, 1, reg.Count())

	err := reg.Register(reflect.TypeOf(untagged{}), meta.Class{Bean: &meta.Bean{Name: "D:type=Other"}})
	assert.ErrorIs(t, err, meta.ErrConflictingRegistration)

	assert.ErrorIs(t, reg.Register(nil, c), meta.ErrNilType)

	bad := meta.Class{Members: []meta.Member{{Kind: meta.Attribute}}}
	assert.ErrorIs(t, reg.Register(reflect.TypeOf(level(0)), bad), meta.ErrInvalidMember)

	reg.Reset()
	assert.Equal(t, 0, reg.Count())
}

type named interface{ Name() string }

func TestRegistry_InterfacesInOrder(t *testing.T) {
	reg := meta.NewRegistry()
	errType := reflect.TypeOf((*error)(nil)).Elem()
	namedType := reflect.TypeOf((*named)(nil)).Elem()

	require.NoError(t, reg.Register(errType, meta.Class{Members: []meta.Member{meta.AttributeOf(meta.OnMethod("Error"))}}))
	require.NoError(t, reg.Register(reflect.TypeOf(untagged{}), meta.Class{}))
	require.NoError(t, reg.Register(namedType, meta.Class{Members: []meta.Member{meta.AttributeOf(meta.OnMethod("Name"))}}))

	assert.Equal(t, []reflect.Type{errType, namedType}, reg.Interfaces())
	assert.Len(t, reg.Entries(), 3)
	assert.Equal(t, []reflect.Type{errType, namedType}, meta.Standard(reg).Interfaces())
}

func TestResolver_FirstMatchWins(t *testing.T) {
	reg := meta.NewRegistry()
	require.NoError(t, reg.Register(reflect.TypeOf(declared{}), meta.Class{Bean: &meta.Bean{Name: "D:type=FromRegistry"}}))
	r := meta.Standard(reg)

	c, ok, err := r.Describe(reflect.TypeOf(&declared{}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Demo:type=Declared", c.Bean.Name)

	c, ok, err = r.Describe(reflect.TypeOf(ptrDeclared{}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ptr", c.Composite.Description)

	_, ok, err = r.Describe(reflect.TypeOf(tagged{}))
	require.Error(t, err, "type=level is not registered")
	assert.False(t, ok)

	_, ok, err = r.Describe(reflect.TypeOf(untagged{}))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = r.Describe(nil)
	assert.ErrorIs(t, err, meta.ErrNilType)
}

func TestNewResolver_FiltersNil(t *testing.T) {
	r := meta.NewResolver(nil, meta.Declarers(), nil)
	_, ok, err := r.Describe(reflect.TypeOf(declared{}))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "size", meta.SizeAttribute.String())
	assert.Equal(t, "Unknown(42)", meta.Kind(42).String())
}

func TestOptions(t *testing.T) {
	m := meta.OperationOf("Run",
		meta.Named("run"),
		meta.Described("runs"),
		meta.Params("a"),
		meta.ParamDescriptions("first"),
		meta.WithImpact(apis.ActionInfo),
	)
	assert.Equal(t, meta.Member{
		Kind: meta.Operation, Method: "Run", Name: "run", Description: "runs",
		Params: []string{"a"}, ParamDescriptions: []string{"first"}, Impact: apis.ActionInfo,
	}, m)
	assert.NoError(t, meta.Class{Members: []meta.Member{m}}.Validate())
}
