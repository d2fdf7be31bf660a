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

package manager_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/config"
	"dirpx.dev/mgmt/manager"
	"dirpx.dev/mgmt/opentype"
)

func registered(t *testing.T, m *manager.Manager, obj any) *manager.Facade {
	t.Helper()
	require.NoError(t, m.Register(obj))
	f, ok := m.Facade(obj)
	require.True(t, ok)
	return f
}

func TestFacade_AttributeRoundTrip(t *testing.T) {
	m, _, logs := newManager(t)
	p := &Person{Name: "ann", Age: 3, Children: []*Child{{}, {}}}
	f := registered(t, m, p)

	require.NoError(t, f.SetAttribute("name", "bob"))
	v, err := f.Attribute("name")
	require.NoError(t, err)
	assert.Equal(t, "bob", v)
	assert.Equal(t, "bob", p.Name)
	assert.Equal(t, "Demo:type=Person,name=ann", f.Identity().String(), "identity is fixed at registration")

	v, err = f.Attribute("children")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	entries := logs.FilterMessage("set attribute").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "name", entries[0].ContextMap()["attribute"])
	assert.Equal(t, "Demo:type=Person,name=ann", entries[0].ContextMap()["identity"])
}

func TestFacade_SizeOfNilCollectionIsZero(t *testing.T) {
	m, _, _ := newManager(t)
	f := registered(t, m, &Person{Name: "ann"})
	v, err := f.Attribute("children")
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestFacade_DispatchFaults(t *testing.T) {
	m, _, _ := newManager(t)
	f := registered(t, m, &Person{Name: "ann"})

	_, err := f.Attribute("missing")
	assert.ErrorIs(t, err, apis.ErrAttributeNotFound)
	assert.ErrorIs(t, f.SetAttribute("missing", 1), apis.ErrAttributeNotFound)
	assert.ErrorIs(t, f.SetAttribute("age", 4), apis.ErrAttributeNotWritable)
	assert.ErrorIs(t, f.SetAttribute("children", 4), apis.ErrAttributeNotWritable)

	_, err = f.Invoke("rename", []any{"a"}, []string{"string"})
	assert.ErrorIs(t, err, apis.ErrOperationNotFound)
	_, err = f.Invoke("fly", nil, nil)
	assert.ErrorIs(t, err, apis.ErrOperationNotFound)
}

func TestFacade_Invoke(t *testing.T) {
	m, _, logs := newManager(t)
	p := &Person{Name: "ann"}
	f := registered(t, m, p)

	out, err := f.Invoke("rename", []any{"Ann", "Lee"}, []string{"string", "string"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", out)

	out, err = f.Invoke("birthday", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 1, p.Age)

	entries := logs.FilterMessage("invoke operation").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "rename(string, string)", entries[0].ContextMap()["operation"])
}

func TestFacade_DispatchLogsCanBeDisabled(t *testing.T) {
	m, _, logs := newManager(t, manager.WithConfig(config.NewConfig(config.WithLogDispatch(false))))
	f := registered(t, m, &Person{Name: "ann"})
	require.NoError(t, f.SetAttribute("name", "bob"))
	_, err := f.Invoke("birthday", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, logs.FilterMessage("set attribute").Len())
	assert.Equal(t, 0, logs.FilterMessage("invoke operation").Len())
}

func TestFacade_BatchIsBestEffort(t *testing.T) {
	m, _, logs := newManager(t)
	f := registered(t, m, &Person{Name: "ann", Age: 3})

	got, err := f.Attributes([]string{"name", "missing", "age"})
	assert.ErrorIs(t, err, apis.ErrAttributeNotFound)
	assert.Equal(t, []apis.Attribute{{Name: "name", Value: "ann"}, {Name: "age", Value: 3}}, got)
	assert.Equal(t, 1, logs.FilterMessage("could not read attribute").Len())

	written, err := f.SetAttributes([]apis.Attribute{{Name: "age", Value: 9}, {Name: "name", Value: "cy"}})
	assert.ErrorIs(t, err, apis.ErrAttributeNotWritable)
	assert.Equal(t, []apis.Attribute{{Name: "name", Value: "cy"}}, written)
	assert.Equal(t, 1, logs.FilterMessage("could not set attribute").Len())
}

func TestFacade_Schema(t *testing.T) {
	m, fac, _ := newManager(t)
	p := &Person{Name: "ann"}
	f := registered(t, m, p)

	want := apis.Schema{
		ClassName:   reflect.TypeOf(Person{}).PkgPath() + ".Person",
		Description: "Person ann aged 0",
		Attributes: []apis.AttributeInfo{
			{Name: "name", Description: "name", Type: opentype.String, Readable: true, Writable: true},
			{Name: "age", Description: "age", Type: opentype.Int, Readable: true},
			{Name: "children", Description: "children", Type: opentype.Int, Readable: true},
		},
		Operations: []apis.OperationInfo{
			{Name: "birthday", Description: "birthday", Return: opentype.Void, Impact: apis.Action},
			{
				Name: "rename", Description: "rename", Return: opentype.String, Impact: apis.ActionInfo,
				Params: []apis.ParameterInfo{
					{Name: "first", Description: "first", Type: opentype.String},
					{Name: "last", Description: "last", Type: opentype.String},
				},
			},
		},
	}
	got, err := f.Schema()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	p.Age = 7
	got, err = fac.Schema(f.Identity())
	require.NoError(t, err)
	assert.Equal(t, "Person ann aged 7", got.Description, "description is evaluated live")
}

func TestFacade_CachedAttribute(t *testing.T) {
	now := time.Unix(0, 0)
	m, _, _ := newManager(t, manager.WithClock(fixedClock(&now)))
	g1, g2 := &Gauge{Label: "a"}, &Gauge{Label: "b"}
	f1, f2 := registered(t, m, g1), registered(t, m, g2)

	read := func(f *manager.Facade) any {
		v, err := f.Attribute("value")
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, 1, read(f1))
	assert.Equal(t, 1, read(f1), "within timeout")
	assert.Equal(t, 1, read(f2), "cache is per object")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, read(f1))
	assert.Equal(t, 2, g1.reads, "exactly one recomputation")
}

func TestFacade_ObjectAndIdentity(t *testing.T) {
	m, _, _ := newManager(t)
	p := &Person{Name: "ann"}
	f := registered(t, m, p)
	assert.Same(t, p, f.Object())

	require.NoError(t, m.Unregister(p))
	_, ok := m.Facade(p)
	assert.False(t, ok)
}

type Verbosity int

type Tuning struct {
	_       struct{}      `mgmt:"bean,name='Demo:type=Tuning'"`
	Timeout time.Duration `mgmt:"attribute,writable"`
	Level   Verbosity     `mgmt:"attribute,writable"`
}

func TestFacade_NamedBasicTypes(t *testing.T) {
	m, _, _ := newManager(t)
	tn := &Tuning{Timeout: time.Second, Level: 2}
	f := registered(t, m, tn)

	v, err := f.Attribute("timeout")
	require.NoError(t, err)
	assert.Equal(t, "1s", v)
	v, err = f.Attribute("level")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	require.NoError(t, f.SetAttribute("timeout", "2m"))
	require.NoError(t, f.SetAttribute("level", int64(5)))
	assert.Equal(t, 2*time.Minute, tn.Timeout)
	assert.Equal(t, Verbosity(5), tn.Level)

	schema, err := f.Schema()
	require.NoError(t, err)
	types := map[string]opentype.Type{}
	for _, a := range schema.Attributes {
		types[a.Name] = a.Type
	}
	assert.Equal(t, opentype.String, types["timeout"])
	assert.Equal(t, opentype.Int, types["level"])
}
