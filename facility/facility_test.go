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

package facility_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/facility"
	"dirpx.dev/mgmt/objname"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubFacade struct {
	name  objname.Name
	attrs map[string]any
}

func (f *stubFacade) Identity() objname.Name { return f.name }

func (f *stubFacade) Attribute(name string) (any, error) {
	v, ok := f.attrs[name]
	if !ok {
		return nil, apis.ErrAttributeNotFound
	}
	return v, nil
}

func (f *stubFacade) SetAttribute(name string, value any) error {
	f.attrs[name] = value
	return nil
}

func (f *stubFacade) Attributes([]string) ([]apis.Attribute, error)            { return nil, nil }
func (f *stubFacade) SetAttributes([]apis.Attribute) ([]apis.Attribute, error) { return nil, nil }

func (f *stubFacade) Invoke(name string, args []any, signature []string) (any, error) {
	return apis.Signature(name, signature), nil
}

func (f *stubFacade) Schema() (apis.Schema, error) {
	return apis.Schema{ClassName: "stub"}, nil
}

func stub(s string) *stubFacade {
	return &stubFacade{name: objname.MustParse(s), attrs: map[string]any{}}
}

func TestServer_PublishLifecycle(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := facility.New(facility.WithLogger(zap.New(core)))
	f := stub("Demo:type=Person,name=ann")

	require.NoError(t, s.Publish(f.name, f))
	assert.True(t, s.IsPublished(f.name))
	assert.True(t, s.IsPublished(objname.MustParse("Demo:name=ann,type=Person")), "lookup is canonical")

	err := s.Publish(objname.MustParse("Demo:name=ann,type=Person"), f)
	assert.ErrorIs(t, err, apis.ErrAlreadyPublished)

	require.NoError(t, s.Depublish(f.name))
	assert.False(t, s.IsPublished(f.name))
	assert.ErrorIs(t, s.Depublish(f.name), apis.ErrNotPublished)

	assert.Equal(t, 1, logs.FilterMessage("published").Len())
	assert.Equal(t, 1, logs.FilterMessage("depublished").Len())
}

func TestServer_PublishRejectsInvalidInput(t *testing.T) {
	s := facility.New()
	assert.ErrorIs(t, s.Publish(objname.Name{}, stub("D:a=b")), facility.ErrEmptyIdentity)
	assert.ErrorIs(t, s.Publish(objname.MustParse("D:a=b"), nil), facility.ErrNilFacade)
}

func TestServer_Dispatch(t *testing.T) {
	s := facility.New()
	f := stub("Demo:type=Person,name=ann")
	f.attrs["age"] = 3
	require.NoError(t, s.Publish(f.name, f))

	v, err := s.GetAttribute(f.name, "age")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, s.SetAttribute(f.name, "age", 4))
	assert.Equal(t, 4, f.attrs["age"])

	out, err := s.Invoke(f.name, "grow", []any{1}, []string{"int"})
	require.NoError(t, err)
	assert.Equal(t, "grow(int)", out)

	sch, err := s.Schema(f.name)
	require.NoError(t, err)
	assert.Equal(t, "stub", sch.ClassName)

	other := objname.MustParse("Demo:type=Person,name=bob")
	_, err = s.GetAttribute(other, "age")
	assert.ErrorIs(t, err, apis.ErrNotPublished)
	assert.ErrorIs(t, s.SetAttribute(other, "age", 1), apis.ErrNotPublished)
	_, err = s.Invoke(other, "grow", nil, nil)
	assert.ErrorIs(t, err, apis.ErrNotPublished)
	_, err = s.Schema(other)
	assert.ErrorIs(t, err, apis.ErrNotPublished)
}

func TestServer_Query(t *testing.T) {
	s := facility.New()
	for _, n := range []string{
		"Demo:type=Person,name=bob",
		"Demo:type=Person,name=ann",
		"Demo:type=Address,name=ann",
		"Other:type=Person,name=cy",
		`Demo:type=Person,name="x\,y"`,
	} {
		require.NoError(t, s.Publish(objname.MustParse(n), stub(n)))
	}

	render := func(ns []objname.Name) []string {
		out := make([]string, len(ns))
		for i, n := range ns {
			out[i] = n.String()
		}
		return out
	}

	assert.Len(t, s.Names(), 5)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []string{
		`Demo:type=Person,name="x\,y"`,
		"Demo:type=Person,name=ann",
		"Demo:type=Person,name=bob",
	}, render(s.Query("Demo", objname.Property{Key: "type", Value: "Person"})))
	assert.Equal(t, []string{`Demo:type=Person,name="x\,y"`},
		render(s.Query("", objname.Property{Key: "name", Value: "x,y"})))
	assert.Empty(t, s.Query("Missing"))
}

func TestServer_ConcurrentPublish(t *testing.T) {
	s := facility.New()
	n := runtime.GOMAXPROCS(0) * 4
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			name := objname.MustParse(fmt.Sprintf("Demo:type=Worker,id=%d", i))
			if err := s.Publish(name, stub(name.String())); err != nil {
				return err
			}
			_ = s.Names()
			if !s.IsPublished(name) {
				return fmt.Errorf("%s not published", name)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, n, s.Len())
}
