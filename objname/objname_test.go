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

package objname_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mgmt/objname"
)

func TestQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"x,y", `"x\,y"`},
		{"a=b", `"a\=b"`},
		{"host:8080", `"host\:8080"`},
		{"line\nbreak", `"line\nbreak"`},
		{`say "hi"`, `"say \"hi\""`},
		{`"already"`, `"already"`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, objname.QuoteIfNeeded(tt.in))
		})
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	for _, v := range []string{"x,y", "a\\b", "*?", "multi\nline", `q"q`, "plain"} {
		got, err := objname.Unquote(objname.Quote(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, v := range []string{`"a"b"`, `"a\"`, `"\x"`} {
		_, err := objname.Unquote(v)
		assert.ErrorIs(t, err, objname.ErrMalformed, v)
	}
}

func TestParseKeepsDeclaredOrder(t *testing.T) {
	n, err := objname.Parse(`Demo:type=Person,name="x\,y",id=7`)
	require.NoError(t, err)

	assert.Equal(t, "Demo", n.Domain())
	assert.Equal(t, `Demo:type=Person,name="x\,y",id=7`, n.String())
	assert.Equal(t, `Demo:id=7,name="x\,y",type=Person`, n.Canonical())

	v, ok := n.Get("name")
	require.True(t, ok)
	assert.Equal(t, "x,y", v)

	other := objname.MustParse(`Demo:id=7,type=Person,name="x\,y"`)
	assert.True(t, n.Equal(other))
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"no domain", "type=Person", objname.ErrMalformed},
		{"no properties", "Demo:", objname.ErrMalformed},
		{"no equals", "Demo:type", objname.ErrMalformed},
		{"unquoted special", "Demo:name=a:b", objname.ErrMalformed},
		{"empty key", "Demo:=x", objname.ErrMalformed},
		{"duplicate key", "Demo:a=1,a=2", objname.ErrDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := objname.Parse(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWithSuffix(t *testing.T) {
	n := objname.MustParse("Demo:type=Counter,name=hits")
	s, err := n.WithSuffix(" @1")
	require.NoError(t, err)
	assert.Equal(t, "Demo:type=Counter,name=hits @1", s.String())

	q := objname.MustParse(`Demo:name="x\,y"`)
	s, err = q.WithSuffix(" @2")
	require.NoError(t, err)
	assert.Equal(t, `Demo:name="x\,y @2"`, s.String())
}

func TestAppend(t *testing.T) {
	owner := objname.MustParse("Demo:type=Person,name=ada")
	child, err := objname.ParseProperties("address=home")
	require.NoError(t, err)

	got, err := owner.Append(child)
	require.NoError(t, err)
	assert.Equal(t, "Demo:type=Person,name=ada,address=home", got.String())

	_, err = owner.Append([]objname.Property{{Key: "type", Value: "x"}})
	assert.ErrorIs(t, err, objname.ErrDuplicateKey)
}

func TestIsRelative(t *testing.T) {
	assert.True(t, objname.IsRelative("name=#{name}"))
	assert.True(t, objname.IsRelative(`name="a\:b"`))
	assert.True(t, objname.IsRelative("name=a:b"))
	assert.False(t, objname.IsRelative("Demo:name=x"))
}

func TestTextMarshalling(t *testing.T) {
	var n objname.Name
	require.NoError(t, n.UnmarshalText([]byte("Demo:type=A")))
	b, err := n.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Demo:type=A", string(b))

	_, err = objname.Name{}.MarshalText()
	assert.ErrorIs(t, err, objname.ErrMalformed)
}
