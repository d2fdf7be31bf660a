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

package opentype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mgmt/opentype"
)

func TestCompositeTypeRejectsDuplicates(t *testing.T) {
	_, err := opentype.NewCompositeType("pair",
		"",
		opentype.Item{Name: "a", Type: opentype.Int},
		opentype.Item{Name: "a", Type: opentype.String},
	)
	assert.ErrorIs(t, err, opentype.ErrInvalidData)
}

func TestCompositeData(t *testing.T) {
	ct, err := opentype.NewCompositeType("point", "",
		opentype.Item{Name: "x", Type: opentype.Int},
		opentype.Item{Name: "y", Type: opentype.Int},
	)
	require.NoError(t, err)
	assert.Equal(t, "point", ct.Description())
	assert.Equal(t, []string{"x", "y"}, ct.Names())

	d, err := opentype.NewCompositeData(ct, map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, d.Values())

	_, err = opentype.NewCompositeData(ct, map[string]any{"x": 1})
	assert.ErrorIs(t, err, opentype.ErrInvalidData)
	_, err = opentype.NewCompositeData(ct, map[string]any{"x": 1, "z": 2})
	assert.ErrorIs(t, err, opentype.ErrInvalidData)
}

func TestTabularData(t *testing.T) {
	row, err := opentype.NewCompositeType("kv", "",
		opentype.Item{Name: "k", Type: opentype.String},
		opentype.Item{Name: "v", Type: opentype.String},
	)
	require.NoError(t, err)
	tt := &opentype.TabularType{Name: "kvs", Row: row, Index: []string{"k"}}
	td := opentype.NewTabularData(tt)

	r1, _ := opentype.NewCompositeData(row, map[string]any{"k": "a", "v": "1"})
	r2, _ := opentype.NewCompositeData(row, map[string]any{"k": "a", "v": "2"})
	require.NoError(t, td.Put(r1))
	assert.ErrorIs(t, td.Put(r2), opentype.ErrInvalidData)

	got, ok := td.Get("a")
	require.True(t, ok)
	v, _ := got.Get("v")
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, td.Len())
}

func TestTypeNames(t *testing.T) {
	arr := &opentype.ArrayType{Elem: opentype.String}
	assert.Equal(t, "[]string", arr.TypeName())
	assert.Equal(t, opentype.KindArray, arr.Kind())
	assert.Equal(t, "tabular", opentype.KindTabular.String())
}
