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

package opentype

import (
	"fmt"
	"strings"
)

// CompositeData is a value of a CompositeType.
type CompositeData struct {
	typ    *CompositeType
	values map[string]any
}

// NewCompositeData checks that values has exactly the items of t.
func NewCompositeData(t *CompositeType, values map[string]any) (*CompositeData, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil composite type", ErrInvalidData)
	}
	if len(values) != len(t.Items) {
		return nil, fmt.Errorf("%w: %s expects %d items, got %d", ErrInvalidData, t.Name, len(t.Items), len(values))
	}
	cp := make(map[string]any, len(values))
	for _, it := range t.Items {
		v, ok := values[it.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing item %q", ErrInvalidData, t.Name, it.Name)
		}
		cp[it.Name] = v
	}
	return &CompositeData{typ: t, values: cp}, nil
}

// Type returns the schema of d.
func (d *CompositeData) Type() *CompositeType { return d.typ }

// Get returns the value of item name.
func (d *CompositeData) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Values returns item values in declared order.
func (d *CompositeData) Values() []any {
	out := make([]any, len(d.typ.Items))
	for i, it := range d.typ.Items {
		out[i] = d.values[it.Name]
	}
	return out
}

// Map returns a copy of the item values keyed by name.
func (d *CompositeData) Map() map[string]any {
	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

// TabularData is a value of a TabularType.
type TabularData struct {
	typ   *TabularType
	rows  []*CompositeData
	index map[string]int
}

// NewTabularData returns an empty table of type t.
func NewTabularData(t *TabularType) *TabularData {
	return &TabularData{typ: t, index: make(map[string]int)}
}

// Type returns the schema of d.
func (d *TabularData) Type() *TabularType { return d.typ }

// Put appends row. Rows must use the table's row type and have a unique key.
func (d *TabularData) Put(row *CompositeData) error {
	if row == nil || row.typ != d.typ.Row {
		return fmt.Errorf("%w: row type mismatch for %s", ErrInvalidData, d.typ.Name)
	}
	key := d.key(row)
	if _, dup := d.index[key]; dup {
		return fmt.Errorf("%w: duplicate key %q in %s", ErrInvalidData, key, d.typ.Name)
	}
	d.index[key] = len(d.rows)
	d.rows = append(d.rows, row)
	return nil
}

// Get returns the row whose index values render as keys.
func (d *TabularData) Get(keys ...any) (*CompositeData, bool) {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprint(k)
	}
	i, ok := d.index[strings.Join(parts, "\x00")]
	if !ok {
		return nil, false
	}
	return d.rows[i], true
}

// Rows returns the rows in insertion order.
func (d *TabularData) Rows() []*CompositeData {
	out := make([]*CompositeData, len(d.rows))
	copy(out, d.rows)
	return out
}

// Len returns the number of rows.
func (d *TabularData) Len() int { return len(d.rows) }

func (d *TabularData) key(row *CompositeData) string {
	parts := make([]string, len(d.typ.Index))
	for i, name := range d.typ.Index {
		parts[i] = fmt.Sprint(row.values[name])
	}
	return strings.Join(parts, "\x00")
}
