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

package meta

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"dirpx.dev/mgmt/apis"
)

// TagKey is the struct tag key read by Tags.
const TagKey = "mgmt"

// Tags returns a Source that reads `mgmt:"..."` struct tags.
//
// A tag holds one or more declarations separated by ';'. Each declaration
// is a kind followed by comma-separated options:
//
//	Name string `mgmt:"attribute,writable,desc='Display name'"`
//	Kids []Kid  `mgmt:"attribute;size,name=kidCount;reference,concat"`
//	_ struct{}  `mgmt:"bean,name='Demo:type=Person,name=#{name}',unique"`
//	_ struct{}  `mgmt:"operation,method=Reset,params=reason,impact=action"`
//
// Kinds are attribute, size, operation, item, reference and include on any
// field, plus bean and composite on a blank field. A member declared on a
// blank field targets the method named by method=. Option values may be
// single-quoted to carry ',', ';' or '='. Options:
//
//	name, desc         templates
//	type               a name registered with Registry.RegisterTypeName
//	params, paramDescs '|'-separated operation parameter names and descriptions
//	impact             info, action, action_info or unknown
//	cache              a time.ParseDuration string
//	method             the target method of a blank-field member
//	writable, concat, unique
//
// reg resolves type names; it may be nil.
func Tags(reg *Registry) Source {
	return &tagSource{reg: reg}
}

type tagSource struct {
	reg *Registry
	// cache memoizes parsed classes by type.
	cache sync.Map // map[reflect.Type]tagResult
}

type tagResult struct {
	class Class
	ok    bool
	err   error
}

func (s *tagSource) TryDescribe(t reflect.Type) (Class, bool, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return Class{}, false, nil
	}
	if v, ok := s.cache.Load(t); ok {
		r := v.(tagResult)
		return r.class, r.ok, r.err
	}
	c, ok, err := s.parse(t)
	if err != nil {
		err = fmt.Errorf("%s: %w", t, err)
	}
	v, _ := s.cache.LoadOrStore(t, tagResult{class: c, ok: ok, err: err})
	r := v.(tagResult)
	return r.class, r.ok, r.err
}

func (s *tagSource) parse(t reflect.Type) (Class, bool, error) {
	var (
		c     Class
		found bool
	)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		found = true
		blank := f.Name == "_"
		if !blank && !f.IsExported() {
			return Class{}, false, fmt.Errorf("%w: unexported field %s", ErrInvalidTag, f.Name)
		}
		for _, decl := range split(tag, ';') {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			if err := s.declare(&c, f.Name, blank, decl); err != nil {
				return Class{}, false, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	}
	return c, found, nil
}

func (s *tagSource) declare(c *Class, field string, blank bool, decl string) error {
	parts := split(decl, ',')
	kind := strings.TrimSpace(parts[0])
	opts := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, hasValue := cut(p)
		if _, dup := opts[k]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidTag, k)
		}
		if hasValue {
			opts[k] = unquoteTag(v)
		} else {
			opts[k] = ""
		}
	}

	switch kind {
	case "bean":
		if !blank {
			return fmt.Errorf("%w: bean must be declared on a blank field", ErrInvalidTag)
		}
		if c.Bean != nil {
			return fmt.Errorf("%w: duplicate bean", ErrInvalidTag)
		}
		b := &Bean{}
		for k, v := range opts {
			switch k {
			case "name":
				b.Name = v
			case "desc":
				b.Description = v
			case "unique":
				b.MakeNameUnique = true
			default:
				return fmt.Errorf("%w: unknown bean option %q", ErrInvalidTag, k)
			}
		}
		c.Bean = b
		return nil
	case "composite":
		if !blank {
			return fmt.Errorf("%w: composite must be declared on a blank field", ErrInvalidTag)
		}
		if c.Composite != nil {
			return fmt.Errorf("%w: duplicate composite", ErrInvalidTag)
		}
		cp := &Composite{}
		for k, v := range opts {
			if k != "desc" {
				return fmt.Errorf("%w: unknown composite option %q", ErrInvalidTag, k)
			}
			cp.Description = v
		}
		c.Composite = cp
		return nil
	}

	k, ok := kinds[kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTag, kind)
	}
	m := Member{Kind: k}
	if blank {
		m.Method = opts["method"]
		if m.Method == "" {
			return fmt.Errorf("%w: %s on a blank field needs method=", ErrInvalidTag, kind)
		}
	} else {
		if _, ok := opts["method"]; ok {
			return fmt.Errorf("%w: method= is only valid on a blank field", ErrInvalidTag)
		}
		m.Field = field
	}
	for key, v := range opts {
		switch key {
		case "method":
		case "name":
			m.Name = v
		case "desc":
			m.Description = v
		case "writable":
			m.Writable = true
		case "concat":
			m.ConcatName = true
		case "type":
			if s.reg == nil {
				return fmt.Errorf("%w: unknown type %q", ErrInvalidTag, v)
			}
			rt, ok := s.reg.TypeByName(v)
			if !ok {
				return fmt.Errorf("%w: unknown type %q", ErrInvalidTag, v)
			}
			m.Type = rt
		case "params":
			m.Params = strings.Split(v, "|")
		case "paramDescs":
			m.ParamDescriptions = strings.Split(v, "|")
		case "impact":
			i, err := apis.ParseImpact(v)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidTag, err)
			}
			m.Impact = i
		case "cache":
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: cache: %v", ErrInvalidTag, err)
			}
			m.CacheTimeout = d
		default:
			return fmt.Errorf("%w: unknown option %q", ErrInvalidTag, key)
		}
	}
	if err := m.validate(); err != nil {
		return err
	}
	c.Members = append(c.Members, m)
	return nil
}

var kinds = map[string]Kind{
	"attribute": Attribute,
	"size":      SizeAttribute,
	"operation": Operation,
	"item":      Item,
	"reference": Reference,
	"include":   Include,
}

// split splits s on sep outside single quotes.
func split(s string, sep byte) []string {
	var (
		out    []string
		quoted bool
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case sep:
			if !quoted {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// cut splits an option at the first '=' outside single quotes.
func cut(p string) (key, value string, ok bool) {
	parts := split(p, '=')
	if len(parts) == 1 {
		return strings.TrimSpace(p), "", false
	}
	key = strings.TrimSpace(parts[0])
	return key, strings.TrimSpace(p[len(parts[0])+1:]), true
}

func unquoteTag(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}
