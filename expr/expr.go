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

// Package expr compiles text templates with embedded member paths,
//
//	"Person #{name} lives in #{address.city}"
//
// into instructions evaluated against live objects. Each path segment is
// resolved once, at compile time, against the declared type reached so
// far. Execution re-walks the compiled access chains on every call.
package expr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/mgmt/access"
	uref "dirpx.dev/mgmt/utils/reflect"
)

const (
	startTag = "#{"
	endTag   = "}"
)

var (
	// ErrUnterminated is returned for a "#{" without a closing "}".
	ErrUnterminated = errors.New("mgmt(expr): unterminated placeholder")
	// ErrUnresolvable is returned when a path segment names no getter or field.
	ErrUnresolvable = errors.New("mgmt(expr): unresolvable path")
	// ErrRelative is returned when a relative identity is resolved without a domain.
	ErrRelative = errors.New("mgmt(expr): relative identity needs a domain")
)

// Instruction is a compiled template.
type Instruction struct {
	template string
	parts    []part
}

// part is either a literal or a compiled path.
type part struct {
	literal string
	path    string
	chain   *access.Chain
}

// Compile parses template and resolves every placeholder path against t.
// exec runs getters met on the way; nil means access.Direct.
func Compile(t reflect.Type, template string, exec access.Executor) (*Instruction, error) {
	in := &Instruction{template: template}
	rest := template
	for {
		i := strings.Index(rest, startTag)
		if i < 0 {
			break
		}
		if i > 0 {
			in.parts = append(in.parts, part{literal: rest[:i]})
		}
		rest = rest[i+len(startTag):]
		j := strings.Index(rest, endTag)
		if j < 0 {
			return nil, fmt.Errorf("%w in %q", ErrUnterminated, template)
		}
		path := rest[:j]
		chain, err := resolve(t, path, exec)
		if err != nil {
			return nil, fmt.Errorf("template %q on %s: %w", template, uref.ClassName(t), err)
		}
		in.parts = append(in.parts, part{path: path, chain: chain})
		rest = rest[j+len(endTag):]
	}
	if rest != "" {
		in.parts = append(in.parts, part{literal: rest})
	}
	return in, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(t reflect.Type, template string, exec access.Executor) *Instruction {
	in, err := Compile(t, template, exec)
	if err != nil {
		panic(err)
	}
	return in
}

// Template returns the source template.
func (in *Instruction) Template() string { return in.template }

// IsConstant reports whether the template has no placeholders.
func (in *Instruction) IsConstant() bool {
	for _, p := range in.parts {
		if p.chain != nil {
			return false
		}
	}
	return true
}

// Execute renders the template against obj. Values are formatted with
// fmt.Sprint after pointers are followed; nil renders as "null".
func (in *Instruction) Execute(obj any) (string, error) {
	var b strings.Builder
	for _, p := range in.parts {
		if p.chain == nil {
			b.WriteString(p.literal)
			continue
		}
		v, err := p.chain.Read(obj)
		if err != nil {
			return "", fmt.Errorf("mgmt(expr): cannot resolve %q on %T: %w", p.path, obj, err)
		}
		b.WriteString(format(v))
	}
	return b.String(), nil
}

// format follows pointers that do not format themselves.
func format(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "null"
		}
		switch rv.Interface().(type) {
		case fmt.Stringer, error:
			return fmt.Sprint(rv.Interface())
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return "null"
	}
	return fmt.Sprint(rv.Interface())
}

// Path compiles a dot-separated member path against t into an access chain.
func Path(t reflect.Type, path string, exec access.Executor) (*access.Chain, error) {
	return resolve(t, path, exec)
}

func resolve(t reflect.Type, path string, exec access.Executor) (*access.Chain, error) {
	chain := access.Root(t)
	cur := t
	for _, seg := range strings.Split(path, ".") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrUnresolvable, path)
		}
		n, ok := segment(cur, seg, exec)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no getter or field %q", ErrUnresolvable, cur, seg)
		}
		chain = chain.Then(n)
		cur = n.Type()
	}
	return chain, nil
}

// segment tries, in order: method Get<Seg>, method <Seg>, field seg, field <Seg>.
func segment(t reflect.Type, seg string, exec access.Executor) (access.Node, bool) {
	capped := uref.Capitalize(seg)
	for _, name := range []string{"Get" + capped, capped} {
		if m, err := access.Method(t, nil, name, "", exec); err == nil {
			return m, true
		}
	}
	for _, name := range []string{seg, capped} {
		if f, ok := uref.FieldOn(t, name); ok {
			return access.Field(t, f, false), true
		}
	}
	return nil, false
}
