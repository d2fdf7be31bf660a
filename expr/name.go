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

package expr

import (
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/objname"
)

// NameInstruction is a compiled identity template. The template is parsed
// as an identity whose property values are templates. Property order is
// kept as written.
type NameInstruction struct {
	template string
	domain   string
	relative bool
	props    []propInstruction
}

type propInstruction struct {
	key   string
	value *Instruction
}

// CompileName compiles an identity template such as
// "Demo:type=Person,name=#{name}". A template without a domain separator,
// or with '=' before the first ':', is relative.
func CompileName(t reflect.Type, template string, exec access.Executor) (*NameInstruction, error) {
	ni := &NameInstruction{template: template, relative: objname.IsRelative(template)}
	src := template
	if ni.relative {
		src = ":" + src
	}
	parsed, err := objname.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("identity template %q: %w", template, err)
	}
	ni.domain = parsed.Domain()
	for _, p := range parsed.Properties() {
		in, err := Compile(t, p.Value, exec)
		if err != nil {
			return nil, fmt.Errorf("identity template %q: %w", template, err)
		}
		ni.props = append(ni.props, propInstruction{key: p.Key, value: in})
	}
	return ni, nil
}

// Template returns the source template.
func (ni *NameInstruction) Template() string { return ni.template }

// Relative reports whether the template has no domain.
func (ni *NameInstruction) Relative() bool { return ni.relative }

// Domain returns the template's domain; empty when relative.
func (ni *NameInstruction) Domain() string { return ni.domain }

// Properties evaluates the property values against obj, quoting them
// when they contain separators.
func (ni *NameInstruction) Properties(obj any) ([]objname.Property, error) {
	out := make([]objname.Property, 0, len(ni.props))
	for _, p := range ni.props {
		v, err := p.value.Execute(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, objname.Property{Key: p.key, Value: objname.QuoteIfNeeded(v)})
	}
	return out, nil
}

// Execute renders the identity string against obj. Relative templates
// render without a domain.
func (ni *NameInstruction) Execute(obj any) (string, error) {
	props, err := ni.Properties(obj)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if !ni.relative {
		b.WriteString(ni.domain)
		b.WriteByte(':')
	}
	for i, p := range props {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String(), nil
}

// Name evaluates the identity against obj. Relative templates take
// domain; an empty domain then fails with ErrRelative.
func (ni *NameInstruction) Name(obj any, domain string) (objname.Name, error) {
	props, err := ni.Properties(obj)
	if err != nil {
		return objname.Name{}, err
	}
	if ni.relative {
		if domain == "" {
			return objname.Name{}, fmt.Errorf("%w: %q", ErrRelative, ni.template)
		}
		return objname.New(domain, props...)
	}
	return objname.New(ni.domain, props...)
}
