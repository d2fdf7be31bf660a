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

package compiler

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/convert"
	"dirpx.dev/mgmt/expr"
	"dirpx.dev/mgmt/meta"
	"dirpx.dev/mgmt/opentype"
	uref "dirpx.dev/mgmt/utils/reflect"
)

// analyzed is one entry of the classes to analyze: a declaring type, the
// embedding path from the analysis root to it, and its declarations.
type analyzed struct {
	typ   reflect.Type
	embed []int
	decl  meta.Class
}

// classes lists t, the registered interfaces it implements, then its
// exported embedded structs, in pre-order.
func (c *Compiler) classes(t reflect.Type) ([]analyzed, error) {
	var (
		out     []analyzed
		visited = map[reflect.Type]bool{}
		ifaces  = c.resolver.Interfaces()
	)
	var visit func(t reflect.Type, embed []int) error
	visit = func(t reflect.Type, embed []int) error {
		if visited[t] {
			return nil
		}
		visited[t] = true
		decl, err := c.describe(t)
		if err != nil {
			return err
		}
		out = append(out, analyzed{typ: t, embed: embed, decl: decl})
		for _, it := range ifaces {
			if visited[it] || !(t.Implements(it) || reflect.PointerTo(t).Implements(it)) {
				continue
			}
			visited[it] = true
			idecl, err := c.describe(it)
			if err != nil {
				return err
			}
			out = append(out, analyzed{typ: t, embed: embed, decl: idecl})
		}
		if t.Kind() != reflect.Struct {
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous || !f.IsExported() {
				continue
			}
			et := uref.Indirect(f.Type)
			if et.Kind() != reflect.Struct {
				continue
			}
			path := append(append([]int{}, embed...), f.Index...)
			if err := visit(et, path); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(t, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// memberKey identifies a member for first-occurrence-wins deduplication.
type memberKey struct {
	kind   meta.Kind
	method string
	field  string
}

func (c *Compiler) build(t reflect.Type) (*Class, error) {
	fail := func(member string, err error) error {
		return &Error{Class: uref.ClassName(t), Member: member, Err: err}
	}
	decl, err := c.describe(t)
	if err != nil {
		return nil, fail("", err)
	}
	if decl.Bean == nil {
		return nil, fail("", apis.ErrNotManaged)
	}
	nameTmpl := decl.Bean.Name
	if nameTmpl == "" {
		nameTmpl = defaultName(t)
	}
	name, err := expr.CompileName(t, nameTmpl, c.exec)
	if err != nil {
		return nil, fail("", err)
	}
	descTmpl := decl.Bean.Description
	if descTmpl == "" {
		descTmpl = uref.ClassName(t)
	}
	desc, err := expr.Compile(t, descTmpl, c.exec)
	if err != nil {
		return nil, fail("", err)
	}
	cls := &Class{Type: t, Name: name, Description: desc, Unique: decl.Bean.MakeNameUnique}
	if err := c.collect(cls, t, access.Root(t), convert.Trail{t}); err != nil {
		return nil, err
	}
	return cls, nil
}

// defaultName is "<package>:type=<Type>".
func defaultName(t reflect.Type) string {
	domain := path.Base(t.PkgPath())
	if domain == "." || domain == "/" {
		domain = "main"
	}
	name := uref.ShortName(t)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return domain + ":type=" + name
}

// collect adds the members of t, reached through target, to cls.
// trail holds the includes being expanded.
func (c *Compiler) collect(cls *Class, t reflect.Type, target *access.Chain, trail convert.Trail) error {
	entries, err := c.classes(t)
	if err != nil {
		return &Error{Class: uref.ClassName(t), Err: err}
	}
	seen := map[memberKey]bool{}
	for _, e := range entries {
		for _, m := range e.decl.Members {
			key := memberKey{kind: m.Kind, method: m.Method, field: m.Field}
			if seen[key] {
				continue
			}
			seen[key] = true
			if err := c.member(cls, t, e, m, target, trail); err != nil {
				var ce *Error
				if errors.As(err, &ce) {
					return err
				}
				return &Error{Class: uref.ClassName(e.typ), Member: m.Field + m.Method, Err: err}
			}
		}
	}
	return nil
}

func (c *Compiler) member(cls *Class, ctx reflect.Type, e analyzed, m meta.Member, target *access.Chain, trail convert.Trail) error {
	switch m.Kind {
	case meta.Attribute:
		a, err := c.attribute(ctx, e, m, target)
		if err != nil {
			return err
		}
		cls.Attributes = append(cls.Attributes, a)
	case meta.SizeAttribute:
		a, err := c.sizeAttribute(ctx, e, m, target)
		if err != nil {
			return err
		}
		cls.Attributes = append(cls.Attributes, a)
	case meta.Operation:
		o, err := c.operation(e, m, target)
		if err != nil {
			return err
		}
		cls.Operations = append(cls.Operations, o)
	case meta.Reference:
		node, typ, err := c.node(e, m, false)
		if err != nil {
			return err
		}
		if k := typ.Kind(); k != reflect.Ptr && k != reflect.Interface {
			return fmt.Errorf("%w: %s", ErrReferenceType, typ)
		}
		cls.References = append(cls.References, &Reference{Value: target.Then(node), Concat: m.ConcatName})
	case meta.Include:
		node, typ, err := c.node(e, m, false)
		if err != nil {
			return err
		}
		inc, err := override(typ, m.Type)
		if err != nil {
			return err
		}
		inc = uref.Indirect(inc)
		if trail.Contains(inc) {
			return fmt.Errorf("%w: %s", ErrCycle, trail.Push(inc))
		}
		return c.collect(cls, inc, target.Then(node), trail.Push(inc))
	case meta.Item:
		// Items only shape composite values.
	}
	return nil
}

// node builds the access node for a field or method member of e.
// typ is the declared type of the member's value.
func (c *Compiler) node(e analyzed, m meta.Member, writable bool) (access.Node, reflect.Type, error) {
	if m.Field != "" {
		f, ok := uref.FieldOn(e.typ, m.Field)
		if !ok {
			return nil, nil, fmt.Errorf("%w: field %s", ErrMemberNotFound, m.Field)
		}
		f.Index = append(append([]int{}, e.embed...), f.Index...)
		return access.Field(e.typ, f, writable), f.Type, nil
	}
	if _, ok := uref.MethodOn(e.typ, m.Method); !ok {
		return nil, nil, fmt.Errorf("%w: method %s", ErrMemberNotFound, m.Method)
	}
	setter := ""
	if writable {
		stem, _ := uref.AccessorStem(m.Method)
		setter = "Set" + stem
		if _, ok := uref.MethodOn(e.typ, setter); !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingSetter, setter)
		}
	}
	n, err := access.Method(e.typ, e.embed, m.Method, setter, c.exec)
	if err != nil {
		return nil, nil, err
	}
	return n, n.Type(), nil
}

// memberName is the default name of a field or getter member.
func memberName(m meta.Member) (name string, isPrefix bool) {
	if m.Field != "" {
		return uref.Uncapitalize(m.Field), false
	}
	stem, is := uref.AccessorStem(m.Method)
	return uref.Uncapitalize(stem), is
}

// texts compiles the name and description templates of a member against
// ctx, the type its target resolves to.
func (c *Compiler) texts(ctx reflect.Type, m meta.Member, defName string) (*expr.Instruction, *expr.Instruction, error) {
	nameTmpl := m.Name
	if nameTmpl == "" {
		nameTmpl = defName
	}
	descTmpl := m.Description
	if descTmpl == "" {
		descTmpl = nameTmpl
	}
	name, err := expr.Compile(ctx, nameTmpl, c.exec)
	if err != nil {
		return nil, nil, err
	}
	desc, err := expr.Compile(ctx, descTmpl, c.exec)
	if err != nil {
		return nil, nil, err
	}
	return name, desc, nil
}

func (c *Compiler) attribute(ctx reflect.Type, e analyzed, m meta.Member, target *access.Chain) (*Attribute, error) {
	node, typ, err := c.node(e, m, m.Writable)
	if err != nil {
		return nil, err
	}
	if m.CacheTimeout > 0 {
		node = access.Cached(node, m.CacheTimeout, c.clock)
	}
	et, err := override(typ, m.Type)
	if err != nil {
		return nil, err
	}
	b, err := c.conv.Bind(et, nil)
	if err != nil {
		return nil, err
	}
	defName, isPrefix := memberName(m)
	name, desc, err := c.texts(ctx, m, defName)
	if err != nil {
		return nil, err
	}
	return &Attribute{
		Name:        name,
		Description: desc,
		Target:      target,
		Value:       target.Then(node).WithConverter(b.Converter),
		Schema:      b.Schema,
		Writable:    m.Writable,
		Is:          isPrefix && typ.Kind() == reflect.Bool,
	}, nil
}

func (c *Compiler) sizeAttribute(ctx reflect.Type, e analyzed, m meta.Member, target *access.Chain) (*Attribute, error) {
	node, typ, err := c.node(e, m, false)
	if err != nil {
		return nil, err
	}
	if !access.SizeSupported(typ) {
		return nil, fmt.Errorf("%w, not %s", ErrSizeType, typ)
	}
	defName, _ := memberName(m)
	name, desc, err := c.texts(ctx, m, defName)
	if err != nil {
		return nil, err
	}
	return &Attribute{
		Name:        name,
		Description: desc,
		Target:      target,
		Value:       target.Then(node).Then(access.Size(typ)),
		Schema:      opentype.Int,
	}, nil
}

func (c *Compiler) operation(e analyzed, m meta.Member, target *access.Chain) (*Operation, error) {
	meth, ok := uref.MethodOn(e.typ, m.Method)
	if !ok {
		return nil, fmt.Errorf("%w: method %s", ErrMemberNotFound, m.Method)
	}
	// The receiver is the declaring object, reached through the embedding path.
	recv := target
	if len(e.embed) > 0 {
		recv = target.Then(access.Field(e.typ, reflect.StructField{Name: e.typ.Name(), Type: e.typ, Index: e.embed}, false))
	}
	o := &Operation{Target: recv, Method: m.Method, Impact: m.Impact, exec: c.exec, ret: access.Identity}

	for i, pt := range meth.In {
		b, err := c.conv.Bind(pt, nil)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		p := Param{Name: fmt.Sprintf("arg%d", i), Schema: b.Schema, Type: pt, Converter: b.Converter}
		if i < len(m.Params) && m.Params[i] != "" {
			p.Name = m.Params[i]
		}
		p.Description = p.Name
		if i < len(m.ParamDescriptions) && m.ParamDescriptions[i] != "" {
			p.Description = m.ParamDescriptions[i]
		}
		o.Params = append(o.Params, p)
	}

	switch res := meth.Results(); len(res) {
	case 0:
		o.Return = opentype.Void
	case 1:
		b, err := c.conv.Bind(res[0], nil)
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		o.Return, o.ret = b.Schema, b.Converter
	default:
		return nil, ErrOperationResult
	}

	var err error
	if o.Name, o.Description, err = c.texts(recv.Type(), m, uref.Uncapitalize(m.Method)); err != nil {
		return nil, err
	}
	return o, nil
}

// CompositeItems implements convert.CompositeSource.
func (c *Compiler) CompositeItems(t reflect.Type, trail convert.Trail) (string, []convert.Item, error) {
	t = uref.Indirect(t)
	decl, err := c.describe(t)
	if err != nil {
		return "", nil, err
	}
	desc := uref.ClassName(t)
	if decl.Composite != nil && decl.Composite.Description != "" {
		desc = decl.Composite.Description
	}
	entries, err := c.classes(t)
	if err != nil {
		return "", nil, err
	}
	var (
		items []convert.Item
		seen  = map[memberKey]bool{}
		names = map[string]bool{}
	)
	for _, e := range entries {
		for _, m := range e.decl.Members {
			if m.Kind != meta.Item {
				continue
			}
			key := memberKey{kind: m.Kind, method: m.Method, field: m.Field}
			if seen[key] {
				continue
			}
			seen[key] = true
			it, err := c.item(t, e, m, trail)
			if err != nil {
				return "", nil, &Error{Class: uref.ClassName(e.typ), Member: m.Field + m.Method, Err: err}
			}
			if names[it.Name] {
				return "", nil, &Error{Class: uref.ClassName(t), Member: it.Name, Err: ErrDuplicateItem}
			}
			names[it.Name] = true
			items = append(items, it)
		}
	}
	return desc, items, nil
}

func (c *Compiler) item(t reflect.Type, e analyzed, m meta.Member, trail convert.Trail) (convert.Item, error) {
	node, typ, err := c.node(e, m, false)
	if err != nil {
		return convert.Item{}, err
	}
	et, err := override(typ, m.Type)
	if err != nil {
		return convert.Item{}, err
	}
	b, err := c.conv.Bind(et, trail)
	if err != nil {
		return convert.Item{}, err
	}
	name := m.Name
	if name == "" {
		name, _ = memberName(m)
	}
	desc := m.Description
	if desc == "" {
		desc = name
	}
	return convert.Item{
		Name:        name,
		Description: desc,
		Schema:      b.Schema,
		Value:       access.Root(t).Then(node).WithConverter(b.Converter),
	}, nil
}

// override returns the exposed type of a member declared as declared.
// An override must be assignable to the declared type, or to its element
// type for slices and arrays.
func override(declared, over reflect.Type) (reflect.Type, error) {
	if over == nil {
		return declared, nil
	}
	if over.AssignableTo(declared) {
		return over, nil
	}
	if k := declared.Kind(); (k == reflect.Slice || k == reflect.Array) && over.AssignableTo(declared.Elem()) {
		return reflect.SliceOf(over), nil
	}
	return nil, fmt.Errorf("%w: %s to %s", ErrTypeOverride, over, declared)
}
