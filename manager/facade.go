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

package manager

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/compiler"
	"dirpx.dev/mgmt/objname"
)

var (
	// ErrDuplicateAttribute is returned when two attributes of one object
	// evaluate to the same name.
	ErrDuplicateAttribute = errors.New("mgmt(manager): duplicate attribute name")
	// ErrDuplicateOperation is returned when two operations of one object
	// share a signature.
	ErrDuplicateOperation = errors.New("mgmt(manager): duplicate operation signature")
)

var _ apis.Facade = (*Facade)(nil)

// Facade publishes one registered object. Attribute and operation names
// are evaluated once, when the facade is built.
type Facade struct {
	mgr  *Manager
	cls  *compiler.Class
	obj  any
	name objname.Name

	attrs  []attribute
	byName map[string]int
	ops    []operation
	bySig  map[string]int
}

type attribute struct {
	info apis.AttributeInfo
	impl *compiler.Attribute
}

type operation struct {
	info apis.OperationInfo
	impl *compiler.Operation
}

func newFacade(m *Manager, cls *compiler.Class, obj any) (*Facade, error) {
	f := &Facade{
		mgr:    m,
		cls:    cls,
		obj:    obj,
		byName: make(map[string]int, len(cls.Attributes)),
		bySig:  make(map[string]int, len(cls.Operations)),
	}
	for _, a := range cls.Attributes {
		a = a.Fork()
		info, err := a.Info(obj)
		if err != nil {
			return nil, err
		}
		if _, dup := f.byName[info.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAttribute, info.Name)
		}
		f.byName[info.Name] = len(f.attrs)
		f.attrs = append(f.attrs, attribute{info: info, impl: a})
	}
	for _, o := range cls.Operations {
		info, err := o.Info(obj)
		if err != nil {
			return nil, err
		}
		sig := info.Signature()
		if _, dup := f.bySig[sig]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOperation, sig)
		}
		f.bySig[sig] = len(f.ops)
		f.ops = append(f.ops, operation{info: info, impl: o})
	}
	return f, nil
}

// Identity returns the published identity.
func (f *Facade) Identity() objname.Name { return f.name }

// Object returns the source object.
func (f *Facade) Object() any { return f.obj }

func (f *Facade) attribute(name string) (attribute, error) {
	i, ok := f.byName[name]
	if !ok {
		return attribute{}, fmt.Errorf("%w: %q", apis.ErrAttributeNotFound, name)
	}
	return f.attrs[i], nil
}

// Attribute reads the attribute called name.
func (f *Facade) Attribute(name string) (any, error) {
	a, err := f.attribute(name)
	if err != nil {
		return nil, err
	}
	return a.impl.Read(f.obj)
}

// SetAttribute writes the attribute called name.
func (f *Facade) SetAttribute(name string, value any) error {
	a, err := f.attribute(name)
	if err != nil {
		return err
	}
	if !a.info.Writable {
		return fmt.Errorf("%w: %q", apis.ErrAttributeNotWritable, name)
	}
	if f.mgr.Config().LogDispatch {
		f.mgr.log.Info("set attribute",
			zap.Stringer("identity", f.name),
			zap.String("attribute", name),
			zap.Any("value", value))
	}
	return a.impl.Write(f.obj, value)
}

// Attributes reads names in order, skipping failures.
func (f *Facade) Attributes(names []string) ([]apis.Attribute, error) {
	var (
		out  = make([]apis.Attribute, 0, len(names))
		errs error
	)
	for _, name := range names {
		v, err := f.Attribute(name)
		if err != nil {
			f.mgr.log.Warn("could not read attribute",
				zap.Stringer("identity", f.name),
				zap.String("attribute", name),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("attribute %s: %w", name, err))
			continue
		}
		out = append(out, apis.Attribute{Name: name, Value: v})
	}
	return out, errs
}

// SetAttributes writes attrs in order, skipping failures, and returns
// the attributes that were written.
func (f *Facade) SetAttributes(attrs []apis.Attribute) ([]apis.Attribute, error) {
	var (
		out  = make([]apis.Attribute, 0, len(attrs))
		errs error
	)
	for _, a := range attrs {
		if err := f.SetAttribute(a.Name, a.Value); err != nil {
			f.mgr.log.Warn("could not set attribute",
				zap.Stringer("identity", f.name),
				zap.String("attribute", a.Name),
				zap.Any("value", a.Value),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("attribute %s: %w", a.Name, err))
			continue
		}
		out = append(out, a)
	}
	return out, errs
}

// Invoke calls the operation whose name and parameter type names match.
func (f *Facade) Invoke(name string, args []any, signature []string) (any, error) {
	sig := apis.Signature(name, signature)
	i, ok := f.bySig[sig]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apis.ErrOperationNotFound, sig)
	}
	if f.mgr.Config().LogDispatch {
		f.mgr.log.Info("invoke operation",
			zap.Stringer("identity", f.name),
			zap.String("operation", sig))
	}
	return f.ops[i].impl.Invoke(f.obj, args)
}

// Schema describes the object. The description is evaluated now.
func (f *Facade) Schema() (apis.Schema, error) {
	desc, err := f.cls.Describe(f.obj)
	if err != nil {
		return apis.Schema{}, err
	}
	s := apis.Schema{
		ClassName:   f.cls.ClassName(),
		Description: desc,
		Attributes:  make([]apis.AttributeInfo, len(f.attrs)),
		Operations:  make([]apis.OperationInfo, len(f.ops)),
	}
	for i, a := range f.attrs {
		s.Attributes[i] = a.info
	}
	for i, o := range f.ops {
		s.Operations[i] = o.info
	}
	return s, nil
}
