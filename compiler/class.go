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
	"fmt"
	"reflect"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/expr"
	"dirpx.dev/mgmt/objname"
	"dirpx.dev/mgmt/opentype"
	uref "dirpx.dev/mgmt/utils/reflect"
)

// Class is the compiled descriptor of a management object type.
// It is immutable; per-instance state lives in forked attributes.
type Class struct {
	Type        reflect.Type
	Name        *expr.NameInstruction
	Description *expr.Instruction
	Unique      bool
	Attributes  []*Attribute
	Operations  []*Operation
	References  []*Reference
}

// ClassName returns the qualified name of the type.
func (c *Class) ClassName() string { return uref.ClassName(c.Type) }

// Identity evaluates the identity of obj. Relative identities take domain.
func (c *Class) Identity(obj any, domain string) (objname.Name, error) {
	return c.Name.Name(obj, domain)
}

// Describe evaluates the class description against obj.
func (c *Class) Describe(obj any) (string, error) {
	return c.Description.Execute(obj)
}

// Attribute is a compiled attribute. Name and Description are evaluated
// against the object Target resolves to.
type Attribute struct {
	Name        *expr.Instruction
	Description *expr.Instruction
	Target      *access.Chain
	Value       *access.Chain
	Schema      opentype.Type
	Writable    bool
	Is          bool
}

// Fork returns a copy whose value chain has fresh cache state.
func (a *Attribute) Fork() *Attribute {
	cp := *a
	cp.Value = a.Value.Fork()
	return &cp
}

// Info evaluates the attribute's name and description against root.
func (a *Attribute) Info(root any) (apis.AttributeInfo, error) {
	name, err := eval(a.Target, a.Name, root)
	if err != nil {
		return apis.AttributeInfo{}, err
	}
	desc, err := eval(a.Target, a.Description, root)
	if err != nil {
		return apis.AttributeInfo{}, err
	}
	return apis.AttributeInfo{
		Name:        name,
		Description: desc,
		Type:        a.Schema,
		Readable:    true,
		Writable:    a.Writable,
		Is:          a.Is,
	}, nil
}

// Read returns the transport value of the attribute on root.
func (a *Attribute) Read(root any) (any, error) { return a.Value.Read(root) }

// Write stores a transport value on root.
func (a *Attribute) Write(root any, v any) error { return a.Value.Write(root, v) }

// Param is a compiled operation parameter.
type Param struct {
	Name        string
	Description string
	Schema      opentype.Type
	Type        reflect.Type
	Converter   access.Converter
}

// Operation is a compiled operation. Target resolves the receiver of Method.
type Operation struct {
	Name        *expr.Instruction
	Description *expr.Instruction
	Target      *access.Chain
	Method      string
	Params      []Param
	Return      opentype.Type
	Impact      apis.Impact

	ret  access.Converter
	exec access.Executor
}

// Info evaluates the operation's name and description against root.
func (o *Operation) Info(root any) (apis.OperationInfo, error) {
	name, err := eval(o.Target, o.Name, root)
	if err != nil {
		return apis.OperationInfo{}, err
	}
	desc, err := eval(o.Target, o.Description, root)
	if err != nil {
		return apis.OperationInfo{}, err
	}
	params := make([]apis.ParameterInfo, len(o.Params))
	for i, p := range o.Params {
		params[i] = apis.ParameterInfo{Name: p.Name, Description: p.Description, Type: p.Schema}
	}
	return apis.OperationInfo{
		Name:        name,
		Description: desc,
		Params:      params,
		Return:      o.Return,
		Impact:      o.Impact,
	}, nil
}

// Invoke calls the operation on root with transport arguments and returns
// the transport result, or nil for operations without a result.
func (o *Operation) Invoke(root any, args []any) (any, error) {
	if len(args) != len(o.Params) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", apis.ErrOperationNotFound, o.Method, len(o.Params), len(args))
	}
	target, err := o.Target.Native(root)
	if err != nil {
		return nil, err
	}
	if isNilValue(target) {
		return nil, &access.Error{Op: "invoke", Member: o.Method, Owner: o.Target.Type().String(), Err: access.ErrNilTarget}
	}
	fn, ok := uref.MethodValue(target, o.Method)
	if !ok {
		return nil, &access.Error{Op: "invoke", Member: o.Method, Owner: target.Type().String(), Err: access.ErrSignature}
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		p := o.Params[i]
		native, err := p.Converter.ToNative(a)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", p.Name, err)
		}
		if in[i], err = access.Assign(native, p.Type); err != nil {
			return nil, fmt.Errorf("argument %s: %w", p.Name, err)
		}
	}
	out, err := access.Call(o.exec, fn, in)
	if err != nil {
		return nil, &access.Error{Op: "invoke", Member: o.Method, Owner: target.Type().String(), Err: err}
	}
	if len(out) == 0 {
		return nil, nil
	}
	var native any
	if out[0].CanInterface() {
		native = out[0].Interface()
	}
	return o.ret.ToTransport(native)
}

// Reference is a compiled composition reference.
type Reference struct {
	Value  *access.Chain
	Concat bool
}

// Resolve returns the referenced object, or false when it is nil.
func (r *Reference) Resolve(root any) (any, bool, error) {
	v, err := r.Value.Native(root)
	if err != nil {
		return nil, false, err
	}
	if isNilValue(v) || !v.CanInterface() {
		return nil, false, nil
	}
	return v.Interface(), true, nil
}

func eval(target *access.Chain, in *expr.Instruction, root any) (string, error) {
	if in.IsConstant() {
		return in.Execute(nil)
	}
	v, err := target.Native(root)
	if err != nil {
		return "", err
	}
	if !v.IsValid() || !v.CanInterface() {
		return "", fmt.Errorf("%w: %s", access.ErrNilTarget, target.Path())
	}
	return in.Execute(v.Interface())
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
