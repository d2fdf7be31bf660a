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

package apis

import (
	"strings"

	"dirpx.dev/mgmt/objname"
	"dirpx.dev/mgmt/opentype"
)

// Schema is the published description of one management object.
type Schema struct {
	ClassName   string
	Description string
	Attributes  []AttributeInfo
	Operations  []OperationInfo
}

// AttributeInfo describes one attribute.
type AttributeInfo struct {
	Name        string
	Description string
	Type        opentype.Type
	Readable    bool
	Writable    bool
	// Is is set for boolean attributes read through an IsX getter.
	Is bool
}

// ParameterInfo describes one operation parameter.
type ParameterInfo struct {
	Name        string
	Description string
	Type        opentype.Type
}

// OperationInfo describes one operation.
type OperationInfo struct {
	Name        string
	Description string
	Params      []ParameterInfo
	Return      opentype.Type
	Impact      Impact
}

// ParamTypes returns the transport type names of the parameters.
func (o OperationInfo) ParamTypes() []string {
	out := make([]string, len(o.Params))
	for i, p := range o.Params {
		out[i] = p.Type.TypeName()
	}
	return out
}

// Signature renders the dispatch key of o, e.g. "add(int, string)".
func (o OperationInfo) Signature() string {
	return Signature(o.Name, o.ParamTypes())
}

// Signature renders a dispatch key from a name and parameter type names.
func Signature(name string, types []string) string {
	return name + "(" + strings.Join(types, ", ") + ")"
}

// Attribute is a named transport value.
type Attribute struct {
	Name  string
	Value any
}

// Facade is what a manager publishes for one management object.
// Values crossing a Facade are transport values (see package opentype).
type Facade interface {
	// Identity returns the published identity.
	Identity() objname.Name
	// Attribute reads one attribute.
	Attribute(name string) (any, error)
	// SetAttribute writes one attribute.
	SetAttribute(name string, value any) error
	// Attributes reads several attributes. Failures are skipped and
	// reported in the returned error; successes are still returned.
	Attributes(names []string) ([]Attribute, error)
	// SetAttributes writes several attributes with the same best-effort
	// rule and returns the attributes that were written.
	SetAttributes(attrs []Attribute) ([]Attribute, error)
	// Invoke calls the operation matching name and the parameter type
	// names in signature.
	Invoke(name string, args []any, signature []string) (any, error)
	// Schema describes attributes and operations. The description is
	// evaluated against the live object.
	Schema() (Schema, error)
}

// Facility hosts published facades and routes calls to them.
type Facility interface {
	Publish(name objname.Name, f Facade) error
	IsPublished(name objname.Name) bool
	Depublish(name objname.Name) error

	GetAttribute(name objname.Name, attr string) (any, error)
	SetAttribute(name objname.Name, attr string, value any) error
	Invoke(name objname.Name, op string, args []any, signature []string) (any, error)
	Schema(name objname.Name) (Schema, error)
}

// ExecutionContext wraps calls to getters, setters and operations.
// Implementations must call call exactly once and return its error unchanged.
type ExecutionContext interface {
	ExecuteInContext(call func() error) error
}

// ExecutionContextFunc adapts a function to ExecutionContext.
type ExecutionContextFunc func(call func() error) error

// ExecuteInContext calls f(call).
func (f ExecutionContextFunc) ExecuteInContext(call func() error) error { return f(call) }

// ErrorStrategy decides what happens with a failed registration.
// Returning nil swallows err; returning an error makes Register fail.
type ErrorStrategy interface {
	HandleRegisterError(obj any, err error) error
}
