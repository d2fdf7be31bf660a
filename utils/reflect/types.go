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

package reflect

import (
	"errors"
	"path"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectNilPointer is returned when a walk meets a nil pointer.
	ErrReflectNilPointer = errors.New("reflect: nil pointer on access path")
)

// MaxIndirect limits pointer unwrapping depth.
const MaxIndirect = 8

// ErrorType is the reflect.Type of the error interface.
var ErrorType = reflect.TypeOf((*error)(nil)).Elem()

// Indirect unwraps pointer types up to MaxIndirect levels.
func Indirect(t reflect.Type) reflect.Type {
	for i := 0; t != nil && t.Kind() == reflect.Ptr && i < MaxIndirect; i++ {
		t = t.Elem()
	}
	return t
}

// IndirectValue follows pointers and interfaces until it reaches a
// non-pointer value. A nil pointer or interface yields ErrReflectNilPointer.
func IndirectValue(v reflect.Value) (reflect.Value, error) {
	for i := 0; i <= MaxIndirect; i++ {
		switch v.Kind() {
		case reflect.Ptr, reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}, ErrReflectNilPointer
			}
			v = v.Elem()
		case reflect.Invalid:
			return reflect.Value{}, ErrReflectNilPointer
		default:
			return v, nil
		}
	}
	return v, nil
}

// ClassName returns "import/path.Type" for named types and t.String()
// for everything else. Pointers are unwrapped first.
func ClassName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	t = Indirect(t)
	name := stripTypeParams(t.Name())
	if name == "" {
		return t.String()
	}
	if p := t.PkgPath(); p != "" {
		return p + "." + name
	}
	return name
}

// ShortName returns "pkg.Type" using only the last import path element.
func ShortName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	t = Indirect(t)
	name := stripTypeParams(t.Name())
	if name == "" {
		return t.String()
	}
	if p := t.PkgPath(); p != "" {
		return path.Base(p) + "." + name
	}
	return name
}

// stripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func stripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// Uncapitalize lower-cases the first rune of s.
func Uncapitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// AccessorStem strips a leading "Get" or "Is" from a method name when it is
// followed by an upper-case rune. isPrefix reports whether "Is" was removed.
func AccessorStem(method string) (stem string, isPrefix bool) {
	for _, p := range []string{"Get", "Is"} {
		rest, ok := strings.CutPrefix(method, p)
		if !ok || rest == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsUpper(r) {
			return rest, p == "Is"
		}
	}
	return method, false
}

// Exported reports whether name starts with an upper-case rune.
func Exported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
