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
	"reflect"
)

// Declarers returns a Source that asks types implementing Declarer.
func Declarers() Source {
	return declarerSource{}
}

// declarerSource is the fast path for self-describing types.
type declarerSource struct{}

var declarerType = reflect.TypeOf((*Declarer)(nil)).Elem()

func (declarerSource) TryDescribe(t reflect.Type) (Class, bool, error) {
	if t == nil || t.Kind() == reflect.Interface {
		return Class{}, false, nil
	}
	t = normalize(t)
	switch {
	case t.Implements(declarerType):
		return reflect.Zero(t).Interface().(Declarer).ManagedClass(), true, nil
	case reflect.PointerTo(t).Implements(declarerType):
		return reflect.New(t).Interface().(Declarer).ManagedClass(), true, nil
	}
	return Class{}, false, nil
}

// Resolver tries sources in order until one handles a type.
type Resolver struct {
	srcs []Source
}

// NewResolver constructs a Resolver over the given sources.
// Nil sources are ignored.
func NewResolver(sources ...Source) *Resolver {
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Resolver{srcs: out}
}

// Standard returns the default chain: Declarers, reg, then Tags(reg).
func Standard(reg *Registry) *Resolver {
	return NewResolver(Declarers(), reg, Tags(reg))
}

// Describe returns the class of t from the first source that handles it.
// Pointer types are described by their element type.
func (r *Resolver) Describe(t reflect.Type) (Class, bool, error) {
	if t == nil {
		return Class{}, false, ErrNilType
	}
	t = normalize(t)
	for _, s := range r.srcs {
		c, ok, err := s.TryDescribe(t)
		if err != nil {
			return Class{}, false, err
		}
		if ok {
			if err := c.Validate(); err != nil {
				return Class{}, false, err
			}
			return c, true, nil
		}
	}
	return Class{}, false, nil
}

// interfaceLister is implemented by sources that declare interface types.
type interfaceLister interface {
	Interfaces() []reflect.Type
}

// Interfaces returns the declared interface types of all sources in
// source order, then registration order.
func (r *Resolver) Interfaces() []reflect.Type {
	var out []reflect.Type
	seen := make(map[reflect.Type]struct{})
	for _, s := range r.srcs {
		l, ok := s.(interfaceLister)
		if !ok {
			continue
		}
		for _, t := range l.Interfaces() {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}
