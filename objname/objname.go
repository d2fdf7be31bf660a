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

// Package objname implements the textual identity of a management object:
// a domain followed by an ordered list of key properties,
//
//	domain:key1=value1,key2=value2
//
// Properties keep the order they were declared in. Canonical returns the
// key-sorted form used for equality by a facility.
package objname

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMalformed is returned when a string is not a valid identity.
	ErrMalformed = errors.New("mgmt(objname): malformed identity")
	// ErrDuplicateKey is returned when a key appears twice.
	ErrDuplicateKey = errors.New("mgmt(objname): duplicate key")
)

// Property is a single key=value pair of an identity.
// Value is stored in its rendered form, quotes included.
type Property struct {
	Key   string
	Value string
}

// Name is a parsed identity. The zero value is not a valid identity.
type Name struct {
	domain string
	props  []Property
}

// New builds a Name from a domain and properties, validating both.
func New(domain string, props ...Property) (Name, error) {
	if strings.ContainsAny(domain, ":\n") {
		return Name{}, fmt.Errorf("%w: invalid domain %q", ErrMalformed, domain)
	}
	if len(props) == 0 {
		return Name{}, fmt.Errorf("%w: no key properties", ErrMalformed)
	}
	seen := make(map[string]struct{}, len(props))
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if err := checkKey(p.Key); err != nil {
			return Name{}, err
		}
		if err := checkValue(p.Value); err != nil {
			return Name{}, err
		}
		if _, dup := seen[p.Key]; dup {
			return Name{}, fmt.Errorf("%w: %q", ErrDuplicateKey, p.Key)
		}
		seen[p.Key] = struct{}{}
		out = append(out, p)
	}
	return Name{domain: domain, props: out}, nil
}

// Parse parses s as "domain:k=v,...".
func Parse(s string) (Name, error) {
	i := indexUnquoted(s, ':')
	if i < 0 {
		return Name{}, fmt.Errorf("%w: missing domain separator in %q", ErrMalformed, s)
	}
	props, err := ParseProperties(s[i+1:])
	if err != nil {
		return Name{}, fmt.Errorf("%w (in %q)", err, s)
	}
	return New(s[:i], props...)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// ParseProperties splits a key property list on unquoted commas.
func ParseProperties(s string) ([]Property, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty key property list", ErrMalformed)
	}
	var props []Property
	for _, part := range splitUnquoted(s, ',') {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: property %q has no '='", ErrMalformed, part)
		}
		props = append(props, Property{Key: part[:eq], Value: part[eq+1:]})
	}
	return props, nil
}

// Domain returns the domain part.
func (n Name) Domain() string { return n.domain }

// Properties returns a copy of the key properties in declared order.
func (n Name) Properties() []Property {
	out := make([]Property, len(n.props))
	copy(out, n.props)
	return out
}

// Get returns the unquoted value of key.
func (n Name) Get(key string) (string, bool) {
	for _, p := range n.props {
		if p.Key == key {
			v, err := Unquote(p.Value)
			if err != nil {
				return p.Value, true
			}
			return v, true
		}
	}
	return "", false
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool { return len(n.props) == 0 }

// PropertyList renders the key properties in declared order.
func (n Name) PropertyList() string {
	var b strings.Builder
	for i, p := range n.props {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// String renders the identity in declared property order.
func (n Name) String() string {
	if n.IsZero() {
		return ""
	}
	return n.domain + ":" + n.PropertyList()
}

// Canonical renders the identity with keys sorted lexically.
func (n Name) Canonical() string {
	props := n.Properties()
	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return Name{domain: n.domain, props: props}.String()
}

// Equal reports whether n and o name the same object.
func (n Name) Equal(o Name) bool { return n.Canonical() == o.Canonical() }

// WithSuffix returns a copy of n whose last property value has suffix
// appended. Quoted values are re-quoted around the extended text.
func (n Name) WithSuffix(suffix string) (Name, error) {
	if n.IsZero() {
		return Name{}, fmt.Errorf("%w: empty identity", ErrMalformed)
	}
	props := n.Properties()
	last := &props[len(props)-1]
	raw, err := Unquote(last.Value)
	if err != nil {
		return Name{}, err
	}
	if IsQuoted(last.Value) {
		last.Value = Quote(raw + suffix)
	} else {
		last.Value = QuoteIfNeeded(raw + suffix)
	}
	return New(n.domain, props...)
}

// Append returns the identity formed by n's domain and properties followed
// by the properties of child.
func (n Name) Append(child []Property) (Name, error) {
	props := append(n.Properties(), child...)
	return New(n.domain, props...)
}

// MarshalText renders the identity.
func (n Name) MarshalText() ([]byte, error) {
	if n.IsZero() {
		return nil, fmt.Errorf("%w: empty identity", ErrMalformed)
	}
	return []byte(n.String()), nil
}

// UnmarshalText parses an identity.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func checkKey(k string) error {
	if k == "" {
		return fmt.Errorf("%w: empty key", ErrMalformed)
	}
	if strings.ContainsAny(k, ":,=*?\"\n") {
		return fmt.Errorf("%w: invalid key %q", ErrMalformed, k)
	}
	return nil
}

func checkValue(v string) error {
	if IsQuoted(v) {
		_, err := Unquote(v)
		return err
	}
	if strings.ContainsAny(v, ":,=\"\n") {
		return fmt.Errorf("%w: value %q must be quoted", ErrMalformed, v)
	}
	return nil
}

// indexUnquoted returns the first index of c outside a quoted section.
func indexUnquoted(s string, c byte) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch {
		case quoted && s[i] == '\\':
			i++
		case s[i] == '"':
			quoted = !quoted
		case !quoted && s[i] == c:
			return i
		}
	}
	return -1
}

func splitUnquoted(s string, sep byte) []string {
	var parts []string
	for {
		i := indexUnquoted(s, sep)
		if i < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:i])
		s = s[i+1:]
	}
}

// IsRelative reports whether s lacks a domain: it has no ':' outside
// quotes, or a '=' appears before the first one.
func IsRelative(s string) bool {
	colon := indexUnquoted(s, ':')
	if colon < 0 {
		return true
	}
	eq := strings.IndexByte(s, '=')
	return eq >= 0 && eq < colon
}
