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
	"fmt"
	"strings"
)

// ErrorPolicy selects what a manager does with a failed registration.
//
// # Values
//
//   - Log    — log the failure and continue (default).
//   - Raise  — return the failure to the caller.
//   - Ignore — drop the failure silently.
//
// Registration failures include duplicate registration, identity
// collisions that unique-name probing cannot resolve, compile errors of
// the object's class and facility rejections. Under Log and Ignore a
// batch registration keeps going after a failing object.
//
// # Contract
//
//   - The zero value is Log.
//   - String, Parse, MarshalText and UnmarshalText use the same
//     case-insensitive tokens "log", "raise" and "ignore", so a policy can
//     be given in YAML files and environment variables.
type ErrorPolicy int

const (
	// Log logs registration failures and swallows them.
	Log ErrorPolicy = iota
	// Raise returns registration failures to the caller.
	Raise
	// Ignore swallows registration failures without logging.
	Ignore
)

// String returns the canonical token, or "Unknown(<n>)" for invalid values.
func (p ErrorPolicy) String() string {
	switch p {
	case Log:
		return "log"
	case Raise:
		return "raise"
	case Ignore:
		return "ignore"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseErrorPolicy parses a case-insensitive policy token.
// Surrounding whitespace is ignored.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Log, fmt.Errorf("mgmt(apis): empty error policy")
	case "log":
		return Log, nil
	case "raise":
		return Raise, nil
	case "ignore":
		return Ignore, nil
	default:
		return Log, fmt.Errorf("mgmt(apis): unknown error policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
// Unknown values are rejected rather than serialized.
func (p ErrorPolicy) MarshalText() ([]byte, error) {
	switch p {
	case Log, Raise, Ignore:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("mgmt(apis): cannot marshal unknown error policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
// On failure the receiver is left unchanged.
func (p *ErrorPolicy) UnmarshalText(text []byte) error {
	v, err := ParseErrorPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
