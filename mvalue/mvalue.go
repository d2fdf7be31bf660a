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

// Package mvalue provides ready-made values meant to be included into
// management objects. Each value carries a name; the attributes and
// operations it contributes are named after it, so one owner can include
// several values of the same kind:
//
//	type Server struct {
//		_        struct{}             `mgmt:"bean,name='Demo:type=Server'"`
//		Requests *mvalue.EventCounter `mgmt:"include"`
//		Errors   *mvalue.EventCounter `mgmt:"include"`
//	}
//
//	s := &Server{
//		Requests: mvalue.NewEventCounter("requests"),
//		Errors:   mvalue.NewEventCounter("errors"),
//	}
//
// exposes the attributes requests and errors and the operations
// resetRequests and resetErrors.
package mvalue

import (
	"time"

	uref "dirpx.dev/mgmt/utils/reflect"
)

// validFor bounds how long a since-last-read value stays meaningful.
// Older values are reported as if nothing happened.
const validFor = 10 * time.Minute

// named holds the name and description shared by all values.
type named struct {
	name        string
	description string
}

func newNamed(name, description string) named {
	name = uref.Uncapitalize(name)
	if description == "" {
		description = name
	}
	return named{name: name, description: description}
}

// Name returns the value's name, first letter lower case.
func (n *named) Name() string { return n.name }

// CapitalizedName returns the name with its first letter upper case.
func (n *named) CapitalizedName() string { return uref.Capitalize(n.name) }

// Description returns the value's description.
func (n *named) Description() string { return n.description }

// Option configures a value.
type Option func(*options)

type options struct {
	description string
	clock       func() time.Time
}

// WithDescription sets the description. It defaults to the name.
func WithDescription(desc string) Option {
	return func(o *options) { o.description = desc }
}

// WithClock sets the time source used for timing and expiry.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func apply(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
