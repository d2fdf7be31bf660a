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

package config

import (
	"dirpx.dev/mgmt/apis"
)

const (
	// DefaultDomain is the domain used for relative identities without an owner.
	// Empty means such identities are rejected.
	DefaultDomain = ""
	// DefaultMaxUniqueSuffix bounds " @N" probing.
	DefaultMaxUniqueSuffix = 10000
	// DefaultErrorPolicy logs failed registrations and continues.
	DefaultErrorPolicy = apis.Log
	// DefaultLogDispatch enables info logs for writes and invocations.
	DefaultLogDispatch = true
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUniqueSuffix is valid.
	if cfg.MaxUniqueSuffix <= 0 {
		cfg.MaxUniqueSuffix = DefaultMaxUniqueSuffix
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		DefaultDomain:   DefaultDomain,
		MaxUniqueSuffix: DefaultMaxUniqueSuffix,
		ErrorPolicy:     DefaultErrorPolicy,
		LogDispatch:     DefaultLogDispatch,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithDefaultDomain sets the DefaultDomain option.
func WithDefaultDomain(domain string) Option {
	return func(c *apis.Config) {
		c.DefaultDomain = domain
	}
}

// WithMaxUniqueSuffix sets the MaxUniqueSuffix option.
// A non-positive value resets to the default.
func WithMaxUniqueSuffix(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxUniqueSuffix = DefaultMaxUniqueSuffix
			return
		}
		c.MaxUniqueSuffix = max
	}
}

// WithErrorPolicy sets the ErrorPolicy option.
func WithErrorPolicy(p apis.ErrorPolicy) Option {
	return func(c *apis.Config) {
		c.ErrorPolicy = p
	}
}

// WithLogDispatch sets the LogDispatch option.
func WithLogDispatch(enabled bool) Option {
	return func(c *apis.Config) {
		c.LogDispatch = enabled
	}
}
