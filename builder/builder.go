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

// Package builder constructs the managers behind the process-wide API.
package builder

import (
	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/manager"
)

// Builder builds a Manager for cfg. prev is the manager being replaced,
// or nil on first use; builders may carry its state over.
type Builder interface {
	BuildManager(cfg apis.Config, prev *manager.Manager) (*manager.Manager, error)
}

// New returns the default Builder. The built manager reuses the previous
// manager's facility and metadata resolver, so published objects of other
// owners and explicit declarations survive a rebuild. opts are applied
// last.
func New(opts ...manager.Option) Builder {
	return &builder{opts: opts}
}

type builder struct {
	opts []manager.Option
}

func (b *builder) BuildManager(cfg apis.Config, prev *manager.Manager) (*manager.Manager, error) {
	opts := []manager.Option{manager.WithConfig(cfg)}
	if prev != nil {
		opts = append(opts,
			manager.WithFacility(prev.Facility()),
			manager.WithResolver(prev.Compiler().Resolver()),
		)
	}
	return manager.New(append(opts, b.opts...)...)
}

// Func adapts a function to Builder.
type Func func(cfg apis.Config, prev *manager.Manager) (*manager.Manager, error)

// BuildManager implements Builder.
func (f Func) BuildManager(cfg apis.Config, prev *manager.Manager) (*manager.Manager, error) {
	return f(cfg, prev)
}
