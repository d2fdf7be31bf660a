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

// Package facility is an in-memory management facility. It stores
// published facades under their canonical identity and routes attribute
// and operation calls to them.
package facility

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/objname"
)

var (
	// ErrNilFacade is returned when publishing a nil facade.
	ErrNilFacade = errors.New("mgmt(facility): nil facade")
	// ErrEmptyIdentity is returned when publishing under a zero identity.
	ErrEmptyIdentity = errors.New("mgmt(facility): empty identity")
)

// Ensure Server satisfies the facility contract.
var _ apis.Facility = (*Server)(nil)

// Server is a concurrency-safe, in-memory apis.Facility.
type Server struct {
	log *zap.Logger

	mu      sync.RWMutex
	entries map[string]published // by canonical identity
}

type published struct {
	name   objname.Name
	facade apis.Facade
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for publish and depublish events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns an empty Server.
func New(opts ...Option) *Server {
	s := &Server{log: zap.L(), entries: make(map[string]published)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish stores f under name.
func (s *Server) Publish(name objname.Name, f apis.Facade) error {
	if name.IsZero() {
		return ErrEmptyIdentity
	}
	if f == nil {
		return ErrNilFacade
	}
	key := name.Canonical()
	s.mu.Lock()
	if _, dup := s.entries[key]; dup {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", apis.ErrAlreadyPublished, name)
	}
	s.entries[key] = published{name: name, facade: f}
	s.mu.Unlock()
	s.log.Debug("published", zap.Stringer("identity", name))
	return nil
}

// IsPublished reports whether something is published under name.
func (s *Server) IsPublished(name objname.Name) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name.Canonical()]
	return ok
}

// Depublish removes name. Unknown identities yield apis.ErrNotPublished.
func (s *Server) Depublish(name objname.Name) error {
	key := name.Canonical()
	s.mu.Lock()
	if _, ok := s.entries[key]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", apis.ErrNotPublished, name)
	}
	delete(s.entries, key)
	s.mu.Unlock()
	s.log.Debug("depublished", zap.Stringer("identity", name))
	return nil
}

// Lookup returns the facade published under name.
func (s *Server) Lookup(name objname.Name) (apis.Facade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.entries[name.Canonical()]
	return p.facade, ok
}

func (s *Server) facade(name objname.Name) (apis.Facade, error) {
	f, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apis.ErrNotPublished, name)
	}
	return f, nil
}

// GetAttribute reads attr of the object published under name.
func (s *Server) GetAttribute(name objname.Name, attr string) (any, error) {
	f, err := s.facade(name)
	if err != nil {
		return nil, err
	}
	return f.Attribute(attr)
}

// SetAttribute writes attr of the object published under name.
func (s *Server) SetAttribute(name objname.Name, attr string, value any) error {
	f, err := s.facade(name)
	if err != nil {
		return err
	}
	return f.SetAttribute(attr, value)
}

// Invoke calls op on the object published under name.
func (s *Server) Invoke(name objname.Name, op string, args []any, signature []string) (any, error) {
	f, err := s.facade(name)
	if err != nil {
		return nil, err
	}
	return f.Invoke(op, args, signature)
}

// Schema describes the object published under name.
func (s *Server) Schema(name objname.Name) (apis.Schema, error) {
	f, err := s.facade(name)
	if err != nil {
		return apis.Schema{}, err
	}
	return f.Schema()
}

// Names returns all published identities sorted by their rendering.
func (s *Server) Names() []objname.Name {
	return s.Query("")
}

// Query returns the published identities in domain whose properties
// include every property in match, compared unquoted. An empty domain
// matches all domains.
func (s *Server) Query(domain string, match ...objname.Property) []objname.Name {
	s.mu.RLock()
	out := make([]objname.Name, 0, len(s.entries))
	for _, p := range s.entries {
		if domain != "" && p.name.Domain() != domain {
			continue
		}
		if matches(p.name, match) {
			out = append(out, p.name)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Len returns the number of published identities.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matches(n objname.Name, match []objname.Property) bool {
	for _, m := range match {
		if v, ok := n.Get(m.Key); !ok || v != m.Value {
			return false
		}
	}
	return true
}
