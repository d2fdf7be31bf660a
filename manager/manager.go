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

// Package manager registers management objects with a facility. It
// computes identities, builds facades, and cascades registration through
// composition references.
package manager

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/compiler"
	"dirpx.dev/mgmt/config"
	"dirpx.dev/mgmt/convert"
	"dirpx.dev/mgmt/facility"
	"dirpx.dev/mgmt/meta"
	"dirpx.dev/mgmt/objname"
)

var (
	// ErrNilObject is returned when registering nil.
	ErrNilObject = errors.New("mgmt(manager): nil object")
	// ErrUncomparable is returned for objects that cannot key the live registry.
	ErrUncomparable = errors.New("mgmt(manager): object is not comparable")
)

// Manager owns the live registry of management objects.
// It is safe for concurrent use.
type Manager struct {
	comp *compiler.Compiler
	fac  apis.Facility
	log  *zap.Logger
	ctxs *Contexts
	live live

	cfg      atomic.Pointer[apis.Config]
	strategy atomic.Pointer[strategyHolder]
}

type strategyHolder struct {
	s apis.ErrorStrategy
	// explicit strategies survive SetConfig.
	explicit bool
}

type options struct {
	cfg      apis.Config
	fac      apis.Facility
	log      *zap.Logger
	strategy apis.ErrorStrategy
	comp     []compiler.Option
}

// Option configures a Manager.
type Option func(*options)

// WithConfig sets the configuration.
func WithConfig(cfg apis.Config) Option { return func(o *options) { o.cfg = cfg } }

// WithFacility sets the facility objects are published to. The default
// is a fresh in-memory facility.
func WithFacility(f apis.Facility) Option {
	return func(o *options) {
		if f != nil {
			o.fac = f
		}
	}
}

// WithLogger sets the logger. The default is zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithErrorStrategy overrides the strategy selected by Config.ErrorPolicy.
func WithErrorStrategy(s apis.ErrorStrategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithResolver sets the metadata resolver.
func WithResolver(r *meta.Resolver) Option {
	return func(o *options) { o.comp = append(o.comp, compiler.WithResolver(r)) }
}

// WithRegistry resolves metadata through declarers, reg and struct tags.
func WithRegistry(reg *meta.Registry) Option {
	return WithResolver(meta.Standard(reg))
}

// WithStrategies adds conversion strategies tried before the built-ins.
func WithStrategies(s ...convert.Strategy) Option {
	return func(o *options) { o.comp = append(o.comp, compiler.WithStrategies(s...)) }
}

// WithClock sets the clock of cached attributes.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.comp = append(o.comp, compiler.WithClock(clock)) }
}

// New constructs a Manager.
func New(opts ...Option) (*Manager, error) {
	o := options{cfg: config.DefaultConfig(), log: zap.L()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := config.Validate(o.cfg); err != nil {
		return nil, err
	}
	if o.fac == nil {
		o.fac = facility.New(facility.WithLogger(o.log))
	}
	m := &Manager{fac: o.fac, log: o.log, ctxs: &Contexts{}}
	m.comp = compiler.New(append(o.comp,
		compiler.WithExecutor(m.ctxs),
		compiler.WithDefaultDomain(o.cfg.DefaultDomain))...)
	cfg := o.cfg
	m.cfg.Store(&cfg)
	if o.strategy != nil {
		m.strategy.Store(&strategyHolder{s: o.strategy, explicit: true})
	} else {
		m.strategy.Store(&strategyHolder{s: ErrorStrategyFor(cfg.ErrorPolicy, m.log)})
	}
	return m, nil
}

// Config returns the current configuration.
func (m *Manager) Config() apis.Config { return *m.cfg.Load() }

// SetConfig replaces the configuration. Unless a strategy was set
// explicitly, the error strategy follows cfg.ErrorPolicy.
func (m *Manager) SetConfig(cfg apis.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	m.cfg.Store(&cfg)
	m.comp.SetDefaultDomain(cfg.DefaultDomain)
	if h := m.strategy.Load(); !h.explicit {
		m.strategy.Store(&strategyHolder{s: ErrorStrategyFor(cfg.ErrorPolicy, m.log)})
	}
	return nil
}

// SetErrorStrategy replaces the registration-error strategy. Nil reverts
// to the strategy selected by the configured policy.
func (m *Manager) SetErrorStrategy(s apis.ErrorStrategy) {
	if s == nil {
		m.strategy.Store(&strategyHolder{s: ErrorStrategyFor(m.Config().ErrorPolicy, m.log)})
		return
	}
	m.strategy.Store(&strategyHolder{s: s, explicit: true})
}

// Facility returns the facility objects are published to.
func (m *Manager) Facility() apis.Facility { return m.fac }

// Compiler returns the class compiler.
func (m *Manager) Compiler() *compiler.Compiler { return m.comp }

// AddExecutionContext adds ctx as the innermost execution context.
func (m *Manager) AddExecutionContext(ctx apis.ExecutionContext) { m.ctxs.Add(ctx) }

// RemoveExecutionContext removes ctx and reports whether it was present.
func (m *Manager) RemoveExecutionContext(ctx apis.ExecutionContext) bool {
	return m.ctxs.Remove(ctx)
}

// IsManaged reports whether obj's type is declared as a management object.
func (m *Manager) IsManaged(obj any) bool {
	return obj != nil && m.comp.IsManaged(reflect.TypeOf(obj))
}

// IsRegistered reports whether obj is in the live registry.
func (m *Manager) IsRegistered(obj any) bool {
	return m.State(obj) != Unregistered
}

// State returns the registration state of obj.
func (m *Manager) State(obj any) State {
	if !hashable(obj) {
		return Unregistered
	}
	e, ok := m.live.lookup(obj)
	if !ok {
		return Unregistered
	}
	return e.State()
}

// Facade returns the published facade of a registered obj.
func (m *Manager) Facade(obj any) (*Facade, bool) {
	if !hashable(obj) {
		return nil, false
	}
	e, ok := m.live.lookup(obj)
	if !ok || e.State() != Registered {
		return nil, false
	}
	return e.facade, true
}

// Len returns the number of live entries.
func (m *Manager) Len() int { return m.live.len() }

// Register publishes obj and every non-nil object it references.
// Failures go through the error strategy; Register returns what the
// strategy returns.
func (m *Manager) Register(obj any) error {
	err := m.register(obj, nil)
	var h *handledError
	if errors.As(err, &h) {
		return h.err
	}
	return err
}

// RegisterAll registers the managed elements of objs and skips the rest.
func (m *Manager) RegisterAll(objs ...any) error {
	var errs error
	for _, obj := range objs {
		if m.IsManaged(obj) {
			errs = multierr.Append(errs, m.Register(obj))
		}
	}
	return errs
}

func (m *Manager) register(obj any, owner *objname.Name) error {
	err := m.registerObject(obj, owner)
	if err == nil {
		return nil
	}
	var h *handledError
	if errors.As(err, &h) {
		return err
	}
	if herr := m.strategy.Load().s.HandleRegisterError(obj, err); herr != nil {
		return &handledError{err: herr}
	}
	return nil
}

func (m *Manager) registerObject(obj any, owner *objname.Name) error {
	if obj == nil {
		return ErrNilObject
	}
	if !hashable(obj) {
		return fmt.Errorf("%w: %T", ErrUncomparable, obj)
	}
	if _, ok := m.live.lookup(obj); ok {
		return fmt.Errorf("%w: %T", apis.ErrAlreadyRegistered, obj)
	}
	cls, err := m.comp.Class(reflect.TypeOf(obj))
	if err != nil {
		return err
	}

	e := &entry{obj: obj}
	e.state.Store(int32(Registering))
	if !m.live.insert(obj, e) {
		return fmt.Errorf("%w: %T", apis.ErrAlreadyRegistered, obj)
	}
	published := false
	defer func() {
		if !published {
			m.live.remove(obj, e)
		}
	}()

	name, err := m.identity(cls, obj, owner)
	if err != nil {
		return err
	}
	f, err := newFacade(m, cls, obj)
	if err != nil {
		return err
	}
	refs, err := resolveReferences(cls, obj)
	if err != nil {
		return err
	}
	if name, err = m.publish(cls, name, f); err != nil {
		return err
	}
	e.name, e.facade, e.refs = name, f, refs
	e.state.Store(int32(Registered))
	published = true

	for _, r := range refs {
		var parent *objname.Name
		if r.concat {
			parent = &name
		}
		if err := m.register(r.obj, parent); err != nil {
			return err
		}
	}
	return nil
}

// identity computes the identity of obj. With an owner, obj's properties
// are appended to the owner's identity and obj's own domain is dropped.
func (m *Manager) identity(cls *compiler.Class, obj any, owner *objname.Name) (objname.Name, error) {
	if owner == nil {
		return cls.Identity(obj, m.comp.DefaultDomain())
	}
	props, err := cls.Name.Properties(obj)
	if err != nil {
		return objname.Name{}, err
	}
	return owner.Append(props)
}

func resolveReferences(cls *compiler.Class, obj any) ([]reference, error) {
	var refs []reference
	for _, r := range cls.References {
		v, ok, err := r.Resolve(obj)
		if err != nil {
			return nil, err
		}
		if ok {
			refs = append(refs, reference{obj: v, concat: r.Concat})
		}
	}
	return refs, nil
}

// publish hands f to the facility. Unique classes probe " @1", " @2", ...
// until a free identity is found or MaxUniqueSuffix is exceeded.
func (m *Manager) publish(cls *compiler.Class, name objname.Name, f *Facade) (objname.Name, error) {
	if !cls.Unique {
		f.name = name
		return name, m.fac.Publish(name, f)
	}
	limit := m.Config().MaxUniqueSuffix
	candidate := name
	for n := 1; ; n++ {
		if !m.fac.IsPublished(candidate) {
			f.name = candidate
			err := m.fac.Publish(candidate, f)
			if err == nil {
				return candidate, nil
			}
			if !errors.Is(err, apis.ErrAlreadyPublished) {
				return objname.Name{}, err
			}
		}
		if n > limit {
			return objname.Name{}, fmt.Errorf("%w: %s", apis.ErrUniqueNameExhausted, name)
		}
		var err error
		if candidate, err = name.WithSuffix(fmt.Sprintf(" @%d", n)); err != nil {
			return objname.Name{}, err
		}
	}
}

// Unregister depublishes obj and the references resolved when it was
// registered. Unknown objects are ignored. A facility that no longer
// knows the identity is not an error.
func (m *Manager) Unregister(obj any) error {
	if obj == nil || !hashable(obj) {
		return nil
	}
	e, ok := m.live.lookup(obj)
	if !ok || !e.state.CompareAndSwap(int32(Registered), int32(Unregistering)) {
		return nil
	}
	err := m.fac.Depublish(e.name)
	m.live.remove(obj, e)
	e.state.Store(int32(Unregistered))
	if err != nil && !errors.Is(err, apis.ErrNotPublished) {
		return fmt.Errorf("mgmt(manager): depublish %s: %w", e.name, err)
	}
	var errs error
	for _, r := range e.refs {
		errs = multierr.Append(errs, m.Unregister(r.obj))
	}
	return errs
}

// UnregisterAll unregisters the managed elements of objs and skips the rest.
func (m *Manager) UnregisterAll(objs ...any) error {
	var errs error
	for _, obj := range objs {
		if m.IsManaged(obj) {
			errs = multierr.Append(errs, m.Unregister(obj))
		}
	}
	return errs
}

// UnregisterEverything unregisters every registered object.
func (m *Manager) UnregisterEverything() error {
	var errs error
	for _, obj := range m.live.objects() {
		errs = multierr.Append(errs, m.Unregister(obj))
	}
	return errs
}

func hashable(obj any) bool {
	return obj != nil && reflect.ValueOf(obj).Comparable()
}
