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

package manager

import (
	"fmt"

	"go.uber.org/zap"

	"dirpx.dev/mgmt/apis"
)

// ErrorStrategyFunc adapts a function to apis.ErrorStrategy.
type ErrorStrategyFunc func(obj any, err error) error

// HandleRegisterError calls f(obj, err).
func (f ErrorStrategyFunc) HandleRegisterError(obj any, err error) error { return f(obj, err) }

// LogErrors logs failed registrations at error level and swallows them.
// A nil logger means zap.L().
func LogErrors(l *zap.Logger) apis.ErrorStrategy {
	if l == nil {
		l = zap.L()
	}
	return ErrorStrategyFunc(func(obj any, err error) error {
		l.Error("could not register management object",
			zap.String("object", fmt.Sprintf("%T", obj)),
			zap.Error(err))
		return nil
	})
}

// RaiseErrors returns failed registrations to the caller.
func RaiseErrors() apis.ErrorStrategy {
	return ErrorStrategyFunc(func(_ any, err error) error { return err })
}

// IgnoreErrors drops failed registrations silently.
func IgnoreErrors() apis.ErrorStrategy {
	return ErrorStrategyFunc(func(any, error) error { return nil })
}

// ErrorStrategyFor returns the built-in strategy selected by p.
// Unknown policies fall back to logging.
func ErrorStrategyFor(p apis.ErrorPolicy, l *zap.Logger) apis.ErrorStrategy {
	switch p {
	case apis.Raise:
		return RaiseErrors()
	case apis.Ignore:
		return IgnoreErrors()
	default:
		return LogErrors(l)
	}
}

// handledError marks a failure that already went through the error
// strategy, so outer registrations pass it on unchanged.
type handledError struct {
	err error
}

func (e *handledError) Error() string { return e.err.Error() }
func (e *handledError) Unwrap() error { return e.err }
