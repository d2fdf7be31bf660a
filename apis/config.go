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

// Config carries read-only knobs of a manager.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// DefaultDomain is used for relative identities of objects registered
	// without an owner. Empty means such registrations fail.
	DefaultDomain string `mapstructure:"default_domain" yaml:"default_domain"`

	// MaxUniqueSuffix bounds the " @N" probing done for objects whose
	// identity must be made unique.
	MaxUniqueSuffix int `mapstructure:"max_unique_suffix" yaml:"max_unique_suffix"`

	// ErrorPolicy selects the built-in registration-error strategy.
	ErrorPolicy ErrorPolicy `mapstructure:"error_policy" yaml:"error_policy"`

	// LogDispatch enables info logs for attribute writes and invocations.
	LogDispatch bool `mapstructure:"log_dispatch" yaml:"log_dispatch"`
}
