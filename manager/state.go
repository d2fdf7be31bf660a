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

import "fmt"

// State is the registration state of a source object.
type State int32

const (
	// Unregistered objects are not in the live registry.
	Unregistered State = iota
	// Registering objects are reserved while their facade is published.
	Registering
	// Registered objects are published.
	Registered
	// Unregistering objects are being depublished.
	Unregistering
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registering:
		return "registering"
	case Registered:
		return "registered"
	case Unregistering:
		return "unregistering"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}
