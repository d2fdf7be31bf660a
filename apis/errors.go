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

import "errors"

// Dispatch faults returned by facades and facilities.
var (
	// ErrAttributeNotFound is returned when no attribute has the requested name.
	ErrAttributeNotFound = errors.New("mgmt: no such attribute")
	// ErrAttributeNotWritable is returned when setting a read-only attribute.
	ErrAttributeNotWritable = errors.New("mgmt: attribute is not writable")
	// ErrOperationNotFound is returned when no operation matches a signature.
	ErrOperationNotFound = errors.New("mgmt: no such operation")
	// ErrUnsupported is returned when a value cannot be converted in the
	// requested direction, or a node does not support writes.
	ErrUnsupported = errors.New("mgmt: not supported")
)

// Facility faults.
var (
	// ErrAlreadyPublished is returned when an identity is taken.
	ErrAlreadyPublished = errors.New("mgmt(facility): identity already published")
	// ErrNotPublished is returned when nothing is published under an identity.
	ErrNotPublished = errors.New("mgmt(facility): identity not published")
)

// Registration faults.
var (
	// ErrAlreadyRegistered is returned when an object is registered twice.
	ErrAlreadyRegistered = errors.New("mgmt(manager): object already registered")
	// ErrUniqueNameExhausted is returned when no free " @N" suffix was found.
	ErrUniqueNameExhausted = errors.New("mgmt(manager): no unique identity available")
	// ErrNotManaged is returned when an object's type is not declared as a
	// management object.
	ErrNotManaged = errors.New("mgmt(manager): type is not a management object")
)
