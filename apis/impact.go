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

// Impact classifies what invoking an operation does.
type Impact int

const (
	// Unknown is the default when nothing was declared.
	Unknown Impact = iota
	// Info operations only return information.
	Info
	// Action operations change state and return nothing useful.
	Action
	// ActionInfo operations change state and return information.
	ActionInfo
)

func (i Impact) String() string {
	switch i {
	case Unknown:
		return "unknown"
	case Info:
		return "info"
	case Action:
		return "action"
	case ActionInfo:
		return "action_info"
	default:
		return fmt.Sprintf("Unknown(%d)", int(i))
	}
}

// ParseImpact parses a case-insensitive impact token. "action-info" and
// "actioninfo" are accepted for ActionInfo.
func ParseImpact(s string) (Impact, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return Unknown, nil
	case "info":
		return Info, nil
	case "action":
		return Action, nil
	case "action_info", "action-info", "actioninfo":
		return ActionInfo, nil
	default:
		return Unknown, fmt.Errorf("mgmt(apis): unknown impact %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Impact) MarshalText() ([]byte, error) {
	switch i {
	case Unknown, Info, Action, ActionInfo:
		return []byte(i.String()), nil
	default:
		return nil, fmt.Errorf("mgmt(apis): cannot marshal unknown impact %d", int(i))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Impact) UnmarshalText(text []byte) error {
	v, err := ParseImpact(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
