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

package objname

import (
	"fmt"
	"strings"
)

// specials are the characters that force a property value to be quoted.
const specials = ",:=\n\""

// NeedsQuoting reports whether v must be quoted to be a valid value.
func NeedsQuoting(v string) bool {
	return !IsQuoted(v) && strings.ContainsAny(v, specials)
}

// QuoteIfNeeded quotes v only when NeedsQuoting reports true.
func QuoteIfNeeded(v string) string {
	if NeedsQuoting(v) {
		return Quote(v)
	}
	return v
}

// IsQuoted reports whether v is enclosed in double quotes.
func IsQuoted(v string) bool {
	return len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"'
}

// Quote wraps v in double quotes, escaping backslash, quote, the
// separators ',', ':' and '=', and the pattern characters '*' and '?'.
// A newline is written as \n.
func Quote(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('"')
	for i := 0; i < len(v); i++ {
		switch c := v[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\\', '"', ',', ':', '=', '*', '?':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote reverses Quote. Unquoted input is returned unchanged.
func Unquote(v string) (string, error) {
	if !IsQuoted(v) {
		return v, nil
	}
	in := v[1 : len(v)-1]
	var b strings.Builder
	b.Grow(len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		switch c {
		case '"':
			return "", fmt.Errorf("%w: unescaped quote in %q", ErrMalformed, v)
		case '\\':
			i++
			if i == len(in) {
				return "", fmt.Errorf("%w: dangling escape in %q", ErrMalformed, v)
			}
			switch e := in[i]; e {
			case 'n':
				b.WriteByte('\n')
			case '\\', '"', ',', ':', '=', '*', '?':
				b.WriteByte(e)
			default:
				return "", fmt.Errorf("%w: invalid escape \\%c in %q", ErrMalformed, e, v)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
