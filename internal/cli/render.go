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

package cli

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"dirpx.dev/mgmt/objname"
	"dirpx.dev/mgmt/opentype"
)

type objectDump struct {
	Identity    string          `yaml:"identity"`
	Class       string          `yaml:"class"`
	Description string          `yaml:"description"`
	Attributes  []attributeDump `yaml:"attributes,omitempty"`
	Operations  []operationDump `yaml:"operations,omitempty"`
}

type attributeDump struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Writable    bool   `yaml:"writable,omitempty"`
	Value       any    `yaml:"value"`
	Error       string `yaml:"error,omitempty"`
}

type operationDump struct {
	Signature   string `yaml:"signature"`
	Description string `yaml:"description,omitempty"`
	Impact      string `yaml:"impact"`
	Returns     string `yaml:"returns"`
}

func dumpObject(e *env, n objname.Name) (objectDump, error) {
	s, err := e.fac.Schema(n)
	if err != nil {
		return objectDump{}, err
	}
	d := objectDump{Identity: n.String(), Class: s.ClassName, Description: s.Description}
	for _, a := range s.Attributes {
		ad := attributeDump{
			Name:        a.Name,
			Type:        a.Type.TypeName(),
			Writable:    a.Writable,
			Description: a.Description,
		}
		if a.Description == a.Name {
			ad.Description = ""
		}
		if v, err := e.fac.GetAttribute(n, a.Name); err != nil {
			ad.Error = err.Error()
		} else {
			ad.Value = plain(v)
		}
		d.Attributes = append(d.Attributes, ad)
	}
	for _, o := range s.Operations {
		d.Operations = append(d.Operations, operationDump{
			Signature:   o.Signature(),
			Description: o.Description,
			Impact:      o.Impact.String(),
			Returns:     o.Return.TypeName(),
		})
	}
	return d, nil
}

// plain turns transport values into values YAML can encode.
func plain(v any) any {
	switch x := v.(type) {
	case *opentype.CompositeData:
		m := make(map[string]any)
		for k, item := range x.Map() {
			m[k] = plain(item)
		}
		return m
	case *opentype.TabularData:
		rows := make([]any, 0, x.Len())
		for _, r := range x.Rows() {
			rows = append(rows, plain(r))
		}
		return rows
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case objname.Name:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case *big.Int:
		return x.String()
	case *big.Float:
		return x.Text('g', -1)
	}
	return v
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// parseValue converts command-line text into a transport value of t.
func parseValue(t opentype.Type, s string) (any, error) {
	st, ok := t.(opentype.SimpleType)
	if !ok {
		return nil, fmt.Errorf("cannot parse %s values", t.TypeName())
	}
	switch st {
	case opentype.String:
		return s, nil
	case opentype.Bool:
		return strconv.ParseBool(s)
	case opentype.Int, opentype.Int8, opentype.Int16, opentype.Int32, opentype.Int64:
		return strconv.ParseInt(s, 10, 64)
	case opentype.Uint, opentype.Uint8, opentype.Uint16, opentype.Uint32, opentype.Uint64, opentype.Uintptr:
		return strconv.ParseUint(s, 10, 64)
	case opentype.Float32, opentype.Float64:
		return strconv.ParseFloat(s, 64)
	case opentype.BigInt:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return n, nil
	case opentype.BigFloat:
		f, _, err := big.ParseFloat(s, 10, 0, big.ToNearestEven)
		return f, err
	case opentype.Date:
		return time.Parse(time.RFC3339, s)
	case opentype.Identity:
		return objname.Parse(s)
	}
	return nil, fmt.Errorf("cannot parse %s values", st)
}
