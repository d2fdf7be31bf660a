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
	"strings"

	"github.com/spf13/cobra"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/objname"
)

func newListCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [domain] [key=value...]",
		Short: "List published identities",
		Long:  "List published identities, optionally restricted to a domain and to matching properties.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				domain string
				match  []objname.Property
			)
			for i, a := range args {
				k, v, ok := strings.Cut(a, "=")
				if !ok {
					if i > 0 {
						return fmt.Errorf("expected key=value, got %q", a)
					}
					domain = a
					continue
				}
				match = append(match, objname.Property{Key: k, Value: v})
			}
			return o.run(cmd, func(e *env) error {
				for _, n := range e.fac.Query(domain, match...) {
					fmt.Fprintln(cmd.OutOrStdout(), n.String())
				}
				return nil
			})
		},
	}
}

func newDumpCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [identity...]",
		Short: "Print schemas and attribute values as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := parseNames(args)
			if err != nil {
				return err
			}
			return o.run(cmd, func(e *env) error {
				if len(names) == 0 {
					names = e.fac.Names()
				}
				dumps := make([]objectDump, 0, len(names))
				for _, n := range names {
					d, err := dumpObject(e, n)
					if err != nil {
						return err
					}
					dumps = append(dumps, d)
				}
				return writeYAML(cmd.OutOrStdout(), dumps)
			})
		},
	}
}

func newGetCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get identity attribute...",
		Short: "Read attributes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := objname.Parse(args[0])
			if err != nil {
				return err
			}
			return o.run(cmd, func(e *env) error {
				out := make(map[string]any, len(args)-1)
				for _, attr := range args[1:] {
					v, err := e.fac.GetAttribute(name, attr)
					if err != nil {
						return err
					}
					out[attr] = plain(v)
				}
				return writeYAML(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newSetCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set identity attribute value",
		Short: "Write an attribute and print the value read back",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := objname.Parse(args[0])
			if err != nil {
				return err
			}
			attr := args[1]
			return o.run(cmd, func(e *env) error {
				s, err := e.fac.Schema(name)
				if err != nil {
					return err
				}
				info, ok := findAttribute(s, attr)
				if !ok {
					return fmt.Errorf("%w: %s", apis.ErrAttributeNotFound, attr)
				}
				v, err := parseValue(info.Type, args[2])
				if err != nil {
					return fmt.Errorf("attribute %s: %w", attr, err)
				}
				if err := e.fac.SetAttribute(name, attr, v); err != nil {
					return err
				}
				got, err := e.fac.GetAttribute(name, attr)
				if err != nil {
					return err
				}
				return writeYAML(cmd.OutOrStdout(), map[string]any{attr: plain(got)})
			})
		},
	}
}

func newInvokeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke identity operation [arg...]",
		Short: "Invoke an operation and print its result",
		Long:  "Invoke an operation. The operation is chosen by name and number of arguments.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := objname.Parse(args[0])
			if err != nil {
				return err
			}
			op, raw := args[1], args[2:]
			return o.run(cmd, func(e *env) error {
				s, err := e.fac.Schema(name)
				if err != nil {
					return err
				}
				info, ok := findOperation(s, op, len(raw))
				if !ok {
					return fmt.Errorf("%w: %s with %d arguments", apis.ErrOperationNotFound, op, len(raw))
				}
				params := make([]any, len(raw))
				for i, r := range raw {
					if params[i], err = parseValue(info.Params[i].Type, r); err != nil {
						return fmt.Errorf("parameter %s: %w", info.Params[i].Name, err)
					}
				}
				res, err := e.fac.Invoke(name, op, params, info.ParamTypes())
				if err != nil {
					return err
				}
				return writeYAML(cmd.OutOrStdout(), map[string]any{"result": plain(res)})
			})
		},
	}
}

func parseNames(args []string) ([]objname.Name, error) {
	names := make([]objname.Name, 0, len(args))
	for _, a := range args {
		n, err := objname.Parse(a)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

func findAttribute(s apis.Schema, name string) (apis.AttributeInfo, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return apis.AttributeInfo{}, false
}

func findOperation(s apis.Schema, name string, arity int) (apis.OperationInfo, bool) {
	for _, o := range s.Operations {
		if o.Name == name && len(o.Params) == arity {
			return o, true
		}
	}
	return apis.OperationInfo{}, false
}
