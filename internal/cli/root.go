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

// Package cli implements the mgmt-demo commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dirpx.dev/mgmt/config"
	"dirpx.dev/mgmt/facility"
	"dirpx.dev/mgmt/internal/example"
	"dirpx.dev/mgmt/manager"
)

type options struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "mgmt-demo",
		Short: "Explore the example management objects",
		Long: `mgmt-demo registers a small example domain of people and their children
as management objects and lets you list them, dump their schemas as YAML,
read and write attributes and invoke operations.

Configuration is read from --config, or ./mgmt.yaml when present, and
MGMT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "configuration file")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "log lifecycle and dispatch events to stderr")

	root.AddCommand(newListCommand(o))
	root.AddCommand(newDumpCommand(o))
	root.AddCommand(newGetCommand(o))
	root.AddCommand(newSetCommand(o))
	root.AddCommand(newInvokeCommand(o))
	return root
}

// env is the registered example domain of one command run.
type env struct {
	fac *facility.Server
	mgr *manager.Manager
	dir *example.Directory
}

func (o *options) open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	log := zap.NewNop()
	if o.verbose {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(cmd.ErrOrStderr()),
			zap.DebugLevel,
		)
		log = zap.New(core).Named("mgmt")
	}

	fac := facility.New(facility.WithLogger(log))
	mgr, err := manager.New(
		manager.WithConfig(cfg),
		manager.WithFacility(fac),
		manager.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	e := &env{fac: fac, mgr: mgr, dir: example.NewDirectory(mgr)}
	if err := example.Seed(e.dir); err != nil {
		_ = e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) close() error {
	return e.dir.Close()
}

// run opens the environment, calls fn and closes it again.
func (o *options) run(cmd *cobra.Command, fn func(*env) error) (err error) {
	e, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.close(); err == nil {
			err = cerr
		}
	}()
	return fn(e)
}
