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

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/objname"
)

// EnvPrefix prefixes environment overrides, e.g. MGMT_DEFAULT_DOMAIN.
const EnvPrefix = "MGMT"

// Load reads a configuration file and environment overrides on top of
// DefaultConfig. With an empty path, mgmt.yaml is looked up in the working
// directory and its absence is not an error.
func Load(path string) (apis.Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("default_domain", def.DefaultDomain)
	v.SetDefault("max_unique_suffix", def.MaxUniqueSuffix)
	v.SetDefault("error_policy", def.ErrorPolicy.String())
	v.SetDefault("log_dispatch", def.LogDispatch)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mgmt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return apis.Config{}, fmt.Errorf("mgmt(config): read config: %w", err)
		}
	}

	var cfg apis.Config
	hook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return apis.Config{}, fmt.Errorf("mgmt(config): decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return apis.Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg for values a manager cannot work with.
func Validate(cfg apis.Config) error {
	if cfg.MaxUniqueSuffix <= 0 {
		return fmt.Errorf("mgmt(config): max_unique_suffix must be positive, got %d", cfg.MaxUniqueSuffix)
	}
	if _, err := cfg.ErrorPolicy.MarshalText(); err != nil {
		return fmt.Errorf("mgmt(config): %w", err)
	}
	if cfg.DefaultDomain != "" {
		if _, err := objname.New(cfg.DefaultDomain, objname.Property{Key: "k", Value: "v"}); err != nil {
			return fmt.Errorf("mgmt(config): invalid default_domain: %w", err)
		}
	}
	return nil
}
