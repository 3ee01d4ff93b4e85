// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the blockvol CLI: mounting a device file as
// a block-addressed volume and reporting cache statistics.
package cmd

import (
	"fmt"
	"os"

	"github.com/blockvol/blockvol/cfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error

	// Config is the process-wide configuration, bound from flags and
	// an optional YAML config file.
	Config cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "blockvol",
	Short: "Mount a block device file as an indexed, cached volume",
	Long: `blockvol is a block-addressed file storage engine: a buffered
LRU block cache sitting in front of a raw device, and an indexed
inode layer mapping logical byte offsets onto physical sectors.`,
}

// Execute runs the CLI, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "path to a YAML config file")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(cacheStatsCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			configFileErr = fmt.Errorf("reading config file %q: %w", cfgFile, err)
			return
		}
	}

	if err := viper.Unmarshal(&Config); err != nil {
		unmarshalErr = fmt.Errorf("unmarshalling config: %w", err)
		return
	}

	cfg.Rationalize(&Config)
}

func checkInit() error {
	if bindErr != nil {
		return bindErr
	}
	if configFileErr != nil {
		return configFileErr
	}
	if unmarshalErr != nil {
		return unmarshalErr
	}
	return cfg.Validate(&Config)
}
