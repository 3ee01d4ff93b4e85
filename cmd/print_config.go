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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// printConfigCmd dumps the effective configuration, after flags, config
// file, and Rationalize defaults have all been applied, as YAML — so a
// mount invocation can be reproduced from a single blockvol.yaml file.
var printConfigCmd = &cobra.Command{
	Use:   "print-config",
	Short: "Print the effective configuration as YAML",
	RunE:  runPrintConfig,
}

func runPrintConfig(cmd *cobra.Command, args []string) error {
	if err := checkInit(); err != nil {
		return err
	}

	out, err := yaml.Marshal(&Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	fmt.Print(string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(printConfigCmd)
}
