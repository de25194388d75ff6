/*
Copyright 2025.

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
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newOrderCommand(cfg *Config) *cobra.Command {
	var (
		file  string
		waves bool
	)

	cmd := &cobra.Command{
		Use:   "order -f FILE",
		Short: "Print the classes of a manifest in dependency order",
		Long: `Print the classes of a manifest so that every class comes after the
classes it depends on. A circular dependency is reported as an error naming
the classes involved.

With --waves, each line holds a group of classes that only depend on
classes of earlier lines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ordering, _, err := loadOrdering(cmd.Context(), cfg, file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if waves {
				for _, wave := range ordering.Waves() {
					fmt.Fprintln(out, strings.Join(wave, " "))
				}
				return nil
			}
			for _, name := range ordering.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest file (CUE or JSON)")
	cmd.Flags().BoolVar(&waves, "waves", false, "Group classes into parallel waves")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDotCommand(cfg *Config) *cobra.Command {
	var file, output string

	cmd := &cobra.Command{
		Use:   "dot -f FILE [-o OUT]",
		Short: "Write the class dependency graph in Graphviz DOT format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ordering, _, err := loadOrdering(cmd.Context(), cfg, file)
			if err != nil {
				return err
			}

			if output == "" {
				return ordering.Graph().WriteDOT(cmd.OutOrStdout(), ordering.Label)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := ordering.Graph().WriteDOT(f, ordering.Label); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest file (CUE or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
