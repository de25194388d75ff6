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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/bindgraph/pkg/typesig"
)

// bustedMarker is printed in place of signatures the parser gave up on
const bustedMarker = "<busted>"

type parsedSignature struct {
	Signature string       `json:"signature"`
	Canonical string       `json:"canonical"`
	Info      typesig.Info `json:"info"`
}

func newParseCommand(cfg *Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse SIGNATURE...",
		Short: "Parse C++ type signatures",
		Long: `Parse C++ type signatures and print their canonical form, one per line.

Function pointer signatures are not supported and print as <busted>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := typesig.NewCache(cfg.CacheSize)
			if err != nil {
				return err
			}

			infos, err := cache.ParseAll(cmd.Context(), args, cfg.MaxConcurrency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				results := make([]parsedSignature, len(args))
				for i, info := range infos {
					results[i] = parsedSignature{Signature: args[i], Canonical: canonical(info), Info: info}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			for _, info := range infos {
				if _, err := fmt.Fprintln(out, canonical(info)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed structure as JSON")
	return cmd
}

func canonical(info typesig.Info) string {
	if info.IsBusted {
		return bustedMarker
	}
	return info.String()
}
