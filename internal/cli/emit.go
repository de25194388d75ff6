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
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/chazu/bindgraph/pkg/graph"
	"github.com/chazu/bindgraph/pkg/manifest"
	"github.com/chazu/bindgraph/pkg/typesig"
)

// classEmitter renders each class with its normalized signatures. Classes of
// a wave are rendered concurrently, so output is buffered per class and
// written in emission order afterwards.
type classEmitter struct {
	manifest *manifest.Manifest
	cache    *typesig.Cache

	mu       sync.Mutex
	rendered map[string]string
}

func newClassEmitter(m *manifest.Manifest, cache *typesig.Cache) *classEmitter {
	return &classEmitter{
		manifest: m,
		cache:    cache,
		rendered: make(map[string]string),
	}
}

func (e *classEmitter) Emit(ctx context.Context, decl graph.Declaration) error {
	class, found := e.manifest.Class(decl.Name)
	if !found {
		return fmt.Errorf("class %s not in manifest", decl.Name)
	}

	bases := make([]string, 0, len(class.Bases))
	for _, base := range class.Bases {
		info, err := e.cache.Parse(base)
		if err != nil {
			return err
		}
		bases = append(bases, canonical(info))
	}

	var b strings.Builder
	b.WriteString("class ")
	b.WriteString(class.Name)
	if len(bases) > 0 {
		b.WriteString(" : ")
		b.WriteString(strings.Join(bases, ", "))
	}
	b.WriteByte('\n')

	for _, sig := range class.Signatures {
		info, err := e.cache.Parse(sig)
		if err != nil {
			return err
		}
		b.WriteString("  ")
		b.WriteString(canonical(info))
		b.WriteByte('\n')
	}

	e.mu.Lock()
	e.rendered[decl.Name] = b.String()
	e.mu.Unlock()

	logr.FromContextOrDiscard(ctx).V(2).Info("Emitted class", "class", decl.Name)
	return nil
}

func (e *classEmitter) output(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out, ok := e.rendered[name]
	return out, ok
}

func newEmitCommand(cfg *Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "emit -f FILE",
		Short: "Emit every class of a manifest in dependency order",
		Long: `Emit every class of a manifest with its normalized signatures. Classes
are emitted in dependency waves; the classes of a wave are emitted in
parallel. A class whose dependency failed is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logr.FromContextOrDiscard(ctx)

			m, ordering, cache, err := loadOrdering(ctx, cfg, file)
			if err != nil {
				return err
			}

			emitter := newClassEmitter(m, cache)
			executor := graph.NewExecutor(emitter, graph.ExecutorConfig{MaxConcurrency: cfg.MaxConcurrency})

			state, err := executor.Execute(ctx, ordering)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range ordering.Names() {
				if rendered, ok := emitter.output(name); ok {
					fmt.Fprint(out, rendered)
				}
			}

			summary := state.GetSummary()
			logger.Info("Emission complete", "done", summary.Done, "failed", summary.Error, "blocked", summary.Blocked)

			if state.HasErrors() {
				failed := state.GetNamesInState(graph.EmitStateError)
				return fmt.Errorf("failed to emit %d classes (%s), %d blocked",
					len(failed), strings.Join(failed, ", "), summary.Blocked)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest file (CUE or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
