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

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chazu/bindgraph/pkg/graph"
	"github.com/chazu/bindgraph/pkg/manifest"
	"github.com/chazu/bindgraph/pkg/metrics"
	"github.com/chazu/bindgraph/pkg/typesig"
)

// Config holds the settings shared by every subcommand. Flags can be
// overridden by BINDGRAPH_* environment variables.
type Config struct {
	MaxConcurrency int
	CacheSize      int
	Dev            bool
	Verbosity      int
	PrintMetrics   bool
}

const (
	keyMaxConcurrency = "max-concurrency"
	keyCacheSize      = "cache-size"
	keyDev            = "dev"
	keyVerbosity      = "v"
	keyPrintMetrics   = "print-metrics"
)

// NewRootCommand builds the bindgraph command tree
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BINDGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	var sync func() error

	root := &cobra.Command{
		Use:   "bindgraph",
		Short: "Order C++ class declarations for binding generation",
		Long: `bindgraph parses C++ type signatures and orders the classes of a manifest
so that every class is emitted after the classes it depends on.

Examples:
  bindgraph parse "const QList<QString>&"   # Canonical form of a signature
  bindgraph order -f classes.cue            # Classes in dependency order
  bindgraph dot -f classes.cue -o deps.dot  # Graphviz dependency graph
  bindgraph emit -f classes.cue             # Emit classes wave by wave`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, cmd, cfg); err != nil {
				return err
			}

			logger, flush := newLogger(cmd.ErrOrStderr(), cfg.Dev, cfg.Verbosity)
			sync = flush

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logr.NewContext(ctx, logger.WithName(cmd.Name())))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if sync != nil {
				_ = sync()
			}
			if cfg.PrintMetrics {
				return metrics.WriteText(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.Int(keyMaxConcurrency, typesig.DefaultMaxConcurrency, "Maximum number of parallel parses and emits")
	flags.Int(keyCacheSize, typesig.DefaultCacheSize, "Number of parsed signatures to cache")
	flags.Bool(keyDev, false, "Human-readable development logging")
	flags.Int(keyVerbosity, 0, "Log verbosity (0 = info, higher is more detail)")
	flags.Bool(keyPrintMetrics, false, "Print collected metrics to stderr on exit")

	root.AddCommand(
		newParseCommand(cfg),
		newOrderCommand(cfg),
		newDotCommand(cfg),
		newEmitCommand(cfg),
	)
	return root
}

// loadConfig binds the persistent flags to viper and reads the merged values
func loadConfig(v *viper.Viper, cmd *cobra.Command, cfg *Config) error {
	for _, key := range []string{keyMaxConcurrency, keyCacheSize, keyDev, keyVerbosity, keyPrintMetrics} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}

	cfg.MaxConcurrency = v.GetInt(keyMaxConcurrency)
	cfg.CacheSize = v.GetInt(keyCacheSize)
	cfg.Dev = v.GetBool(keyDev)
	cfg.Verbosity = v.GetInt(keyVerbosity)
	cfg.PrintMetrics = v.GetBool(keyPrintMetrics)

	if cfg.MaxConcurrency <= 0 {
		return fmt.Errorf("%s must be positive, got %d", keyMaxConcurrency, cfg.MaxConcurrency)
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", keyCacheSize, cfg.CacheSize)
	}
	return nil
}

// loadOrdering loads the manifest at path and orders its classes
func loadOrdering(ctx context.Context, cfg *Config, path string) (*manifest.Manifest, *graph.Ordering, *typesig.Cache, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}

	cache, err := typesig.NewCache(cfg.CacheSize)
	if err != nil {
		return nil, nil, nil, err
	}

	decls, err := m.Declarations(ctx, cache)
	if err != nil {
		return nil, nil, nil, err
	}

	ordering, err := graph.Order(ctx, decls)
	if err != nil {
		return nil, nil, nil, err
	}

	logr.FromContextOrDiscard(ctx).V(1).Info("Loaded manifest",
		"path", path, "digest", m.Digest(), "classes", ordering.Size())
	return m, ordering, cache, nil
}
