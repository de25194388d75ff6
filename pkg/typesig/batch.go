package typesig

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/sourcegraph/conc/pool"
)

// DefaultMaxConcurrency bounds ParseAll when no limit is given
const DefaultMaxConcurrency = 8

// ParseAll parses every signature in parallel. Results are in input order.
// The first syntax error cancels the remaining work and is returned.
func ParseAll(ctx context.Context, sigs []string, maxConcurrency int) ([]Info, error) {
	return parseAll(ctx, parseRecorded, sigs, maxConcurrency)
}

// ParseAll is like the package-level ParseAll but goes through the cache
func (c *Cache) ParseAll(ctx context.Context, sigs []string, maxConcurrency int) ([]Info, error) {
	return parseAll(ctx, c.Parse, sigs, maxConcurrency)
}

func parseAll(ctx context.Context, parse func(string) (Info, error), sigs []string, maxConcurrency int) ([]Info, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	logger := logr.FromContextOrDiscard(ctx)

	results := make([]Info, len(sigs))
	p := pool.New().
		WithMaxGoroutines(maxConcurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, sig := range sigs {
		i, sig := i, sig
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := parse(sig)
			if err != nil {
				return fmt.Errorf("signature %d: %w", i, err)
			}
			results[i] = info
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	logger.V(2).Info("parsed signatures", "count", len(sigs))
	return results, nil
}
