package search

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// #region run-chains

// RunChains runs cfg.Chains independent chains concurrently and returns
// the globally best result plus every chain's final result. Chains are
// embarrassingly parallel: each has a deterministically derived seed and
// a private RNG, so a multi-chain run is replayable. A chain that stalls
// is restarted with a fresh derived seed while its restart budget lasts;
// the best result across all attempts is kept.
func (s *Searcher) RunChains(ctx context.Context, cfg ChainConfig) (Result, []Result, error) {
	if cfg.Chains < 1 {
		return Result{}, nil, fmt.Errorf("search: chains must be >= 1, got %d", cfg.Chains)
	}

	results := make([]Result, cfg.Chains)
	g, gctx := errgroup.WithContext(ctx)

	for k := 0; k < cfg.Chains; k++ {
		k := k
		g.Go(func() error {
			chainCfg := cfg.Base
			chainCfg.Seed = cfg.Base.Seed + int64(k)

			best, err := s.Run(gctx, chainCfg)
			if err != nil {
				return fmt.Errorf("chain %d: %w", k, err)
			}

			for r := 1; best.Stalled && r <= cfg.Restarts; r++ {
				log.Printf("[SEARCH] chain %d stalled after %d accepted moves, restart %d",
					k, best.AcceptedMoves, r)
				chainCfg.Seed = cfg.Base.Seed + int64(k) + int64(r)*1000
				retry, err := s.Run(gctx, chainCfg)
				if err != nil {
					return fmt.Errorf("chain %d restart %d: %w", k, r, err)
				}
				if retry.BestScore > best.BestScore {
					best = retry
				}
				if !retry.Stalled {
					best.Stalled = false
					break
				}
			}

			results[k] = best
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, nil, err
	}

	bestIdx := 0
	for k := 1; k < len(results); k++ {
		if results[k].BestScore > results[bestIdx].BestScore {
			bestIdx = k
		}
	}
	return results[bestIdx], results, nil
}

// #endregion run-chains
