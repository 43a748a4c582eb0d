// Package search breaks a substitution cipher by Metropolis-Hastings
// sampling over the space of 26-letter legends. Each proposal swaps two
// plaintext images in the current legend and is accepted or rejected by
// comparing a uniform draw against the log-likelihood difference of the
// two decodings.
package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/alphabet"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/cipher"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/score"
)

// #region searcher

// Searcher holds the immutable inputs of a search: the transition model
// and the ciphertext. Safe to share across concurrent chains, since
// neither is mutated.
type Searcher struct {
	matrix     *corpus.TransitionMatrix
	ciphertext string
}

// NewSearcher creates a searcher over the given model and ciphertext.
func NewSearcher(matrix *corpus.TransitionMatrix, ciphertext string) *Searcher {
	return &Searcher{matrix: matrix, ciphertext: ciphertext}
}

// Ciphertext returns the ciphertext under search.
func (s *Searcher) Ciphertext() string { return s.ciphertext }

// #endregion searcher

// #region run

// Run executes one chain until the accepted-move budget is spent, the
// stall cap (if any) is hit, or ctx is cancelled. On cancellation the
// best result so far is returned with Interrupted set; cancellation is
// not an error.
func (s *Searcher) Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.AcceptTarget < 1 {
		return Result{}, fmt.Errorf("search: accept target must be >= 1, got %d", cfg.AcceptTarget)
	}
	rule := cfg.Rule
	if rule == "" {
		rule = RuleLogDiff
	}
	if !rule.Valid() {
		return Result{}, fmt.Errorf("search: unknown acceptance rule %q", rule)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	current := cipher.NewRandom(rng)
	currentScore := score.LogLikelihood(current.Decode(s.ciphertext), s.matrix)

	best := current
	bestScore := currentScore

	res := Result{
		Trace: []TracePoint{{Accepted: 0, BestScore: bestScore}},
	}

	stallRun := 0
	for res.AcceptedMoves < cfg.AcceptTarget {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}

		i, j := drawPair(rng)
		candidate := current.Swap(i, j)
		candidateScore := score.LogLikelihood(candidate.Decode(s.ciphertext), s.matrix)

		u := rng.Float64()
		delta := candidateScore - currentScore
		res.Proposals++

		var accept bool
		switch rule {
		case RuleLogDiff:
			accept = u < delta
		case RuleMetropolis:
			accept = u < math.Exp(delta)
		}

		if !accept {
			stallRun++
			if cfg.MaxStallRun > 0 && stallRun >= cfg.MaxStallRun {
				res.Stalled = true
				break
			}
			continue
		}

		current = candidate
		currentScore = candidateScore
		res.AcceptedMoves++
		precedingStalls := stallRun
		stallRun = 0

		if currentScore > bestScore {
			best = current
			bestScore = currentScore
			res.Trace = append(res.Trace, TracePoint{
				Accepted:  res.AcceptedMoves,
				BestScore: bestScore,
			})
		}

		if cfg.Progress != nil {
			cfg.Progress(res.AcceptedMoves, precedingStalls, best.Decode(s.ciphertext))
		}
	}

	res.BestLegend = best
	res.BestScore = bestScore
	res.Decoded = best.Decode(s.ciphertext)
	return res, nil
}

// #endregion run

// #region draw-pair

// drawPair returns two distinct letter positions, uniform without
// replacement over the 26.
func drawPair(rng *rand.Rand) (int, int) {
	i := rng.Intn(alphabet.Letters)
	j := rng.Intn(alphabet.Letters - 1)
	if j >= i {
		j++
	}
	return i, j
}

// #endregion draw-pair
