package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/search"
)

// #region outcome

// scoreTolerance bounds the floating drift allowed when comparing a
// replayed best score against the recorded one.
const scoreTolerance = 1e-9

// Outcome is the result of replaying one fixture.
type Outcome struct {
	Result     search.Result
	Passed     bool
	Mismatches []string
}

// #endregion outcome

// #region run

// Run rebuilds the model from the fixture's corpus lines, re-runs the
// search with the recorded configuration, and compares the outcome
// against the fixture's expectations. Operates entirely in-memory.
func Run(ctx context.Context, f Fixture) (Outcome, error) {
	model := corpus.Build(f.CorpusLines)
	if err := corpus.Validate(&model); err != nil {
		return Outcome{}, fmt.Errorf("replay model: %w", err)
	}

	searcher := search.NewSearcher(&model, f.Ciphertext)
	best, _, err := searcher.RunChains(ctx, f.Config.ChainConfig())
	if err != nil {
		return Outcome{}, fmt.Errorf("replay search: %w", err)
	}

	return compare(best, f.Expected), nil
}

// Compare checks a result against an expectation without re-running.
func Compare(res search.Result, want Expected) Outcome {
	return compare(res, want)
}

func compare(res search.Result, want Expected) Outcome {
	out := Outcome{Result: res}

	if want.BestLegend != "" && res.BestLegend.String() != want.BestLegend {
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("best legend: got %s, want %s", res.BestLegend, want.BestLegend))
	}
	if want.Decoded != "" && res.Decoded != want.Decoded {
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("decoded: got %q, want %q", res.Decoded, want.Decoded))
	}
	if math.Abs(res.BestScore-want.BestScore) > scoreTolerance {
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("best score: got %v, want %v", res.BestScore, want.BestScore))
	}
	for i := 1; i < len(res.Trace); i++ {
		if res.Trace[i].BestScore < res.Trace[i-1].BestScore {
			out.Mismatches = append(out.Mismatches,
				fmt.Sprintf("trace not monotonic at entry %d", i))
			break
		}
	}

	out.Passed = len(out.Mismatches) == 0
	return out
}

// #endregion run
