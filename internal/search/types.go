package search

import "github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/cipher"

// #region acceptance-rule

// AcceptanceRule selects how a proposal's score difference is compared
// against the uniform draw. The two rules are distinct modes and are
// never merged: callers pick one explicitly.
type AcceptanceRule string

const (
	// RuleLogDiff accepts iff u < Δ, comparing the uniform draw directly
	// against the raw log-score difference. Only improving proposals can
	// clear a non-negative draw, so in practice this behaves as a noisy
	// hill climb. This is the default mode.
	RuleLogDiff AcceptanceRule = "logdiff"

	// RuleMetropolis is the canonical criterion: accept iff u < exp(Δ).
	RuleMetropolis AcceptanceRule = "metropolis"
)

// Valid reports whether r names a known rule.
func (r AcceptanceRule) Valid() bool {
	return r == RuleLogDiff || r == RuleMetropolis
}

// #endregion acceptance-rule

// #region config

// ProgressFunc observes the search once per accepted move. It receives
// the accepted-move count, the number of rejected proposals since the
// previous acceptance, and the current best decoding. The search never
// depends on the observer's presence or behavior. When chains share one
// callback it is invoked concurrently and must be safe for that.
type ProgressFunc func(accepted, stallRun int, bestDecoded string)

// Config parameterizes one search chain.
type Config struct {
	// Seed initializes the chain's private RNG. Runs with equal seeds
	// and inputs are identical; the search never reads ambient
	// randomness.
	Seed int64

	// AcceptTarget is the accepted-move budget. The chain runs until
	// this many proposals have been accepted; rejected proposals do not
	// count against it.
	AcceptTarget int

	// MaxStallRun caps consecutive rejected proposals. When the cap is
	// reached the chain stops with a stalled result instead of looping
	// indefinitely. 0 means unbounded.
	MaxStallRun int

	// Rule selects the acceptance comparison. Empty means RuleLogDiff.
	Rule AcceptanceRule

	// Progress, if non-nil, is called once per accepted move.
	Progress ProgressFunc
}

// DefaultConfig returns the standard single-chain configuration.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		AcceptTarget: 2000,
		MaxStallRun:  0,
		Rule:         RuleLogDiff,
	}
}

// #endregion config

// #region result

// TracePoint records one improvement event: the accepted-move index at
// which the best score advanced, and the new best score.
type TracePoint struct {
	Accepted  int     `json:"accepted"`
	BestScore float64 `json:"best_score"`
}

// Result is the outcome of a chain. The search never signals success or
// failure: it reports the best legend observed when the budget ran out,
// with no convergence guarantee.
type Result struct {
	BestLegend cipher.Legend
	BestScore  float64
	Decoded    string

	// Trace is the full improvement history, non-decreasing in
	// BestScore. Entry 0 records the initial score.
	Trace []TracePoint

	AcceptedMoves int
	Proposals     int

	// Stalled is set when MaxStallRun consecutive rejections stopped the
	// chain before the accepted-move budget was spent.
	Stalled bool

	// Interrupted is set when context cancellation stopped the chain.
	Interrupted bool
}

// #endregion result

// #region chain-config

// ChainConfig parameterizes the multi-chain runner.
type ChainConfig struct {
	// Chains is the number of independent chains run concurrently.
	// Chain k derives its seed as Base.Seed + k.
	Chains int

	// Restarts is the per-chain budget of fresh starts after a stalled
	// result. Restart r of chain k uses seed Base.Seed + k + r*1000.
	Restarts int

	// Base is the per-chain search configuration.
	Base Config
}

// DefaultChainConfig returns a single-chain, no-restart configuration.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{Chains: 1, Restarts: 0, Base: DefaultConfig()}
}

// #endregion chain-config
