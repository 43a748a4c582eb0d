package search

import (
	"context"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/cipher"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/score"
)

var testModel = corpus.Build([]string{
	"THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG",
	"IT WAS THE BEST OF TIMES IT WAS THE WORST OF TIMES",
	"THE CAT SAT ON THE MAT AND THE DOG SAT ON THE RUG",
	"A MAN A PLAN A CANAL PANAMA",
	"TO BE OR NOT TO BE THAT IS THE QUESTION",
})

// scrambled test input with a known answer
func testCiphertext(t *testing.T) string {
	t.Helper()
	ct, _ := cipher.Scramble("THE CAT SAT ON THE MAT AND THE DOG SAT ON THE RUG", rand.New(rand.NewSource(123)))
	return ct
}

func TestRunRejectsBadConfig(t *testing.T) {
	s := NewSearcher(&testModel, "ABC")
	if _, err := s.Run(context.Background(), Config{AcceptTarget: 0}); err == nil {
		t.Fatal("expected error for zero accept target")
	}
	if _, err := s.Run(context.Background(), Config{AcceptTarget: 1, Rule: "bogus"}); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestSeedDeterminism(t *testing.T) {
	s := NewSearcher(&testModel, testCiphertext(t))
	cfg := Config{Seed: 7, AcceptTarget: 40, MaxStallRun: 500, Rule: RuleLogDiff}

	a, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	b, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run b: %v", err)
	}

	if a.BestLegend != b.BestLegend || a.BestScore != b.BestScore {
		t.Fatal("same seed produced different best results")
	}
	if a.Proposals != b.Proposals || a.AcceptedMoves != b.AcceptedMoves {
		t.Fatal("same seed produced different counters")
	}
	if !reflect.DeepEqual(a.Trace, b.Trace) {
		t.Fatal("same seed produced different traces")
	}
}

func TestTraceIsMonotonic(t *testing.T) {
	s := NewSearcher(&testModel, testCiphertext(t))
	res, err := s.Run(context.Background(), Config{Seed: 3, AcceptTarget: 60, MaxStallRun: 500})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trace) == 0 || res.Trace[0].Accepted != 0 {
		t.Fatalf("trace must start with the initial score, got %+v", res.Trace)
	}
	for i := 1; i < len(res.Trace); i++ {
		if res.Trace[i].BestScore < res.Trace[i-1].BestScore {
			t.Fatalf("trace decreased at %d: %v < %v", i, res.Trace[i].BestScore, res.Trace[i-1].BestScore)
		}
		if res.Trace[i].Accepted <= res.Trace[i-1].Accepted {
			t.Fatalf("trace accepted index not increasing at %d", i)
		}
	}
	if res.Trace[len(res.Trace)-1].BestScore != res.BestScore {
		t.Fatal("final trace entry must match BestScore")
	}
}

func TestResultIsSelfConsistent(t *testing.T) {
	ct := testCiphertext(t)
	s := NewSearcher(&testModel, ct)
	res, err := s.Run(context.Background(), Config{Seed: 9, AcceptTarget: 30, MaxStallRun: 500})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := res.BestLegend.Validate(); err != nil {
		t.Fatalf("best legend not bijective: %v", err)
	}
	if res.Decoded != res.BestLegend.Decode(ct) {
		t.Fatal("Decoded does not match BestLegend applied to the ciphertext")
	}
	if got := score.LogLikelihood(res.Decoded, &testModel); got != res.BestScore {
		t.Fatalf("BestScore %v does not match rescoring %v", res.BestScore, got)
	}
	if res.BestScore < res.Trace[0].BestScore {
		t.Fatal("best score fell below the initial score")
	}
}

func TestStallCapSurfacesStalledResult(t *testing.T) {
	// A ciphertext with no letters decodes identically under every
	// legend, so under the log-difference rule every proposal has
	// delta = 0 and is rejected: the chain can only stall.
	s := NewSearcher(&testModel, "1234 5678")
	res, err := s.Run(context.Background(), Config{Seed: 1, AcceptTarget: 5, MaxStallRun: 25, Rule: RuleLogDiff})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Stalled {
		t.Fatal("expected a stalled result")
	}
	if res.AcceptedMoves != 0 {
		t.Fatalf("expected no accepted moves, got %d", res.AcceptedMoves)
	}
	if res.Proposals != 25 {
		t.Fatalf("expected 25 proposals before the cap, got %d", res.Proposals)
	}
}

func TestMetropolisRuleAcceptsZeroDelta(t *testing.T) {
	// Same letterless ciphertext: delta = 0, exp(0) = 1 > u, so the
	// canonical rule accepts every proposal.
	s := NewSearcher(&testModel, "1234 5678")
	res, err := s.Run(context.Background(), Config{Seed: 1, AcceptTarget: 10, Rule: RuleMetropolis})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stalled {
		t.Fatal("metropolis rule should not stall here")
	}
	if res.AcceptedMoves != 10 || res.Proposals != 10 {
		t.Fatalf("expected 10/10 accepted, got %d/%d", res.AcceptedMoves, res.Proposals)
	}
}

func TestProgressObserverPerAcceptedMove(t *testing.T) {
	s := NewSearcher(&testModel, "1234")
	var calls []int
	cfg := Config{
		Seed:         4,
		AcceptTarget: 6,
		Rule:         RuleMetropolis,
		Progress: func(accepted, stallRun int, bestDecoded string) {
			calls = append(calls, accepted)
			if bestDecoded == "" {
				t.Error("observer received empty decoding")
			}
			if stallRun < 0 {
				t.Errorf("negative stall run %d", stallRun)
			}
		},
	}
	if _, err := s.Run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(calls) != 6 {
		t.Fatalf("observer called %d times, want 6", len(calls))
	}
	for i, a := range calls {
		if a != i+1 {
			t.Fatalf("call %d reported accepted=%d", i, a)
		}
	}
}

func TestCancelledContextInterrupts(t *testing.T) {
	s := NewSearcher(&testModel, testCiphertext(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, Config{Seed: 2, AcceptTarget: 1000})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Interrupted {
		t.Fatal("expected Interrupted")
	}
	if res.Proposals != 0 {
		t.Fatalf("expected no proposals after immediate cancel, got %d", res.Proposals)
	}
}

func TestDrawPairIsDistinctAndInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for n := 0; n < 1000; n++ {
		i, j := drawPair(rng)
		if i == j {
			t.Fatal("drew identical positions")
		}
		if i < 0 || i >= 26 || j < 0 || j >= 26 {
			t.Fatalf("position out of range: %d, %d", i, j)
		}
	}
}

func TestRunChainsPicksGlobalBest(t *testing.T) {
	s := NewSearcher(&testModel, testCiphertext(t))
	cfg := ChainConfig{
		Chains: 3,
		Base:   Config{Seed: 11, AcceptTarget: 30, MaxStallRun: 400},
	}
	best, all, err := s.RunChains(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RunChains: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 chain results, got %d", len(all))
	}
	for k, r := range all {
		if r.BestScore > best.BestScore {
			t.Fatalf("chain %d beat the reported best", k)
		}
	}

	// Replayable: a second run reproduces every chain.
	_, all2, err := s.RunChains(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RunChains again: %v", err)
	}
	for k := range all {
		if all[k].BestLegend != all2[k].BestLegend || all[k].BestScore != all2[k].BestScore {
			t.Fatalf("chain %d not reproducible", k)
		}
	}
}

func TestRunChainsRejectsBadConfig(t *testing.T) {
	s := NewSearcher(&testModel, "ABC")
	if _, _, err := s.RunChains(context.Background(), ChainConfig{Chains: 0}); err == nil {
		t.Fatal("expected error for zero chains")
	}
}
