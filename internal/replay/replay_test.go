package replay

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/cipher"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/search"
)

var fixtureCorpus = []string{
	"THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG",
	"THE CAT SAT ON THE MAT AND THE DOG SAT ON THE RUG",
	"TO BE OR NOT TO BE THAT IS THE QUESTION",
}

// recordedFixture runs the search once and freezes the outcome into a
// fixture, the same way fixture export works against the run store.
func recordedFixture(t *testing.T) Fixture {
	t.Helper()
	ct, _ := cipher.Scramble("THE CAT SAT ON THE MAT", rand.New(rand.NewSource(55)))
	cfg := FixtureConfig{Seed: 21, AcceptTarget: 25, MaxStallRun: 300, Rule: "logdiff", Chains: 2}

	model := corpus.Build(fixtureCorpus)
	searcher := search.NewSearcher(&model, ct)
	best, _, err := searcher.RunChains(context.Background(), cfg.ChainConfig())
	if err != nil {
		t.Fatalf("record run: %v", err)
	}

	return Fixture{
		Description: "recorded in-test",
		CorpusLines: fixtureCorpus,
		Ciphertext:  ct,
		Config:      cfg,
		Expected: Expected{
			BestLegend: best.BestLegend.String(),
			BestScore:  best.BestScore,
			Decoded:    best.Decoded,
		},
	}
}

func TestReplayReproducesRecordedRun(t *testing.T) {
	f := recordedFixture(t)
	out, err := Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Passed {
		t.Fatalf("replay mismatches: %v", out.Mismatches)
	}
}

func TestReplayDetectsTamperedExpectation(t *testing.T) {
	f := recordedFixture(t)
	f.Expected.BestScore += 1.0
	out, err := Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Passed {
		t.Fatal("expected a best-score mismatch")
	}
}

func TestReplayDetectsChangedSeed(t *testing.T) {
	f := recordedFixture(t)
	f.Config.Seed++
	out, err := Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// A different seed is overwhelmingly unlikely to land on the exact
	// recorded legend and score.
	if out.Passed {
		t.Fatal("expected mismatches after seed change")
	}
}

func TestFixtureFileRoundTrip(t *testing.T) {
	f := recordedFixture(t)
	path := filepath.Join(t.TempDir(), "fixture.json")

	if err := SaveFixture(path, f); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if loaded.Ciphertext != f.Ciphertext || loaded.Config != f.Config {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.CorpusLines) != len(f.CorpusLines) {
		t.Fatalf("corpus lines lost: %d != %d", len(loaded.CorpusLines), len(f.CorpusLines))
	}

	out, err := Run(context.Background(), loaded)
	if err != nil {
		t.Fatalf("Run loaded fixture: %v", err)
	}
	if !out.Passed {
		t.Fatalf("loaded fixture did not reproduce: %v", out.Mismatches)
	}
}

func TestLoadFixtureRejectsEmptyCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := SaveFixture(path, Fixture{Description: "no ciphertext"}); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected an error for empty ciphertext")
	}
}
