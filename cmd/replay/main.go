// Command replay re-executes a recorded solver run and verifies the
// outcome reproduces. Fixture mode replays a self-contained JSON bundle;
// DB mode replays a stored run against its cached model. Exit code 0 on
// reproduction, 1 on mismatch.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/replay"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/runstore"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/search"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	dbPath := flag.String("db", "", "path to solver database (DB mode)")
	runID := flag.String("run", "", "run id to replay (DB mode)")
	flag.Parse()

	fixtureMode := *fixturePath != ""
	dbMode := *dbPath != "" && *runID != ""
	if fixtureMode == dbMode {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/solver.db --run RUN_ID")
		os.Exit(2)
	}

	var exitCode int
	if fixtureMode {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *runID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	out, err := replay.Run(context.Background(), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}
	return report(f.Description, out)
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath, runID string) int {
	store, err := runstore.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return 2
	}
	defer store.Close()

	rec, err := store.GetRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	if rec.ModelID == "" {
		fmt.Fprintln(os.Stderr, "run has no cached model; replay from a fixture instead")
		return 2
	}
	_, model, err := store.GetModelByID(rec.ModelID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	searcher := search.NewSearcher(&model, rec.Ciphertext)
	best, _, err := searcher.RunChains(context.Background(), search.ChainConfig{
		Chains:   rec.Chains,
		Restarts: rec.Restarts,
		Base: search.Config{
			Seed:         rec.Seed,
			AcceptTarget: rec.AcceptTarget,
			MaxStallRun:  rec.MaxStallRun,
			Rule:         search.AcceptanceRule(rec.Rule),
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay search: %v\n", err)
		return 2
	}

	out := replay.Compare(best, replay.Expected{
		BestLegend: rec.BestLegend,
		BestScore:  rec.BestScore,
		Decoded:    rec.Decoded,
	})
	return report(fmt.Sprintf("run %s", rec.RunID), out)
}

// #endregion db-mode

// #region report

func report(label string, out replay.Outcome) int {
	if out.Passed {
		fmt.Printf("PASS %s: score=%.4f accepted=%d\n", label, out.Result.BestScore, out.Result.AcceptedMoves)
		return 0
	}
	fmt.Printf("FAIL %s:\n", label)
	for _, m := range out.Mismatches {
		fmt.Printf("  %s\n", m)
	}
	return 1
}

// #endregion report
