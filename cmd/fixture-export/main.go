// Command fixture-export writes a stored solver run out as a
// self-contained replay fixture. The corpus file must be the one the run
// was solved against: the fixture embeds its lines so the replay can
// rebuild the model without the database.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/replay"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/runstore"
)

// #region main

func main() {
	dbPath := flag.String("db", "solver.db", "path to the solver database")
	runID := flag.String("run", "", "run id to export")
	corpusPath := flag.String("corpus", "", "corpus file the run was solved against")
	outPath := flag.String("out", "fixture.json", "output fixture path")
	flag.Parse()

	if *runID == "" || *corpusPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db solver.db --run RUN_ID --corpus corpus.txt --out fixture.json")
		os.Exit(2)
	}

	store, err := runstore.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	rec, err := store.GetRun(*runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	lines, err := readLines(*corpusPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	f := replay.Fixture{
		Description: fmt.Sprintf("exported from run %s", rec.RunID),
		CorpusLines: lines,
		Ciphertext:  rec.Ciphertext,
		Config: replay.FixtureConfig{
			Seed:         rec.Seed,
			AcceptTarget: rec.AcceptTarget,
			MaxStallRun:  rec.MaxStallRun,
			Rule:         rec.Rule,
			Chains:       rec.Chains,
			Restarts:     rec.Restarts,
		},
		Expected: replay.Expected{
			BestLegend: rec.BestLegend,
			BestScore:  rec.BestScore,
			Decoded:    rec.Decoded,
		},
	}

	if err := replay.SaveFixture(*outPath, f); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	fmt.Printf("exported run %s to %s (%d corpus lines)\n", rec.RunID, *outPath, len(lines))
}

// #endregion main

// #region helpers

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	return lines, nil
}

// #endregion helpers
