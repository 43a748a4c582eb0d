// Command inspect lists stored solver runs or dumps one run with its
// improvement trace.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/runstore"
)

// #region main
func main() {
	dbPath := flag.String("db", "solver.db", "path to the solver database")
	runID := flag.String("run", "", "run id to dump (default: list recent runs)")
	limit := flag.Int("limit", 20, "number of runs to list")
	flag.Parse()

	store, err := runstore.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	if *runID == "" {
		if err := listRuns(store, *limit); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		return
	}
	if err := dumpRun(store, *runID); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
}

// #endregion main

// #region list

func listRuns(store *runstore.Store, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		status := ""
		if r.Stalled {
			status = " [stalled]"
		}
		fmt.Printf("%s  %s  seed=%d chains=%d score=%.4f%s\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Seed, r.Chains, r.BestScore, status)
	}
	return nil
}

// #endregion list

// #region dump

func dumpRun(store *runstore.Store, runID string) error {
	rec, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s (%s)\n", rec.RunID, rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("config:     seed=%d target=%d stall_cap=%d rule=%s chains=%d\n",
		rec.Seed, rec.AcceptTarget, rec.MaxStallRun, rec.Rule, rec.Chains)
	fmt.Printf("counters:   accepted=%d proposals=%d stalled=%v\n",
		rec.AcceptedMoves, rec.Proposals, rec.Stalled)
	if rec.ModelID != "" {
		fmt.Printf("model:      %s\n", rec.ModelID)
	}
	fmt.Printf("ciphertext: %s\n", rec.Ciphertext)
	fmt.Printf("decoded:    %s\n", rec.Decoded)
	fmt.Printf("legend:     %s\n", rec.BestLegend)
	fmt.Printf("score:      %.4f\n", rec.BestScore)

	trace, err := store.Trace(runID)
	if err != nil {
		return err
	}
	fmt.Printf("trace:      %d improvement events\n", len(trace))
	for _, p := range trace {
		fmt.Printf("  accepted=%-6d best=%.4f\n", p.Accepted, p.BestScore)
	}
	return nil
}

// #endregion dump
