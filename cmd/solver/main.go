// Command solver breaks a substitution cipher: it builds (or loads from
// cache) the bigram model for the configured reference corpus, runs the
// Metropolis-Hastings key search over the ciphertext, prints the best
// decoding, and records the run in the solver database.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/runstore"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/search"
)

// #region main
func main() {
	configPath := flag.String("config", "solver.yaml", "path to solver configuration")
	cipherPath := flag.String("cipher", "", "file containing the ciphertext (default stdin)")
	seed := flag.Int64("seed", 0, "override the configured seed")
	chains := flag.Int("chains", 0, "override the configured chain count")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *chains != 0 {
		cfg.Chains = *chains
	}

	ciphertext, err := readCiphertext(*cipherPath)
	if err != nil {
		log.Fatalf("read ciphertext: %v", err)
	}
	if ciphertext == "" {
		log.Fatal("empty ciphertext")
	}

	store, err := runstore.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	modelID, model, err := loadModel(store, cfg)
	if err != nil {
		log.Fatalf("model: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	searcher := search.NewSearcher(&model, ciphertext)
	chainCfg := search.ChainConfig{
		Chains:   cfg.Chains,
		Restarts: cfg.Restarts,
		Base: search.Config{
			Seed:         cfg.Seed,
			AcceptTarget: cfg.AcceptTarget,
			MaxStallRun:  cfg.MaxStallRun,
			Rule:         search.AcceptanceRule(cfg.Rule),
			Progress: func(accepted, stallRun int, bestDecoded string) {
				log.Printf("[SEARCH] accepted=%d stalls=%d best=%q",
					accepted, stallRun, truncate(bestDecoded, 60))
			},
		},
	}

	best, all, err := searcher.RunChains(ctx, chainCfg)
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	fmt.Printf("\nDecoded:\n%s\n\n", best.Decoded)
	fmt.Printf("Legend: %s\n", best.BestLegend.Pairs())
	fmt.Printf("Score:  %.4f\n", best.BestScore)
	for k, r := range all {
		status := "done"
		if r.Stalled {
			status = "stalled"
		}
		if r.Interrupted {
			status = "interrupted"
		}
		fmt.Printf("chain %d: score=%.4f accepted=%d proposals=%d %s\n",
			k, r.BestScore, r.AcceptedMoves, r.Proposals, status)
	}

	saved, err := store.SaveRun(runstore.RunRecord{
		ModelID:       modelID,
		Ciphertext:    ciphertext,
		Seed:          cfg.Seed,
		AcceptTarget:  cfg.AcceptTarget,
		MaxStallRun:   cfg.MaxStallRun,
		Rule:          cfg.Rule,
		Chains:        cfg.Chains,
		Restarts:      cfg.Restarts,
		BestLegend:    best.BestLegend.String(),
		BestScore:     best.BestScore,
		Decoded:       best.Decoded,
		AcceptedMoves: best.AcceptedMoves,
		Proposals:     best.Proposals,
		Stalled:       best.Stalled,
	}, best.Trace)
	if err != nil {
		log.Fatalf("save run: %v", err)
	}
	log.Printf("[STORE] saved run %s", saved.RunID)
}

// #endregion main

// #region model

// loadModel returns the cached model for the configured corpus label, or
// builds it from the corpus file and caches it.
func loadModel(store *runstore.Store, cfg solverConfig) (string, corpus.TransitionMatrix, error) {
	rec, m, err := store.GetModel(cfg.CorpusLabel)
	if err == nil {
		log.Printf("[MODEL] loaded cached model %q (%d corpus lines)", rec.Label, rec.LineCount)
		return rec.ModelID, m, nil
	}
	if !errors.Is(err, runstore.ErrNotFound) {
		return "", corpus.TransitionMatrix{}, err
	}

	if cfg.CorpusPath == "" {
		return "", corpus.TransitionMatrix{}, fmt.Errorf("no cached model %q and no corpus_path configured", cfg.CorpusLabel)
	}
	lines, err := readLines(cfg.CorpusPath)
	if err != nil {
		return "", corpus.TransitionMatrix{}, err
	}

	m = corpus.BuildParallel(lines, corpus.BuildConfig{Workers: cfg.Workers})
	if err := corpus.Validate(&m); err != nil {
		return "", corpus.TransitionMatrix{}, err
	}
	log.Printf("[MODEL] built model from %s (%d lines, %d workers)", cfg.CorpusPath, len(lines), cfg.Workers)

	id, err := store.SaveModel(cfg.CorpusLabel, &m, len(lines))
	if err != nil {
		return "", corpus.TransitionMatrix{}, err
	}
	return id, m, nil
}

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

// #endregion model

// #region helpers

func readCiphertext(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// #endregion helpers
