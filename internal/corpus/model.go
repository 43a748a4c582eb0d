// Package corpus builds the smoothed bigram transition model from a
// reference text corpus. The model is a 27×27 table of conditional
// probabilities P(next symbol | previous symbol) over the space and the
// 26 letters; every character outside the alphabet collapses to a single
// space boundary event.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/alphabet"
)

// #region accumulator

// accumulator consumes the corpus one symbol at a time, holding only the
// previous symbol as state, so corpora of arbitrary size stream through
// in a single forward pass.
type accumulator struct {
	counts CountMatrix
	prev   int
}

func newAccumulator() *accumulator {
	return &accumulator{prev: alphabet.SpaceIndex}
}

// observe folds one raw byte into the counts. Runs of characters outside
// the alphabet, and runs of spaces, collapse to one boundary event.
func (a *accumulator) observe(b byte) {
	idx, ok := alphabet.Index(b)
	if !ok {
		a.boundary()
		return
	}
	if a.prev == alphabet.SpaceIndex && idx == alphabet.SpaceIndex {
		return
	}
	a.counts[a.prev][idx]++
	a.prev = idx
}

// boundary records a transition to the space symbol unless the
// accumulator is already at a boundary.
func (a *accumulator) boundary() {
	if a.prev == alphabet.SpaceIndex {
		return
	}
	a.counts[a.prev][alphabet.SpaceIndex]++
	a.prev = alphabet.SpaceIndex
}

// observeLine consumes one corpus line followed by a boundary event, the
// newline that delimited it being outside the alphabet. Every line
// therefore ends with prev at the space symbol, which is what makes
// line-granular chunking exact: a chunk's initial previous symbol is
// always the space, so no bigram is dropped or duplicated at a seam.
func (a *accumulator) observeLine(line string) {
	for i := 0; i < len(line); i++ {
		a.observe(line[i])
	}
	a.boundary()
}

// #endregion accumulator

// #region build

// BuildCounts runs the single-pass count accumulation over lines.
func BuildCounts(lines []string) CountMatrix {
	a := newAccumulator()
	for _, line := range lines {
		a.observeLine(line)
	}
	return a.counts
}

// Build constructs the smoothed transition model from corpus lines.
func Build(lines []string) TransitionMatrix {
	counts := BuildCounts(lines)
	return Normalize(&counts)
}

// BuildFromReader streams corpus lines from r, returning the model and
// the number of lines consumed.
func BuildFromReader(r io.Reader) (TransitionMatrix, int, error) {
	a := newAccumulator()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		a.observeLine(sc.Text())
		n++
	}
	if err := sc.Err(); err != nil {
		return TransitionMatrix{}, n, fmt.Errorf("scan corpus: %w", err)
	}
	return Normalize(&a.counts), n, nil
}

// BuildParallel partitions lines into cfg.Workers chunks, counts each
// chunk independently, and sums the partial matrices. Chunks split at
// line boundaries (see accumulator.observeLine), so the result is
// identical to the serial Build.
func BuildParallel(lines []string, cfg BuildConfig) TransitionMatrix {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(lines) {
		workers = len(lines)
	}
	if workers <= 1 {
		return Build(lines)
	}

	partials := make([]CountMatrix, workers)
	var g errgroup.Group
	chunk := (len(lines) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := lo + chunk
		if hi > len(lines) {
			hi = len(lines)
		}
		g.Go(func() error {
			partials[w] = BuildCounts(lines[lo:hi])
			return nil
		})
	}
	g.Wait() // workers never return errors

	var total CountMatrix
	for w := range partials {
		total.Add(&partials[w])
	}
	return Normalize(&total)
}

// #endregion build

// #region normalize

// Normalize applies Laplace +1 smoothing to every cell and divides each
// row by its sum. Smoothing guarantees no zero probability for unseen
// bigrams, which is what keeps log scoring finite; a row with zero raw
// counts becomes a valid uniform distribution.
func Normalize(counts *CountMatrix) TransitionMatrix {
	var m TransitionMatrix
	for i := range counts {
		rowSum := float64(0)
		for j := range counts[i] {
			rowSum += float64(counts[i][j] + 1)
		}
		for j := range counts[i] {
			m[i][j] = float64(counts[i][j]+1) / rowSum
		}
	}
	return m
}

// #endregion normalize

// #region validate

// rowSumTolerance bounds the floating error allowed in a normalized row.
const rowSumTolerance = 1e-9

// Validate checks the model invariants: every row sums to 1 within
// tolerance and no cell is zero or negative.
func Validate(m *TransitionMatrix) error {
	for i := range m {
		sum := float64(0)
		for j := range m[i] {
			if m[i][j] <= 0 {
				return fmt.Errorf("model: cell [%d][%d] = %v, want > 0", i, j, m[i][j])
			}
			sum += m[i][j]
		}
		if math.Abs(sum-1) > rowSumTolerance {
			return fmt.Errorf("model: row %d sums to %v, want 1", i, sum)
		}
	}
	return nil
}

// #endregion validate
