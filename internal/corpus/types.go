package corpus

import "github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/alphabet"

// #region count-matrix

// CountMatrix holds raw bigram counts over the 27-symbol alphabet.
// Row = previous symbol, column = next symbol.
type CountMatrix [alphabet.Size][alphabet.Size]uint64

// Add accumulates other into m. Used to merge per-chunk partial counts.
func (m *CountMatrix) Add(other *CountMatrix) {
	for i := range m {
		for j := range m[i] {
			m[i][j] += other[i][j]
		}
	}
}

// #endregion count-matrix

// #region transition-matrix

// TransitionMatrix is the smoothed, row-normalized bigram model. Built
// once, then shared read-only: it is never mutated after Normalize, so
// concurrent chains may score against it without locking.
type TransitionMatrix [alphabet.Size][alphabet.Size]float64

// At returns P(next | prev) by symbol index. O(1) indexed access.
func (m *TransitionMatrix) At(prev, next int) float64 {
	return m[prev][next]
}

// #endregion transition-matrix

// #region build-config

// BuildConfig controls the parallel corpus build.
type BuildConfig struct {
	// Workers is the number of chunks the corpus is split into for
	// parallel counting. 1 means serial.
	Workers int
}

// DefaultBuildConfig returns the serial build configuration.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{Workers: 1}
}

// #endregion build-config
