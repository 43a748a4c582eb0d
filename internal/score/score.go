// Package score computes the log-likelihood of a decoded text under the
// bigram transition model. Scores from two decodings of the same
// ciphertext are directly comparable; no length normalization is applied,
// so scores across different ciphertexts are not.
package score

import (
	"math"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/alphabet"
	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/corpus"
)

// #region log-likelihood

// LogLikelihood walks text left to right, summing log P(next | prev)
// under m. The walk uses the same uppercase fold and boundary collapse
// as the model build: characters outside the alphabet, and repeated
// spaces, contribute a single transition to the space symbol. The empty
// string scores 0, the log of an empty product. Always <= 0; never
// -Inf, because the smoothed model has no zero cells.
func LogLikelihood(text string, m *corpus.TransitionMatrix) float64 {
	total := 0.0
	prev := alphabet.SpaceIndex
	for i := 0; i < len(text); i++ {
		idx, ok := alphabet.Index(text[i])
		if !ok {
			idx = alphabet.SpaceIndex
		}
		if prev == alphabet.SpaceIndex && idx == alphabet.SpaceIndex {
			continue
		}
		total += math.Log(m.At(prev, idx))
		prev = idx
	}
	return total
}

// #endregion log-likelihood
