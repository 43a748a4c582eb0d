// Package cipher implements the monoalphabetic substitution legend: a
// bijection between the 26 ciphertext letters and the 26 plaintext
// letters. The space maps to itself and is never permuted.
package cipher

import (
	"fmt"
	"math/rand"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/alphabet"
)

// #region legend

// Legend maps ciphertext letters to plaintext letters. Legend[i] is the
// plaintext letter substituted for the ciphertext letter 'A'+i. A Legend
// is a value type: it is copied on assignment, so a held Legend can
// never be mutated by later search moves.
type Legend [alphabet.Letters]byte

// Identity returns the legend that maps every letter to itself.
func Identity() Legend {
	var l Legend
	for i := range l {
		l[i] = byte('A' + i)
	}
	return l
}

// NewRandom returns a uniformly random bijection drawn from rng.
// The rng is injected so runs are replayable from an explicit seed.
func NewRandom(rng *rand.Rand) Legend {
	var l Legend
	for i, p := range rng.Perm(alphabet.Letters) {
		l[i] = byte('A' + p)
	}
	return l
}

// #endregion legend

// #region operations

// Swap returns a copy of l with the plaintext images at letter positions
// i and j exchanged. One transposition in the permutation; applying the
// same swap twice returns the original legend.
func (l Legend) Swap(i, j int) Legend {
	l[i], l[j] = l[j], l[i]
	return l
}

// Inverse returns the legend that undoes l: if l maps C to P, the
// inverse maps P to C. Only valid on a bijective legend.
func (l Legend) Inverse() Legend {
	var inv Legend
	for i, p := range l {
		inv[p-'A'] = byte('A' + i)
	}
	return inv
}

// Validate reports an error unless l is a bijection over 'A'..'Z'.
func (l Legend) Validate() error {
	var seen [alphabet.Letters]bool
	for i, p := range l {
		if p < 'A' || p > 'Z' {
			return fmt.Errorf("legend: position %c maps to non-letter %q", 'A'+i, p)
		}
		if seen[p-'A'] {
			return fmt.Errorf("legend: %c mapped twice", p)
		}
		seen[p-'A'] = true
	}
	return nil
}

// #endregion operations

// #region decode

// Decode applies the legend to ciphertext. Letters are uppercased for
// lookup and replaced by their plaintext image; every other byte passes
// through unchanged, preserving the original layout. Pure and O(n).
func (l Legend) Decode(ciphertext string) string {
	if ciphertext == "" {
		return ""
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i++ {
		c := ciphertext[i]
		if alphabet.IsLetter(c) {
			if c >= 'a' {
				c -= 'a' - 'A'
			}
			out[i] = l[c-'A']
		} else {
			out[i] = c
		}
	}
	return string(out)
}

// #endregion decode

// #region scramble

// Scramble enciphers plaintext under a fresh random substitution and
// returns the ciphertext together with the legend that decodes it:
// legend.Decode(ciphertext) recovers the uppercased plaintext.
func Scramble(plaintext string, rng *rand.Rand) (string, Legend) {
	legend := NewRandom(rng)
	return legend.Inverse().Decode(plaintext), legend
}

// #endregion scramble

// #region format

// String renders the legend as its 26-character image string, the
// plaintext letters in ciphertext-letter order. Used for storage.
func (l Legend) String() string {
	return string(l[:])
}

// Pairs renders the legend as explicit "C=P" mappings for display.
func (l Legend) Pairs() string {
	out := make([]byte, 0, alphabet.Letters*4)
	for i, p := range l {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, byte('A'+i), '=', p)
	}
	return string(out)
}

// ParseLegend parses a 26-character image string produced by String,
// enforcing bijectivity.
func ParseLegend(s string) (Legend, error) {
	var l Legend
	if len(s) != alphabet.Letters {
		return l, fmt.Errorf("legend: want %d characters, got %d", alphabet.Letters, len(s))
	}
	copy(l[:], s)
	if err := l.Validate(); err != nil {
		return Legend{}, err
	}
	return l, nil
}

// #endregion format
