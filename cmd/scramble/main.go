// Command scramble enciphers a plaintext under a fresh random
// substitution legend. Useful for producing solver demo inputs with a
// known answer.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/rpkelley/Markov-Chain-Monte-Carlo-Decryption/internal/cipher"
)

// #region main

func main() {
	seed := flag.Int64("seed", 1, "RNG seed for the legend draw")
	inPath := flag.String("in", "", "plaintext file (default stdin)")
	showLegend := flag.Bool("legend", false, "also print the decoding legend")
	flag.Parse()

	plain, err := readInput(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read plaintext: %v\n", err)
		os.Exit(2)
	}
	if plain == "" {
		fmt.Fprintln(os.Stderr, "empty plaintext")
		os.Exit(2)
	}

	ciphertext, legend := cipher.Scramble(plain, rand.New(rand.NewSource(*seed)))
	fmt.Println(ciphertext)
	if *showLegend {
		fmt.Fprintf(os.Stderr, "legend: %s\n", legend.Pairs())
	}
}

// #endregion main

// #region helpers

func readInput(path string) (string, error) {
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

// #endregion helpers
