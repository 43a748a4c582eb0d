// Package alphabet defines the fixed 27-symbol alphabet (space plus the
// 26 uppercase letters) shared by the corpus model, the scorer, and the
// key search. Indices are stable for the life of the process: space is 0,
// 'A' is 1, 'Z' is 26.
package alphabet

// #region constants

const (
	// Size is the number of symbols in the alphabet.
	Size = 27

	// SpaceIndex is the index of the boundary symbol.
	SpaceIndex = 0

	// Letters is the number of permutable letters (space is never permuted).
	Letters = 26

	// Space is the boundary symbol itself.
	Space byte = ' '
)

// #endregion constants

// #region fold-table

// foldTable maps a raw byte to its symbol index. Lowercase letters fold
// to their uppercase index. Every byte outside the alphabet maps to -1.
var foldTable [256]int8

func init() {
	for i := range foldTable {
		foldTable[i] = -1
	}
	foldTable[Space] = SpaceIndex
	for c := byte('A'); c <= 'Z'; c++ {
		foldTable[c] = int8(c-'A') + 1
		foldTable[c+'a'-'A'] = int8(c-'A') + 1
	}
}

// #endregion fold-table

// #region lookup

// Index returns the symbol index for b and whether b belongs to the
// alphabet. Lowercase letters are folded to uppercase.
func Index(b byte) (int, bool) {
	i := foldTable[b]
	return int(i), i >= 0
}

// Symbol returns the byte for symbol index i. Index 0 is the space;
// 1..26 are 'A'..'Z'. Panics on an out-of-range index.
func Symbol(i int) byte {
	if i == SpaceIndex {
		return Space
	}
	if i < 1 || i > Letters {
		panic("alphabet: symbol index out of range")
	}
	return byte('A' + i - 1)
}

// IsLetter reports whether b is one of the 26 letters (either case).
func IsLetter(b byte) bool {
	return foldTable[b] > 0
}

// #endregion lookup
