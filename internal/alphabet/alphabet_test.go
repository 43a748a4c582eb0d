package alphabet

import "testing"

func TestSpaceIsIndexZero(t *testing.T) {
	i, ok := Index(' ')
	if !ok || i != SpaceIndex {
		t.Fatalf("expected space at index %d, got %d ok=%v", SpaceIndex, i, ok)
	}
	if Symbol(SpaceIndex) != Space {
		t.Fatalf("Symbol(0) = %q, want space", Symbol(SpaceIndex))
	}
}

func TestLetterIndices(t *testing.T) {
	for c := byte('A'); c <= 'Z'; c++ {
		want := int(c-'A') + 1
		i, ok := Index(c)
		if !ok || i != want {
			t.Fatalf("Index(%q) = %d ok=%v, want %d", c, i, ok, want)
		}
		if Symbol(want) != c {
			t.Fatalf("Symbol(%d) = %q, want %q", want, Symbol(want), c)
		}
	}
}

func TestLowercaseFoldsToUppercase(t *testing.T) {
	for c := byte('a'); c <= 'z'; c++ {
		upper, _ := Index(c - 'a' + 'A')
		i, ok := Index(c)
		if !ok || i != upper {
			t.Fatalf("Index(%q) = %d ok=%v, want %d", c, i, ok, upper)
		}
	}
}

func TestOutsideAlphabet(t *testing.T) {
	for _, b := range []byte{'0', '9', '.', ',', '!', '\n', '\t', 0} {
		if _, ok := Index(b); ok {
			t.Fatalf("Index(%q) should not be in the alphabet", b)
		}
		if IsLetter(b) {
			t.Fatalf("IsLetter(%q) should be false", b)
		}
	}
	if IsLetter(' ') {
		t.Fatal("space is not a letter")
	}
	if !IsLetter('q') || !IsLetter('Q') {
		t.Fatal("letters should report IsLetter")
	}
}
