package engine

import "math/rand"

// letterCounts is the fixed 144-tile multiset for a round, weighted by
// English letter frequency.
var letterCounts = map[string]int{
	"A": 13, "B": 3, "C": 3, "D": 6, "E": 18, "F": 3, "G": 4, "H": 3,
	"I": 12, "J": 2, "K": 2, "L": 5, "M": 3, "N": 8, "O": 11, "P": 3,
	"Q": 2, "R": 9, "S": 6, "T": 9, "U": 6, "V": 3, "W": 3, "X": 2,
	"Y": 3, "Z": 2,
}

// BagSize is the total number of letters in a fresh bag.
const BagSize = 144

// letterPool is the flat expansion of letterCounts, in alphabetical order.
// newBag copies it; SampleLetter indexes into it for weighted sampling.
var letterPool = buildLetterPool()

func buildLetterPool() []string {
	alphabet := []string{
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	}
	pool := make([]string, 0, BagSize)
	for _, l := range alphabet {
		for i := 0; i < letterCounts[l]; i++ {
			pool = append(pool, l)
		}
	}
	return pool
}

// newBag returns a freshly shuffled 144-letter draw pile using the supplied RNG.
func newBag(rng *rand.Rand) []string {
	bag := make([]string, BagSize)
	copy(bag, letterPool)
	rng.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
	return bag
}

// SampleLetter draws one letter at random, weighted by the standard
// distribution. Used for synthetic filler when piles are resized; the filler
// is deliberately uncorrelated with any player's true hidden draws.
func SampleLetter(rng *rand.Rand) string {
	return letterPool[rng.Intn(len(letterPool))]
}
