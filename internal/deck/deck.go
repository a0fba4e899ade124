// Package deck builds shuffled boards of paired cards.
package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tuipairs/internal/symbols"
)

// ErrInvalidConfiguration reports a board that cannot be built.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// SupportedSizes lists the grid sizes a board can be generated for.
var SupportedSizes = []int{4, 6, 8}

// Card is a single board tile.
type Card struct {
	Symbol  string
	Matched bool
	Flipped bool
}

// Generator produces shuffled boards.
type Generator struct {
	rnd      *rand.Rand
	alphabet []string
}

// New returns a Generator seeded with the current time using the default alphabet.
func New() *Generator {
	return NewWithAlphabet(nil, symbols.Default)
}

// NewWithSeed returns a deterministic Generator using the default alphabet.
func NewWithSeed(seed int64) *Generator {
	return NewWithAlphabet(rand.New(rand.NewSource(seed)), symbols.Default)
}

// NewWithAlphabet returns a Generator drawing symbols from alphabet.
// A nil rnd is replaced by a time-seeded source.
func NewWithAlphabet(rnd *rand.Rand, alphabet []string) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd, alphabet: alphabet}
}

// SupportedSize reports whether gridSize can be generated.
func SupportedSize(gridSize int) bool {
	for _, s := range SupportedSizes {
		if s == gridSize {
			return true
		}
	}
	return false
}

// PairsFor returns the number of pairs on a board of the given size.
func PairsFor(gridSize int) int {
	return gridSize * gridSize / 2
}

// Generate returns gridSize² face-down cards holding gridSize²/2 pairs.
// Pair i uses alphabet[i % len(alphabet)], so small alphabets repeat symbols
// across pairs.
func (g *Generator) Generate(gridSize int) ([]Card, error) {
	if !SupportedSize(gridSize) {
		return nil, fmt.Errorf("%w: grid size %d (supported: 4, 6, 8)", ErrInvalidConfiguration, gridSize)
	}
	if len(g.alphabet) == 0 {
		return nil, fmt.Errorf("%w: empty symbol alphabet", ErrInvalidConfiguration)
	}
	pairs := PairsFor(gridSize)
	faces := make([]string, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		symbol := g.alphabet[i%len(g.alphabet)]
		faces = append(faces, symbol, symbol)
	}
	g.rnd.Shuffle(len(faces), func(i, j int) {
		faces[i], faces[j] = faces[j], faces[i]
	})

	cards := make([]Card, len(faces))
	for i, symbol := range faces {
		cards[i] = Card{Symbol: symbol}
	}
	return cards, nil
}
