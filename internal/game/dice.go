package game

import "math/rand/v2"

// Source yields raw random values for the dice. math/rand/v2 sources
// satisfy it; tests inject scripted values.
type Source interface {
	Uint64() uint64
}

// Dice is a six-sided die on top of a Source.
type Dice struct {
	src Source
}

// NewDice builds a die from the given source.
func NewDice(src Source) Dice {
	return Dice{src: src}
}

// NewRandomDice builds a die seeded from the global generator.
func NewRandomDice() Dice {
	return Dice{src: rand.NewPCG(rand.Uint64(), rand.Uint64())}
}

// Roll returns a value between 1 and 6.
func (d Dice) Roll() int {
	return int(d.src.Uint64()%6) + 1
}
