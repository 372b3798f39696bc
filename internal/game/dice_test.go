package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lol3rrr/madn/internal/game"
	"github.com/Lol3rrr/madn/internal/mocks"
)

func TestDiceMapsSourceOntoOneToSix(t *testing.T) {
	dice := game.NewDice(mocks.NewSource(0, 5, 6, 11))

	assert.Equal(t, 1, dice.Roll())
	assert.Equal(t, 6, dice.Roll())
	assert.Equal(t, 1, dice.Roll())
	assert.Equal(t, 6, dice.Roll())
}

func TestRandomDiceStaysInRange(t *testing.T) {
	dice := game.NewRandomDice()

	for i := 0; i < 100; i++ {
		value := dice.Roll()
		assert.GreaterOrEqual(t, value, 1)
		assert.LessOrEqual(t, value, 6)
	}
}
