package game_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lol3rrr/madn/internal/game"
)

func TestParseRequest(t *testing.T) {
	req, err := game.ParseRequest([]byte(`{"type":"roll"}`))
	require.NoError(t, err)
	assert.Equal(t, game.RequestRoll, req.Type)

	req, err = game.ParseRequest([]byte(`{"type":"move","figure":2}`))
	require.NoError(t, err)
	assert.Equal(t, game.RequestMove, req.Type)
	assert.Equal(t, 2, req.Figure)
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	_, err := game.ParseRequest([]byte(`{"type":"dance"}`))
	assert.Error(t, err)

	_, err = game.ParseRequest([]byte(`roll please`))
	assert.Error(t, err)
}

func TestFigureJSON(t *testing.T) {
	data, err := json.Marshal(game.OnField(12))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"field","progress":12}`, string(data))

	var fig game.Figure
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"house","progress":3}`), &fig))
	assert.Equal(t, game.InHouse(3), fig)

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"start"}`), &fig))
	assert.Equal(t, game.InStart(), fig)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"limbo"}`), &fig))
}
