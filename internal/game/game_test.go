package game_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lol3rrr/madn/internal/game"
	"github.com/Lol3rrr/madn/internal/mocks"
)

func TestNewGameNeedsPlayers(t *testing.T) {
	_, err := game.New(uuid.New(), nil, game.NewRandomDice())
	assert.Error(t, err)
}

func TestCheckCaptureSendsOpponentHome(t *testing.T) {
	g, _, _ := newTwoPlayerGame(t, nil)

	// Seat 0 progress 12 and seat 1 progress 2 share ring field 12.
	g.Players[0].Figures[0] = game.OnField(12)
	g.Players[1].Figures[0] = game.OnField(2)

	g.CheckCapture(0)

	assert.Equal(t, game.OnField(12), g.Players[0].Figures[0])
	assert.Equal(t, game.InStart(), g.Players[1].Figures[0])
}

func TestCheckCaptureIgnoresSafeFigures(t *testing.T) {
	g, _, _ := newTwoPlayerGame(t, nil)

	g.Players[0].Figures[0] = game.OnField(12)
	// Different ring field, house, and start are all safe.
	g.Players[1].Figures[0] = game.OnField(3)
	g.Players[1].Figures[1] = game.InHouse(2)

	g.CheckCapture(0)

	assert.Equal(t, game.OnField(3), g.Players[1].Figures[0])
	assert.Equal(t, game.InHouse(2), g.Players[1].Figures[1])
	assert.Equal(t, game.InStart(), g.Players[1].Figures[2])
}

func TestCheckCaptureWrapsAroundTheRing(t *testing.T) {
	g, _, _ := newTwoPlayerGame(t, nil)

	// Seat 1 progress 35 sits on ring field (35+10)%40 = 5.
	g.Players[0].Figures[0] = game.OnField(5)
	g.Players[1].Figures[0] = game.OnField(35)

	g.CheckCapture(0)

	assert.Equal(t, game.InStart(), g.Players[1].Figures[0])
}

func TestBroadcastState(t *testing.T) {
	g, conn1, conn2 := newTwoPlayerGame(t, nil)
	g.Players[0].Figures[2] = game.OnField(7)

	g.BroadcastState()

	for _, conn := range []*mocks.Conn{conn1, conn2} {
		sent := conn.Sent()
		require.Len(t, sent, 1)

		var resp game.StateResponse
		require.NoError(t, json.Unmarshal(sent[0], &resp))

		assert.Equal(t, game.TypeState, resp.Type)
		require.Len(t, resp.Players, 2)
		assert.Equal(t, "test", resp.Players[0].Name)
		assert.Equal(t, "test2", resp.Players[1].Name)
		assert.Equal(t, game.OnField(7), resp.Players[0].Figures[2])
		assert.Equal(t, game.InStart(), resp.Players[1].Figures[0])
	}
}

func TestSendRejoinCodes(t *testing.T) {
	g, conn1, _ := newTwoPlayerGame(t, nil)

	require.NoError(t, g.SendRejoinCodes())

	sent := conn1.Sent()
	require.Len(t, sent, 1)

	var resp game.RejoinCodeResponse
	require.NoError(t, json.Unmarshal(sent[0], &resp))

	assert.Equal(t, game.TypeRejoinCode, resp.Type)
	assert.Equal(t, g.ID.String(), resp.Game)
	assert.Equal(t, g.Players[0].RejoinCode().String(), resp.Code)
}

func TestIndicatePlayers(t *testing.T) {
	g, conn1, _ := newTwoPlayerGame(t, nil)

	g.IndicatePlayers()

	sent := conn1.Sent()
	require.Len(t, sent, 2)

	var first game.IndicatePlayerResponse
	require.NoError(t, json.Unmarshal(sent[0], &first))
	assert.Equal(t, game.TypeIndicatePlayer, first.Type)
	assert.Equal(t, 0, first.Player)
	assert.Equal(t, "test", first.Name)
	assert.True(t, first.You)

	var second game.IndicatePlayerResponse
	require.NoError(t, json.Unmarshal(sent[1], &second))
	assert.Equal(t, 1, second.Player)
	assert.Equal(t, "test2", second.Name)
	assert.False(t, second.You)
}

func TestAdvanceTurnSkipsDonePlayers(t *testing.T) {
	conns := []*mocks.Conn{mocks.NewConn(), mocks.NewConn(), mocks.NewConn()}
	g, err := game.New(uuid.New(), []game.JoinedPlayer{
		{Name: "a", Conn: conns[0]},
		{Name: "b", Conn: conns[1]},
		{Name: "c", Conn: conns[2]},
	}, game.NewRandomDice())
	require.NoError(t, err)

	g.Next = 0
	for i := range g.Players[1].Figures {
		g.Players[1].Figures[i] = game.InHouse(i)
	}
	g.Players[1].CheckDone()

	g.AdvanceTurn()
	assert.Equal(t, 2, g.Next)

	g.AdvanceTurn()
	assert.Equal(t, 0, g.Next)
}

func TestIsDone(t *testing.T) {
	g, _, _ := newTwoPlayerGame(t, nil)
	assert.False(t, g.IsDone())

	for _, p := range g.Players {
		for i := range p.Figures {
			p.Figures[i] = game.InHouse(i)
		}
		p.CheckDone()
	}

	assert.True(t, g.IsDone())
}
