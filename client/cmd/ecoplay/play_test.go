package main

import (
	"bufio"
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"ecoaware/client/api"
	"ecoaware/client/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	st := game.State{Items: []game.Item{
		{ID: 1, Name: "Newspaper", Category: game.Paper},
		{ID: 3, Name: "Glass jar", Category: game.Glass},
	}}

	item, bin, err := parseMove(st, "2 glass")
	require.NoError(t, err)
	assert.Equal(t, 3, item.ID)
	assert.Equal(t, game.Glass, bin)

	item, bin, err = parseMove(st, "1 1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.ID)
	assert.Equal(t, game.Paper, bin)

	_, _, err = parseMove(st, "3 paper")
	assert.Error(t, err)
	_, _, err = parseMove(st, "1 landfill")
	assert.Error(t, err)
	_, _, err = parseMove(st, "1")
	assert.Error(t, err)
}

func TestPlayUntilQuit(t *testing.T) {
	var out bytes.Buffer
	a := &app{
		client: api.New("http://127.0.0.1:1"),
		in:     bufio.NewScanner(strings.NewReader("9 paper\n1 landfill\nq\n")),
		out:    &out,
		logger: log.New(io.Discard, "", 0),
	}
	require.NoError(t, a.play(1))
	assert.Contains(t, out.String(), "Level 1")
	assert.Contains(t, out.String(), "unknown bin")
}

func TestAtoiOr(t *testing.T) {
	assert.Equal(t, 2, atoiOr("2", 1))
	assert.Equal(t, 1, atoiOr("", 1))
}
