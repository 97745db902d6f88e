package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckGameEnd_RankingReversesDeathOrder(t *testing.T) {
	s := roomWith(t, "A", "B", "C", "D")
	s.Status = StatusPlaying

	RecordDeath(&s, "A")
	RecordDeath(&s, "B")
	_, ended := CheckGameEnd(&s)
	require.False(t, ended)

	RecordDeath(&s, "C")
	ranking, ended := CheckGameEnd(&s)
	require.True(t, ended)
	assert.Equal(t, []string{"D", "C", "B", "A"}, ranking)
	assert.Equal(t, []string{"A", "B", "C", "D"}, s.DeathOrder)
	assert.Equal(t, StatusWaiting, s.Status)
}

func TestCheckGameEnd_NoSurvivor(t *testing.T) {
	s := roomWith(t, "A", "B")
	s.Status = StatusPlaying
	RecordDeath(&s, "A")
	s.Players["B"].Alive = false // both dropped before the check ran

	ranking, ended := CheckGameEnd(&s)
	require.True(t, ended)
	assert.Equal(t, []string{"A"}, ranking)
}

func TestCheckGameEnd_SoloGame(t *testing.T) {
	s := roomWith(t, "solo")
	s.Status = StatusPlaying
	RecordDeath(&s, "solo")

	ranking, ended := CheckGameEnd(&s)
	require.True(t, ended)
	assert.Equal(t, []string{"solo"}, ranking)
}

func TestRecordDeath_UnknownIsNoop(t *testing.T) {
	s := roomWith(t, "A")
	RecordDeath(&s, "ghost")
	assert.Empty(t, s.DeathOrder)
	assert.True(t, s.Players["A"].Alive)
}
