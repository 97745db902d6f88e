package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGarbageFor(t *testing.T) {
	cases := []struct {
		lines int
		want  int
	}{
		{-1, 0},
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 4},
		{5, 4},
		{100, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GarbageFor(tc.lines), "lines=%d", tc.lines)
	}
}

func TestSelectTarget_NeverSelfOrDead(t *testing.T) {
	s := roomWith(t, "a", "b", "c", "d")
	s.Players["c"].Alive = false
	rng := testRand()

	seen := map[string]int{}
	for range 500 {
		target, ok := SelectTarget(s, "a", rng)
		assert.True(t, ok)
		assert.NotEqual(t, "a", target)
		assert.NotEqual(t, "c", target)
		seen[target]++
	}
	// both living opponents get hit
	assert.Positive(t, seen["b"])
	assert.Positive(t, seen["d"])
	assert.Len(t, seen, 2)
}

func TestSelectTarget_NoneWhenAlone(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) State
	}{
		{name: "only attacker in room", setup: func(t *testing.T) State { return roomWith(t, "a") }},
		{name: "everyone else dead", setup: func(t *testing.T) State {
			s := roomWith(t, "a", "b", "c")
			s.Players["b"].Alive = false
			s.Players["c"].Alive = false
			return s
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, ok := SelectTarget(tc.setup(t), "a", testRand())
			assert.False(t, ok)
			assert.Empty(t, target)
		})
	}
}

func TestSelectTarget_DeadAttackerCanTargetLiving(t *testing.T) {
	s := roomWith(t, "a", "b")
	s.Players["a"].Alive = false

	target, ok := SelectTarget(s, "a", testRand())
	assert.True(t, ok)
	assert.Equal(t, "b", target)
}
