package engine

import "math/rand/v2"

func GarbageFor(lines int) int {
	if lines <= 0 {
		return 0
	}
	if lines >= len(GarbageTable) {
		return GarbageTable[len(GarbageTable)-1]
	}
	return GarbageTable[lines]
}

// SelectTarget picks a living opponent of attacker uniformly at random.
// ok is false when nobody else is alive.
func SelectTarget(s State, attacker string, rng *rand.Rand) (target string, ok bool) {
	candidates := make([]string, 0, len(s.Order))
	for _, id := range s.Order {
		p, exists := s.Players[id]
		if !exists || !p.Alive || id == attacker {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.IntN(len(candidates))], true
}
