package engine

import "slices"

// RecordDeath marks connID eliminated and appends its name to the death order.
func RecordDeath(s *State, connID string) {
	p, ok := s.Players[connID]
	if !ok {
		return
	}
	p.Alive = false
	s.DeathOrder = append(s.DeathOrder, p.Name)
}

// CheckGameEnd ends the game once at most one player is alive. A lone survivor is
// appended to the death order so that the reversed order ranks it first.
// On end the room goes back to waiting with roster and host untouched.
func CheckGameEnd(s *State) (ranking []string, ended bool) {
	var survivors []string
	for _, id := range s.Order {
		if p, ok := s.Players[id]; ok && p.Alive {
			survivors = append(survivors, id)
		}
	}
	if len(survivors) >= 2 {
		return nil, false
	}
	if len(survivors) == 1 {
		s.DeathOrder = append(s.DeathOrder, s.Players[survivors[0]].Name)
	}

	ranking = slices.Clone(s.DeathOrder)
	slices.Reverse(ranking)
	s.Status = StatusWaiting
	return ranking, true
}
