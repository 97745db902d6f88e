package engine

import "slices"

func NewState(code, host string) State {
	return State{
		Code:       code,
		Host:       host,
		Status:     StatusWaiting,
		Players:    map[string]*PlayerState{},
		Order:      []string{},
		DeathOrder: []string{},
	}
}

// Roster returns player names in join order.
func (s State) Roster() []string {
	names := make([]string, 0, len(s.Order))
	for _, id := range s.Order {
		if p, ok := s.Players[id]; ok {
			names = append(names, p.Name)
		}
	}
	return names
}

func (s State) AliveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// Clone deep-copies the mutable parts so Apply never writes through to the caller's state.
func (s State) Clone() State {
	c := s
	c.Players = make(map[string]*PlayerState, len(s.Players))
	for id, p := range s.Players {
		cp := *p
		c.Players[id] = &cp
	}
	c.Order = slices.Clone(s.Order)
	c.DeathOrder = slices.Clone(s.DeathOrder)
	return c
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}
