package agents

import "github.com/talgya/limsim/internal/sim"

// obsMemory keeps the most recent observations an agent has seen, bounded
// by the scenario's observation history length.
type obsMemory struct {
	limit int
	seen  []sim.Observation
}

func newObsMemory(limit int) *obsMemory {
	if limit < 1 {
		limit = 1
	}
	return &obsMemory{limit: limit}
}

func (m *obsMemory) remember(obs sim.Observation) {
	m.seen = append(m.seen, obs)
	if len(m.seen) > m.limit {
		m.seen = m.seen[len(m.seen)-m.limit:]
	}
}

func (m *obsMemory) clear() {
	m.seen = nil
}
