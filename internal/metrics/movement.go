package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// Movement records the movement of every step.
type Movement struct {
	name    string
	limit   int
	history []float64
}

// NewMovement keeps at most limit samples, dropping the oldest; 0 keeps
// everything.
func NewMovement(limit int) *Movement {
	return &Movement{name: "movement", limit: limit}
}

func (m *Movement) Name() string { return m.name }

func (m *Movement) OnStep(_ int, movement float64) {
	if m.limit > 0 && len(m.history) == m.limit {
		copy(m.history, m.history[1:])
		m.history = m.history[:len(m.history)-1]
	}
	m.history = append(m.history, movement)
}

// Value is the latest movement.
func (m *Movement) Value() float64 {
	if len(m.history) == 0 {
		return 0
	}
	return m.history[len(m.history)-1]
}

// History returns the recorded samples, oldest first. Callers must not
// modify it.
func (m *Movement) History() []float64 { return m.history }

// Summary returns the mean and standard deviation of the recorded samples.
func (m *Movement) Summary() (mean, std float64) {
	switch len(m.history) {
	case 0:
		return 0, 0
	case 1:
		return m.history[0], 0
	}
	return stat.MeanStdDev(m.history, nil)
}

func (m *Movement) Reset() { m.history = m.history[:0] }
