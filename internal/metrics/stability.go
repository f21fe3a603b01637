package metrics

// Stability is the fraction of steps whose per-body movement stayed at or
// below a threshold.
type Stability struct {
	name       string
	threshold  float64
	count      func() int
	violations int
	samples    int
	streak     int
}

// NewStability divides each step's movement by count() before comparing it
// with threshold.
func NewStability(threshold float64, count func() int) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		count:     count,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnStep(_ int, movement float64) {
	s.samples++
	n := s.count()
	if n > 0 && movement/float64(n) > s.threshold {
		s.violations++
		s.streak = 0
		return
	}
	s.streak++
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// Streak is the number of consecutive stable steps up to the latest one.
func (s *Stability) Streak() int { return s.streak }

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.streak = 0
}
