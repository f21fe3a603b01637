package physics

// Unset marks a spring length or coefficient that falls back to the
// simulator default.
const Unset = -1.0

// Spring is a Hooke's-law connection between two bodies.
type Spring struct {
	From, To *Body

	// Length is the rest length. Negative means the simulator default.
	Length float64

	// Coefficient is the stiffness. Negative means the simulator default.
	Coefficient float64

	// Weight scales the spring in user code; the solver does not read it.
	Weight float64
}

// NewSpring connects two bodies. Negative length or coefficient fall back
// to the defaults at force time.
func NewSpring(from, to *Body, length, coefficient float64) *Spring {
	if length < 0 {
		length = Unset
	}
	if coefficient < 0 {
		coefficient = Unset
	}
	return &Spring{
		From:        from,
		To:          to,
		Length:      length,
		Coefficient: coefficient,
		Weight:      1,
	}
}

// RestLength resolves the rest length against a default.
func (s *Spring) RestLength(def float64) float64 {
	if s.Length < 0 {
		return def
	}
	return s.Length
}

// Stiffness resolves the coefficient against a default.
func (s *Spring) Stiffness(def float64) float64 {
	if s.Coefficient < 0 {
		return def
	}
	return s.Coefficient
}
