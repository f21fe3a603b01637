package metrics

// ForceEffort averages a force magnitude, usually
// Simulator.ForceVectorLength, over steps.
type ForceEffort struct {
	name    string
	length  func() float64
	sum     float64
	last    float64
	samples int
}

func NewForceEffort(length func() float64) *ForceEffort {
	return &ForceEffort{
		name:   "force",
		length: length,
	}
}

func (f *ForceEffort) Name() string {
	return f.name
}

func (f *ForceEffort) OnStep(int, float64) {
	f.last = f.length()
	f.sum += f.last
	f.samples++
}

func (f *ForceEffort) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

// Last is the magnitude after the latest step.
func (f *ForceEffort) Last() float64 { return f.last }

func (f *ForceEffort) Reset() {
	f.sum = 0
	f.last = 0
	f.samples = 0
}
