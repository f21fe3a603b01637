package sim

import "github.com/san-kum/forcelayout/internal/physics"

// Settings returns a copy of the current settings.
func (s *Simulator) Settings() physics.Settings { return s.settings }

func (s *Simulator) Dimensions() int { return s.settings.Dimensions }

func (s *Simulator) SpringLength() float64      { return s.settings.SpringLength }
func (s *Simulator) SpringCoefficient() float64 { return s.settings.SpringCoefficient }
func (s *Simulator) Gravity() float64           { return s.settings.Gravity }
func (s *Simulator) Theta() float64             { return s.settings.Theta }
func (s *Simulator) DragCoefficient() float64   { return s.settings.DragCoefficient }
func (s *Simulator) TimeStep() float64          { return s.settings.TimeStep }

func (s *Simulator) AdaptiveTimeStepWeight() float64 { return s.settings.AdaptiveTimeStepWeight }

func (s *Simulator) SetSpringLength(v float64) error {
	return setFinite("springLength", v, &s.settings.SpringLength)
}

func (s *Simulator) SetSpringCoefficient(v float64) error {
	return setFinite("springCoefficient", v, &s.settings.SpringCoefficient)
}

func (s *Simulator) SetDragCoefficient(v float64) error {
	return setFinite("dragCoefficient", v, &s.settings.DragCoefficient)
}

// SetGravity updates gravity here and in the tree.
func (s *Simulator) SetGravity(v float64) error {
	if err := setFinite("gravity", v, &s.settings.Gravity); err != nil {
		return err
	}
	s.tree.SetGravity(v)
	return nil
}

// SetTheta updates the opening criterion here and in the tree.
func (s *Simulator) SetTheta(v float64) error {
	if v < 0 {
		return &physics.ParameterError{Name: "theta", Value: v}
	}
	if err := setFinite("theta", v, &s.settings.Theta); err != nil {
		return err
	}
	s.tree.SetTheta(v)
	return nil
}

func (s *Simulator) SetTimeStep(v float64) error {
	if v <= 0 {
		return &physics.ParameterError{Name: "timeStep", Value: v}
	}
	return setFinite("timeStep", v, &s.settings.TimeStep)
}

func (s *Simulator) SetAdaptiveTimeStepWeight(v float64) error {
	if v < 0 {
		return &physics.ParameterError{Name: "adaptiveTimeStepWeight", Value: v}
	}
	return setFinite("adaptiveTimeStepWeight", v, &s.settings.AdaptiveTimeStepWeight)
}

func setFinite(name string, v float64, dst *float64) error {
	if err := physics.CheckFinite(name, v); err != nil {
		return err
	}
	*dst = v
	return nil
}
