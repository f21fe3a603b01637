package physics

// Default physical settings.
const (
	DefaultSpringLength      = 10.0
	DefaultSpringCoefficient = 0.8
	DefaultGravity           = -12.0
	DefaultTheta             = 0.8
	DefaultDragCoefficient   = 0.9
	DefaultTimeStep          = 0.5
	DefaultDimensions        = 2
)

// Settings holds every physical parameter of a simulation.
type Settings struct {
	// SpringLength is the rest length of springs that do not set one.
	SpringLength float64 `yaml:"spring_length" toml:"spring_length"`

	// SpringCoefficient is Hooke's constant for springs that do not set one.
	SpringCoefficient float64 `yaml:"spring_coefficient" toml:"spring_coefficient"`

	// Gravity is the n-body constant. Negative values repel.
	Gravity float64 `yaml:"gravity" toml:"gravity"`

	// Theta is the Barnes-Hut opening criterion. 0 computes exact forces.
	Theta float64 `yaml:"theta" toml:"theta"`

	// DragCoefficient damps velocity.
	DragCoefficient float64 `yaml:"drag_coefficient" toml:"drag_coefficient"`

	// TimeStep is the base integration step.
	TimeStep float64 `yaml:"time_step" toml:"time_step"`

	// AdaptiveTimeStepWeight scales a per-body step by the mean length of its
	// springs. 0 disables it.
	AdaptiveTimeStepWeight float64 `yaml:"adaptive_time_step_weight" toml:"adaptive_time_step_weight"`

	// Dimensions is the number of spatial axes.
	Dimensions int `yaml:"dimensions" toml:"dimensions"`

	// Debug enables coordinate range checks on bodies.
	Debug bool `yaml:"debug" toml:"debug"`
}

// DefaultSettings returns the standard two-dimensional settings.
func DefaultSettings() Settings {
	return Settings{
		SpringLength:      DefaultSpringLength,
		SpringCoefficient: DefaultSpringCoefficient,
		Gravity:           DefaultGravity,
		Theta:             DefaultTheta,
		DragCoefficient:   DefaultDragCoefficient,
		TimeStep:          DefaultTimeStep,
		Dimensions:        DefaultDimensions,
	}
}

// Validate checks that every numeric setting is usable.
func (s Settings) Validate() error {
	if err := CheckDimensions(s.Dimensions); err != nil {
		return err
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"springLength", s.SpringLength},
		{"springCoefficient", s.SpringCoefficient},
		{"gravity", s.Gravity},
		{"theta", s.Theta},
		{"dragCoefficient", s.DragCoefficient},
		{"timeStep", s.TimeStep},
		{"adaptiveTimeStepWeight", s.AdaptiveTimeStepWeight},
	} {
		if err := CheckFinite(p.name, p.v); err != nil {
			return err
		}
	}
	if s.TimeStep <= 0 {
		return &ParameterError{Name: "timeStep", Value: s.TimeStep}
	}
	if s.Theta < 0 {
		return &ParameterError{Name: "theta", Value: s.Theta}
	}
	if s.AdaptiveTimeStepWeight < 0 {
		return &ParameterError{Name: "adaptiveTimeStepWeight", Value: s.AdaptiveTimeStepWeight}
	}
	return nil
}
